package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reliefops/relief-api/internal/domain/models"
)

// GetItem returns the inventory record of itemID, or nil if there is none.
func (r *MongoDBRepository) GetItem(ctx context.Context, disasterID, itemID string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.collection(itemsCollection).
		FindOne(ctx, bson.D{{Key: "_id", Value: itemID}, {Key: "disasterId", Value: disasterID}}).
		Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item %s: %w", itemID, err)
	}
	return &item, nil
}

// GetItems loads the inventory records of all itemIDs in one query.
func (r *MongoDBRepository) GetItems(ctx context.Context, disasterID string, itemIDs []string) ([]models.InventoryItem, error) {
	filter := bson.D{
		{Key: "disasterId", Value: disasterID},
		{Key: "_id", Value: bson.D{{Key: "$in", Value: itemIDs}}},
	}
	return r.findItems(ctx, filter)
}

// ListItems returns the item catalogue of a disaster ordered by name.
func (r *MongoDBRepository) ListItems(ctx context.Context, disasterID string) ([]models.InventoryItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return r.findItems(ctx, bson.D{{Key: "disasterId", Value: disasterID}}, opts)
}

// CreateItem inserts a new catalogue item.
func (r *MongoDBRepository) CreateItem(ctx context.Context, item models.InventoryItem) error {
	if _, err := r.collection(itemsCollection).InsertOne(ctx, item); err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// DeleteItems removes catalogue items by id.
func (r *MongoDBRepository) DeleteItems(ctx context.Context, disasterID string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	filter := bson.D{
		{Key: "disasterId", Value: disasterID},
		{Key: "_id", Value: bson.D{{Key: "$in", Value: itemIDs}}},
	}
	if _, err := r.collection(itemsCollection).DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) findItems(ctx context.Context, filter bson.D, opts ...*options.FindOptions) ([]models.InventoryItem, error) {
	cursor, err := r.collection(itemsCollection).Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	items := []models.InventoryItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}
