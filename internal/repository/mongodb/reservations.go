package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reliefops/relief-api/internal/domain/models"
)

// FindActive returns approved and arrived requests of a disaster that
// reserve itemID, without excludeRequestID.
func (r *MongoDBRepository) FindActive(ctx context.Context, disasterID, itemID, excludeRequestID string) ([]models.ReservationRequest, error) {
	return r.FindActiveForItems(ctx, disasterID, []string{itemID}, excludeRequestID)
}

// FindActiveForItems is FindActive over a set of items in one query.
func (r *MongoDBRepository) FindActiveForItems(ctx context.Context, disasterID string, itemIDs []string, excludeRequestID string) ([]models.ReservationRequest, error) {
	filter := bson.D{
		{Key: "disasterId", Value: disasterID},
		{Key: "status", Value: bson.D{{Key: "$in", Value: reservationStatuses(models.ActiveReservationStatuses)}}},
		{Key: "items.itemId", Value: bson.D{{Key: "$in", Value: itemIDs}}},
	}
	if excludeRequestID != "" {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeRequestID}}})
	}
	return r.findReservations(ctx, filter)
}

// FindPending returns every pending request, oldest first.
func (r *MongoDBRepository) FindPending(ctx context.Context) ([]models.ReservationRequest, error) {
	filter := bson.D{{Key: "status", Value: string(models.ReservationPending)}}
	return r.findReservations(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

// CreateReservation inserts a new camp request.
func (r *MongoDBRepository) CreateReservation(ctx context.Context, req models.ReservationRequest) error {
	if _, err := r.collection(reservationsCollection).InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to insert camp request: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) findReservations(ctx context.Context, filter bson.D, opts ...*options.FindOptions) ([]models.ReservationRequest, error) {
	cursor, err := r.collection(reservationsCollection).Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find camp requests: %w", err)
	}
	requests := []models.ReservationRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("decode camp requests: %w", err)
	}
	return requests, nil
}
