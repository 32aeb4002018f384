package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/reliefops/relief-api/internal/domain/models"
)

// FindSupply returns confirmed and arrived pledges of a disaster carrying itemID.
func (r *MongoDBRepository) FindSupply(ctx context.Context, disasterID, itemID string) ([]models.Pledge, error) {
	filter := bson.D{
		{Key: "disasterId", Value: disasterID},
		{Key: "status", Value: bson.D{{Key: "$in", Value: pledgeStatuses(models.SupplyPledgeStatuses)}}},
		{Key: "items.itemId", Value: itemID},
	}
	return r.findPledges(ctx, filter, options.Find().SetSort(bson.D{{Key: "confirmDate", Value: 1}}))
}

// ListPledges returns every pledge of a disaster, newest first.
func (r *MongoDBRepository) ListPledges(ctx context.Context, disasterID string) ([]models.Pledge, error) {
	opts := options.Find().SetSort(bson.D{{Key: "donatedAt", Value: -1}})
	return r.findPledges(ctx, bson.D{{Key: "disasterId", Value: disasterID}}, opts)
}

// FindPledge loads one pledge or returns models.ErrNotFound.
func (r *MongoDBRepository) FindPledge(ctx context.Context, disasterID, pledgeID string) (*models.Pledge, error) {
	var pledge models.Pledge
	err := r.collection(pledgesCollection).
		FindOne(ctx, bson.D{{Key: "_id", Value: pledgeID}, {Key: "disasterId", Value: disasterID}}).
		Decode(&pledge)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("pledge %s: %w", pledgeID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find pledge %s: %w", pledgeID, err)
	}
	return &pledge, nil
}

// CreatePledge inserts a new donation.
func (r *MongoDBRepository) CreatePledge(ctx context.Context, pledge models.Pledge) error {
	if _, err := r.collection(pledgesCollection).InsertOne(ctx, pledge); err != nil {
		return fmt.Errorf("failed to insert pledge: %w", err)
	}
	return nil
}

// UpdatePledgeStatus moves an unprocessed pledge to status and records its
// expected arrival. A missing pledge is ErrNotFound, a processed one ErrConflict.
func (r *MongoDBRepository) UpdatePledgeStatus(ctx context.Context, disasterID, pledgeID string, status models.PledgeStatus, confirmDate *time.Time) error {
	set := bson.D{{Key: "status", Value: string(status)}}
	if confirmDate != nil {
		set = append(set, bson.E{Key: "confirmDate", Value: *confirmDate})
	}
	update := bson.D{{Key: "$set", Value: set}}
	if confirmDate == nil {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "confirmDate", Value: ""}}})
	}

	res, err := r.collection(pledgesCollection).UpdateOne(ctx, unprocessedPledge(disasterID, pledgeID), update)
	if err != nil {
		return fmt.Errorf("update pledge %s: %w", pledgeID, err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindPledge(ctx, disasterID, pledgeID); err != nil {
			return err
		}
		return fmt.Errorf("pledge %s already processed: %w", pledgeID, models.ErrConflict)
	}
	return nil
}

// ProcessPledge marks the pledge processed and adds its quantities to
// inventory. The status flip is conditional, so a pledge is counted once.
// When an increment fails or hits no inventory record, the increments already
// applied are reversed and the pledge returns to its previous status.
func (r *MongoDBRepository) ProcessPledge(ctx context.Context, pledge models.Pledge, processedAt time.Time) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: string(models.PledgeProcessed)},
		{Key: "processedAt", Value: processedAt},
	}}}
	res, err := r.collection(pledgesCollection).UpdateOne(ctx, unprocessedPledge(pledge.DisasterID, pledge.ID), update)
	if err != nil {
		return fmt.Errorf("mark pledge %s processed: %w", pledge.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("pledge %s already processed: %w", pledge.ID, models.ErrConflict)
	}

	applied := make([]models.RequestedItem, 0, len(pledge.Items))
	for _, item := range pledge.Items {
		matched, err := r.incrementStock(ctx, pledge.DisasterID, item.ItemID, item.Quantity)
		if err == nil && !matched {
			err = fmt.Errorf("no inventory record for item %s: %w", item.ItemID, models.ErrConflict)
		}
		if err != nil {
			err = fmt.Errorf("add pledge %s item %s to inventory: %w", pledge.ID, item.ItemID, err)
			return r.rollbackProcessing(ctx, pledge, applied, err)
		}
		applied = append(applied, item)
	}

	r.logger.Info("pledge processed into inventory",
		zap.String("pledge_id", pledge.ID),
		zap.String("disaster_id", pledge.DisasterID),
		zap.Int("lines", len(pledge.Items)))
	return nil
}

func (r *MongoDBRepository) incrementStock(ctx context.Context, disasterID, itemID string, quantity int) (bool, error) {
	filter := bson.D{{Key: "_id", Value: itemID}, {Key: "disasterId", Value: disasterID}}
	inc := bson.D{{Key: "$inc", Value: bson.D{{Key: "quantity", Value: quantity}}}}
	res, err := r.collection(itemsCollection).UpdateOne(ctx, filter, inc)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// rollbackProcessing undoes a partial ProcessPledge and returns cause. Rollback
// failures are logged and joined to cause.
func (r *MongoDBRepository) rollbackProcessing(ctx context.Context, pledge models.Pledge, applied []models.RequestedItem, cause error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	errs := []error{cause}
	for _, item := range applied {
		if _, err := r.incrementStock(ctx, pledge.DisasterID, item.ItemID, -item.Quantity); err != nil {
			errs = append(errs, fmt.Errorf("revert item %s: %w", item.ItemID, err))
		}
	}

	filter := bson.D{
		{Key: "_id", Value: pledge.ID},
		{Key: "disasterId", Value: pledge.DisasterID},
		{Key: "status", Value: string(models.PledgeProcessed)},
	}
	revert := bson.D{
		{Key: "$set", Value: bson.D{{Key: "status", Value: string(pledge.Status)}}},
		{Key: "$unset", Value: bson.D{{Key: "processedAt", Value: ""}}},
	}
	if _, err := r.collection(pledgesCollection).UpdateOne(ctx, filter, revert); err != nil {
		errs = append(errs, fmt.Errorf("revert pledge status: %w", err))
	}

	if len(errs) > 1 {
		r.logger.Error("pledge processing rollback incomplete",
			zap.String("pledge_id", pledge.ID),
			zap.Error(errors.Join(errs[1:]...)))
	} else {
		r.logger.Warn("pledge processing rolled back",
			zap.String("pledge_id", pledge.ID),
			zap.Int("reverted_lines", len(applied)),
			zap.Error(cause))
	}
	return errors.Join(errs...)
}

const rollbackTimeout = 10 * time.Second

func unprocessedPledge(disasterID, pledgeID string) bson.D {
	return bson.D{
		{Key: "_id", Value: pledgeID},
		{Key: "disasterId", Value: disasterID},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: string(models.PledgeProcessed)}}},
	}
}

func (r *MongoDBRepository) findPledges(ctx context.Context, filter bson.D, opts ...*options.FindOptions) ([]models.Pledge, error) {
	cursor, err := r.collection(pledgesCollection).Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find pledges: %w", err)
	}
	pledges := []models.Pledge{}
	if err := cursor.All(ctx, &pledges); err != nil {
		return nil, fmt.Errorf("decode pledges: %w", err)
	}
	return pledges, nil
}
