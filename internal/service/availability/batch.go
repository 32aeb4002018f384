package availability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/reliefops/relief-api/internal/domain/models"
)

// CheckAvailabilityBatch evaluates every requested item independently.
// Inventory and reservations are fetched once for the whole item set; pledge
// lookups fan out. A malformed item or a failed pledge lookup is reported on
// that item's entry only. Failing to load the shared inventory or
// reservations fails the whole call.
func (s *Service) CheckAvailabilityBatch(ctx context.Context, disasterID string, items []models.RequestedItem, excludeRequestID string) ([]models.ItemAvailability, error) {
	if disasterID == "" {
		return nil, fmt.Errorf("%w: disasterId is required", models.ErrInvalidArgument)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: items are required", models.ErrInvalidArgument)
	}

	results := make([]models.ItemAvailability, len(items))
	itemIDs := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if err := validateItem(item.ItemID, item.Quantity); err != nil {
			results[i] = failedItem(item, err)
			continue
		}
		if _, ok := seen[item.ItemID]; !ok {
			seen[item.ItemID] = struct{}{}
			itemIDs = append(itemIDs, item.ItemID)
		}
	}
	if len(itemIDs) == 0 {
		return results, nil
	}

	stock, err := s.inventory.GetItems(ctx, disasterID, itemIDs)
	if err != nil {
		return nil, storeError("load inventory", err)
	}
	stockByItem := make(map[string]int, len(stock))
	for _, record := range stock {
		stockByItem[record.ID] += record.Quantity
	}

	reservations, err := s.reservations.FindActiveForItems(ctx, disasterID, itemIDs, excludeRequestID)
	if err != nil {
		return nil, storeError("load reservations", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, item := range items {
		if results[i].Status == models.ItemStatusError {
			continue
		}
		g.Go(func() error {
			q := Query{
				DisasterID:       disasterID,
				ItemID:           item.ItemID,
				Quantity:         item.Quantity,
				ExcludeRequestID: excludeRequestID,
			}
			report, err := s.project(gctx, q, stockByItem[item.ItemID], reservations)
			if err != nil {
				s.logger.Warn("batch item availability failed",
					zap.String("disaster_id", disasterID),
					zap.String("item_id", item.ItemID),
					zap.Error(err))
				results[i] = failedItem(item, err)
				return nil
			}
			results[i] = models.ItemAvailability{
				AvailabilityReport: report,
				ItemID:             item.ItemID,
				RequestedQuantity:  item.Quantity,
				Status:             models.ItemStatusOK,
			}
			return nil
		})
	}
	// Workers report failures on their own entry and always return nil.
	_ = g.Wait()

	return results, nil
}

func failedItem(item models.RequestedItem, err error) models.ItemAvailability {
	return models.ItemAvailability{
		ItemID:            item.ItemID,
		RequestedQuantity: item.Quantity,
		Status:            models.ItemStatusError,
		Error:             err.Error(),
	}
}
