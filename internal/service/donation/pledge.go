package donation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/reliefops/relief-api/internal/domain/models"
)

// PledgeItemInput references an existing item or describes a new one.
type PledgeItemInput struct {
	ItemID      string `json:"itemId"`
	Name        string `json:"name" validate:"required_without=ItemID"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Unit        string `json:"unit"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
}

// PledgeInput is the body of a general donation.
type PledgeInput struct {
	Name       string            `json:"name" validate:"required"`
	Email      string            `json:"email" validate:"required,email"`
	Address    string            `json:"address" validate:"required"`
	DisasterID string            `json:"disasterId" validate:"required"`
	Items      []PledgeItemInput `json:"items" validate:"required,min=1,dive"`
}

// ConfirmInput moves a pledge to confirmed or arrived.
type ConfirmInput struct {
	DonationID  string              `json:"donationId" validate:"required"`
	DisasterID  string              `json:"disasterId" validate:"required"`
	Status      models.PledgeStatus `json:"status" validate:"required,oneof=confirmed arrived"`
	ConfirmDate *time.Time          `json:"confirmDate"`
}

// ProcessInput identifies a pledge to book into inventory.
type ProcessInput struct {
	DonationID string `json:"donationId" validate:"required"`
	DisasterID string `json:"disasterId" validate:"required"`
}

// SubmitPledge records a pending donation. Items without an itemId are added
// to the catalogue with zero stock first, and removed again if the pledge
// cannot be saved.
func (s *Service) SubmitPledge(ctx context.Context, in PledgeInput) (*models.Pledge, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	var created []string
	lines := make([]models.RequestedItem, 0, len(in.Items))
	for _, item := range in.Items {
		itemID := item.ItemID
		if itemID == "" {
			itemID = s.newID(itemPrefix)
			newItem := models.InventoryItem{
				ID:          itemID,
				DisasterID:  in.DisasterID,
				Name:        item.Name,
				Description: item.Description,
				Category:    item.Category,
				Unit:        item.Unit,
			}
			if err := s.store.CreateItem(ctx, newItem); err != nil {
				s.discardItems(ctx, in.DisasterID, created)
				return nil, fmt.Errorf("%w: create item %q: %v", models.ErrStoreUnavailable, item.Name, err)
			}
			created = append(created, itemID)
			s.logger.Info("catalogue item created from pledge", zap.String("item_id", itemID), zap.String("name", item.Name))
		}
		lines = append(lines, models.RequestedItem{ItemID: itemID, Quantity: item.Quantity})
	}

	pledge := models.Pledge{
		ID:           s.newID(pledgePrefix),
		DisasterID:   in.DisasterID,
		DonorName:    in.Name,
		DonorEmail:   in.Email,
		DonorAddress: in.Address,
		Items:        lines,
		Status:       models.PledgePending,
		DonatedAt:    s.now().UTC(),
	}
	if err := s.store.CreatePledge(ctx, pledge); err != nil {
		s.discardItems(ctx, in.DisasterID, created)
		return nil, fmt.Errorf("%w: save pledge: %v", models.ErrStoreUnavailable, err)
	}

	s.logger.Info("pledge received",
		zap.String("pledge_id", pledge.ID),
		zap.String("disaster_id", pledge.DisasterID),
		zap.Int("lines", len(lines)))

	return &pledge, nil
}

// discardItems removes catalogue items created for a pledge that was not saved.
func (s *Service) discardItems(ctx context.Context, disasterID string, itemIDs []string) {
	if len(itemIDs) == 0 {
		return
	}
	if err := s.store.DeleteItems(ctx, disasterID, itemIDs); err != nil {
		s.logger.Error("failed to remove items of unsaved pledge",
			zap.Strings("item_ids", itemIDs),
			zap.Error(err))
	}
}

// ConfirmPledge records that a pledge is confirmed or has arrived. From then
// on it counts as projected supply.
func (s *Service) ConfirmPledge(ctx context.Context, in ConfirmInput) error {
	if err := s.validator.Validate(in); err != nil {
		return err
	}
	if err := s.store.UpdatePledgeStatus(ctx, in.DisasterID, in.DonationID, in.Status, in.ConfirmDate); err != nil {
		return classify("update pledge", err)
	}
	s.logger.Info("pledge status updated", zap.String("pledge_id", in.DonationID), zap.String("status", string(in.Status)))
	return nil
}

// ProcessPledge books a pledge's quantities into inventory.
func (s *Service) ProcessPledge(ctx context.Context, in ProcessInput) error {
	if err := s.validator.Validate(in); err != nil {
		return err
	}

	pledge, err := s.store.FindPledge(ctx, in.DisasterID, in.DonationID)
	if err != nil {
		return classify("load pledge", err)
	}
	if pledge.Status == models.PledgeProcessed {
		return fmt.Errorf("%w: donation %s already processed", models.ErrConflict, pledge.ID)
	}

	if err := s.store.ProcessPledge(ctx, *pledge, s.now().UTC()); err != nil {
		return classify("process pledge", err)
	}
	return nil
}

// ListPledges returns the pledges of a disaster.
func (s *Service) ListPledges(ctx context.Context, disasterID string) ([]models.Pledge, error) {
	if disasterID == "" {
		return nil, fmt.Errorf("%w: disasterId is required", models.ErrInvalidArgument)
	}
	pledges, err := s.store.ListPledges(ctx, disasterID)
	if err != nil {
		return nil, fmt.Errorf("%w: list pledges: %v", models.ErrStoreUnavailable, err)
	}
	return pledges, nil
}

// classify keeps domain errors from the store and marks everything else as
// a store failure.
func classify(op string, err error) error {
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrConflict) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", models.ErrStoreUnavailable, op, err)
}
