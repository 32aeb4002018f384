package availability

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/reliefops/relief-api/internal/domain/models"
)

const defaultConcurrency = 8

// InventoryStore reads on-hand stock. GetItem returns nil without error when
// the item has no inventory record.
type InventoryStore interface {
	GetItem(ctx context.Context, disasterID, itemID string) (*models.InventoryItem, error)
	GetItems(ctx context.Context, disasterID string, itemIDs []string) ([]models.InventoryItem, error)
}

// ReservationStore reads approved and arrived camp requests. A non-empty
// excludeRequestID drops that request from the result.
type ReservationStore interface {
	FindActive(ctx context.Context, disasterID, itemID, excludeRequestID string) ([]models.ReservationRequest, error)
	FindActiveForItems(ctx context.Context, disasterID string, itemIDs []string, excludeRequestID string) ([]models.ReservationRequest, error)
}

// PledgeStore reads confirmed and arrived donations for an item.
type PledgeStore interface {
	FindSupply(ctx context.Context, disasterID, itemID string) ([]models.Pledge, error)
}

// Query identifies a single availability check.
type Query struct {
	DisasterID string
	ItemID     string
	Quantity   int
	// ExcludeRequestID is set when refreshing an existing request so that its
	// own reservation is not counted against it.
	ExcludeRequestID string
}

// Service nets on-hand stock against competing reservations and forecasts
// when pledged donations cover any shortfall. It never writes.
type Service struct {
	inventory    InventoryStore
	reservations ReservationStore
	pledges      PledgeStore
	concurrency  int
	logger       *zap.Logger
	now          func() time.Time
}

// NewService wires the engine to its read models.
func NewService(inventory InventoryStore, reservations ReservationStore, pledges PledgeStore, concurrency int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Service{
		inventory:    inventory,
		reservations: reservations,
		pledges:      pledges,
		concurrency:  concurrency,
		logger:       logger,
		now:          time.Now,
	}
}

// CheckAvailability reports how much of q.ItemID can be served now and, if
// not enough, when confirmed pledges are expected to cover the rest.
func (s *Service) CheckAvailability(ctx context.Context, q Query) (*models.AvailabilityReport, error) {
	if q.DisasterID == "" {
		return nil, fmt.Errorf("%w: disasterId is required", models.ErrInvalidArgument)
	}
	if err := validateItem(q.ItemID, q.Quantity); err != nil {
		return nil, err
	}

	item, err := s.inventory.GetItem(ctx, q.DisasterID, q.ItemID)
	if err != nil {
		return nil, storeError("load inventory", err)
	}
	stock := 0
	if item != nil {
		stock = item.Quantity
	}

	reservations, err := s.reservations.FindActive(ctx, q.DisasterID, q.ItemID, q.ExcludeRequestID)
	if err != nil {
		return nil, storeError("load reservations", err)
	}

	return s.project(ctx, q, stock, reservations)
}

func (s *Service) project(ctx context.Context, q Query, stock int, reservations []models.ReservationRequest) (*models.AvailabilityReport, error) {
	reserved, breakdown := netReservations(q.ItemID, q.ExcludeRequestID, reservations)

	report := &models.AvailabilityReport{
		ItemID:                q.ItemID,
		RequestedQuantity:     q.Quantity,
		CurrentStock:          stock,
		CurrentlyAvailable:    max(0, stock-reserved),
		ReservedInOtherCamps:  reserved,
		OtherCampReservations: breakdown,
		AvailableSoon:         []models.IncomingSupply{},
	}

	if q.Quantity <= report.CurrentlyAvailable {
		inStockDays := 0
		report.InStock = true
		report.FullRequestAvailable = true
		report.RequestAvailableAfterDays = &inStockDays
		report.TotalAvailableAfterDonations = report.CurrentlyAvailable
		return report, nil
	}

	report.Shortfall = q.Quantity - report.CurrentlyAvailable

	pledges, err := s.pledges.FindSupply(ctx, q.DisasterID, q.ItemID)
	if err != nil {
		return nil, storeError("load pledges", err)
	}

	plan := forecast(s.now(), q.ItemID, report.Shortfall, pledges)
	report.AvailableSoon = plan.entries
	report.FullRequestAvailable = plan.covered
	if plan.covered {
		days := plan.afterDays
		report.RequestAvailableAfterDays = &days
	}
	report.TotalAvailableAfterDonations = report.CurrentlyAvailable + plan.allocated

	s.logger.Debug("availability shortfall projected",
		zap.String("disaster_id", q.DisasterID),
		zap.String("item_id", q.ItemID),
		zap.Int("shortfall", report.Shortfall),
		zap.Int("pledges", len(plan.entries)),
		zap.Bool("covered", plan.covered))

	return report, nil
}

// netReservations sums competing reservations for itemID and returns the
// per-request breakdown. Stores may over-return, so status and self-exclusion
// are checked again.
func netReservations(itemID, excludeRequestID string, reservations []models.ReservationRequest) (int, []models.CampReservation) {
	total := 0
	breakdown := make([]models.CampReservation, 0, len(reservations))
	for _, r := range reservations {
		if !r.Status.Active() {
			continue
		}
		if excludeRequestID != "" && r.ID == excludeRequestID {
			continue
		}
		qty := r.QuantityOf(itemID)
		if qty == 0 {
			continue
		}
		total += qty
		breakdown = append(breakdown, models.CampReservation{
			RequestID:  r.ID,
			CampID:     r.CampID,
			Quantity:   qty,
			Status:     r.Status,
			PickupDate: r.PickupDate,
		})
	}
	return total, breakdown
}

func validateItem(itemID string, quantity int) error {
	if itemID == "" {
		return fmt.Errorf("%w: itemId is required", models.ErrInvalidArgument)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", models.ErrInvalidArgument, quantity)
	}
	return nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrStoreUnavailable, op, err)
}
