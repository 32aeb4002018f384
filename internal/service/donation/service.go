package donation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/reliefops/relief-api/internal/domain/models"
	"github.com/reliefops/relief-api/pkg/idgen"
)

const (
	reservationPrefix = "CDR"
	pledgePrefix      = "GDN"
	itemPrefix        = "ITM"
)

// Store persists camp requests, pledges and catalogue items.
type Store interface {
	CreateReservation(ctx context.Context, req models.ReservationRequest) error
	ListItems(ctx context.Context, disasterID string) ([]models.InventoryItem, error)
	CreateItem(ctx context.Context, item models.InventoryItem) error
	DeleteItems(ctx context.Context, disasterID string, itemIDs []string) error
	CreatePledge(ctx context.Context, pledge models.Pledge) error
	FindPledge(ctx context.Context, disasterID, pledgeID string) (*models.Pledge, error)
	ListPledges(ctx context.Context, disasterID string) ([]models.Pledge, error)
	UpdatePledgeStatus(ctx context.Context, disasterID, pledgeID string, status models.PledgeStatus, confirmDate *time.Time) error
	ProcessPledge(ctx context.Context, pledge models.Pledge, processedAt time.Time) error
}

// Service admits camp requests and runs the donation intake workflow.
type Service struct {
	store     Store
	validator *Validator
	logger    *zap.Logger
	now       func() time.Time
	newID     func(prefix string) string
}

// NewService constructs the donation service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		validator: NewValidator(),
		logger:    logger,
		now:       time.Now,
		newID:     idgen.New,
	}
}

// ReservationInput is the body of a camp donation request.
type ReservationInput struct {
	CampID     string                 `json:"campId" validate:"required"`
	DisasterID string                 `json:"disasterId" validate:"required"`
	Items      []models.RequestedItem `json:"items" validate:"required,min=1,dive"`
	Priority   models.Priority        `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	PickupDate *time.Time             `json:"pickupDate"`
	Notes      string                 `json:"notes"`
}

// SubmitReservation stores a new pending request. Pending requests do not
// hold stock; contention is settled when the request is approved.
func (s *Service) SubmitReservation(ctx context.Context, in ReservationInput) (*models.ReservationRequest, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	req := models.ReservationRequest{
		ID:         s.newID(reservationPrefix),
		CampID:     in.CampID,
		DisasterID: in.DisasterID,
		Items:      in.Items,
		Status:     models.ReservationPending,
		Priority:   priority,
		PickupDate: in.PickupDate,
		Notes:      in.Notes,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.store.CreateReservation(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: save camp request: %v", models.ErrStoreUnavailable, err)
	}

	s.logger.Info("camp request submitted",
		zap.String("request_id", req.ID),
		zap.String("camp_id", req.CampID),
		zap.String("disaster_id", req.DisasterID),
		zap.Int("lines", len(req.Items)))

	return &req, nil
}

// ListItems returns the item catalogue of a disaster.
func (s *Service) ListItems(ctx context.Context, disasterID string) ([]models.InventoryItem, error) {
	if disasterID == "" {
		return nil, fmt.Errorf("%w: disasterId is required", models.ErrInvalidArgument)
	}
	items, err := s.store.ListItems(ctx, disasterID)
	if err != nil {
		return nil, fmt.Errorf("%w: list items: %v", models.ErrStoreUnavailable, err)
	}
	return items, nil
}
