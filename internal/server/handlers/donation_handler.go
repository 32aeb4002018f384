package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reliefops/relief-api/internal/domain/models"
	"github.com/reliefops/relief-api/internal/service/donation"
)

// DonationService covers camp requests and the donation intake workflow.
type DonationService interface {
	SubmitReservation(ctx context.Context, in donation.ReservationInput) (*models.ReservationRequest, error)
	ListItems(ctx context.Context, disasterID string) ([]models.InventoryItem, error)
	SubmitPledge(ctx context.Context, in donation.PledgeInput) (*models.Pledge, error)
	ConfirmPledge(ctx context.Context, in donation.ConfirmInput) error
	ProcessPledge(ctx context.Context, in donation.ProcessInput) error
	ListPledges(ctx context.Context, disasterID string) ([]models.Pledge, error)
}

// DonationHandler exposes donation routes.
type DonationHandler struct {
	svc    DonationService
	logger *zap.Logger
}

// NewDonationHandler constructs the HTTP handler adapter.
func NewDonationHandler(svc DonationService, logger *zap.Logger) *DonationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DonationHandler{svc: svc, logger: logger}
}

// CampDonationRequest admits a new pending camp request.
func (h *DonationHandler) CampDonationRequest(c *gin.Context) {
	var in donation.ReservationInput
	if !h.bind(c, &in) {
		return
	}

	req, err := h.svc.SubmitReservation(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, req)
}

// Items lists the catalogue of a disaster.
func (h *DonationHandler) Items(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context(), c.Query("disasterId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GeneralDonation records a donor pledge.
func (h *DonationHandler) GeneralDonation(c *gin.Context) {
	var in donation.PledgeInput
	if !h.bind(c, &in) {
		return
	}

	pledge, err := h.svc.SubmitPledge(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, pledge)
}

// ConfirmDonation marks a pledge confirmed or arrived.
func (h *DonationHandler) ConfirmDonation(c *gin.Context) {
	var in donation.ConfirmInput
	if !h.bind(c, &in) {
		return
	}

	if err := h.svc.ConfirmPledge(c.Request.Context(), in); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Donation status updated"})
}

// ProcessDonation books a pledge into inventory.
func (h *DonationHandler) ProcessDonation(c *gin.Context) {
	var in donation.ProcessInput
	if !h.bind(c, &in) {
		return
	}

	if err := h.svc.ProcessPledge(c.Request.Context(), in); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Donation processed into inventory"})
}

// GetGeneralDonation lists the pledges of a disaster.
func (h *DonationHandler) GetGeneralDonation(c *gin.Context) {
	pledges, err := h.svc.ListPledges(c.Request.Context(), c.Query("disasterId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pledges)
}

func (h *DonationHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, h.logger, fmt.Errorf("%w: invalid request body: %v", models.ErrInvalidArgument, err))
		return false
	}
	return true
}
