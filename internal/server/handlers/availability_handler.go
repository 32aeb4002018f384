package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reliefops/relief-api/internal/domain/models"
	"github.com/reliefops/relief-api/internal/service/availability"
)

// AvailabilityService is the read-only engine behind the availability routes.
type AvailabilityService interface {
	CheckAvailability(ctx context.Context, q availability.Query) (*models.AvailabilityReport, error)
	CheckAvailabilityBatch(ctx context.Context, disasterID string, items []models.RequestedItem, excludeRequestID string) ([]models.ItemAvailability, error)
}

// AvailabilityHandler serves stock availability queries.
type AvailabilityHandler struct {
	svc    AvailabilityService
	logger *zap.Logger
}

// NewAvailabilityHandler constructs the HTTP handler adapter.
func NewAvailabilityHandler(svc AvailabilityService, logger *zap.Logger) *AvailabilityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityHandler{svc: svc, logger: logger}
}

// GetIndividualAvailableItems answers
// ?disasterId=..&item={"itemId":"..","quantity":n}[&excludeRequestId=..].
// itemId and quantity may also be passed as plain parameters.
func (h *AvailabilityHandler) GetIndividualAvailableItems(c *gin.Context) {
	item, err := parseItemParam(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	report, err := h.svc.CheckAvailability(c.Request.Context(), availability.Query{
		DisasterID:       c.Query("disasterId"),
		ItemID:           item.ItemID,
		Quantity:         item.Quantity,
		ExcludeRequestID: c.Query("excludeRequestId"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetAvailableItems answers ?disasterId=..&items=[{"itemId":"..","quantity":n},...].
func (h *AvailabilityHandler) GetAvailableItems(c *gin.Context) {
	raw := c.Query("items")
	if raw == "" {
		respondError(c, h.logger, fmt.Errorf("%w: items are required", models.ErrInvalidArgument))
		return
	}

	var items []models.RequestedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		respondError(c, h.logger, fmt.Errorf("%w: items must be a JSON array: %v", models.ErrInvalidArgument, err))
		return
	}

	results, err := h.svc.CheckAvailabilityBatch(c.Request.Context(), c.Query("disasterId"), items, c.Query("excludeRequestId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": results})
}

func parseItemParam(c *gin.Context) (models.RequestedItem, error) {
	var item models.RequestedItem
	if raw := c.Query("item"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return item, fmt.Errorf("%w: item must be a JSON object: %v", models.ErrInvalidArgument, err)
		}
		return item, nil
	}

	item.ItemID = c.Query("itemId")
	if raw := c.Query("quantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return item, fmt.Errorf("%w: quantity must be an integer", models.ErrInvalidArgument)
		}
		item.Quantity = qty
	}
	return item, nil
}
