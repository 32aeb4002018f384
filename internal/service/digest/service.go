package digest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reliefops/relief-api/internal/domain/models"
	"github.com/reliefops/relief-api/pkg/clients/notifier"
)

const (
	dateLayout     = "2006-01-02"
	shortfallRange = "Shortfalls!A:H"
	maxSummaryRows = 20
)

// PendingSource lists camp requests awaiting approval.
type PendingSource interface {
	FindPending(ctx context.Context) ([]models.ReservationRequest, error)
}

// AvailabilityChecker evaluates a set of items against stock and pledges.
type AvailabilityChecker interface {
	CheckAvailabilityBatch(ctx context.Context, disasterID string, items []models.RequestedItem, excludeRequestID string) ([]models.ItemAvailability, error)
}

// Exporter appends rows to a spreadsheet range.
type Exporter interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
}

// Service builds the daily shortfall digest for pending camp requests.
type Service struct {
	pending  PendingSource
	checker  AvailabilityChecker
	exporter Exporter
	notifier notifier.Client
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the digest. exporter and sender may be nil to disable
// the corresponding delivery.
func NewService(pending PendingSource, checker AvailabilityChecker, exporter Exporter, sender notifier.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pending:  pending,
		checker:  checker,
		exporter: exporter,
		notifier: sender,
		logger:   logger,
		now:      time.Now,
	}
}

// Build evaluates every pending request and returns the lines that current
// stock cannot serve. A request the engine rejects as malformed becomes a
// single error row; a store failure aborts the digest.
func (s *Service) Build(ctx context.Context) ([]models.ShortfallRow, error) {
	requests, err := s.pending.FindPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending requests: %w", err)
	}

	today := s.now().UTC()
	rows := []models.ShortfallRow{}
	for _, req := range requests {
		if len(req.Items) == 0 {
			continue
		}
		results, err := s.checker.CheckAvailabilityBatch(ctx, req.DisasterID, req.Items, req.ID)
		if errors.Is(err, models.ErrInvalidArgument) {
			s.logger.Warn("pending request cannot be checked",
				zap.String("request_id", req.ID),
				zap.String("disaster_id", req.DisasterID),
				zap.Error(err))
			rows = append(rows, models.ShortfallRow{
				Date:               today,
				DisasterID:         req.DisasterID,
				RequestID:          req.ID,
				CampID:             req.CampID,
				AvailableAfterDays: -1,
				Error:              err.Error(),
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("check request %s: %w", req.ID, err)
		}
		for _, result := range results {
			row := models.ShortfallRow{
				Date:               today,
				DisasterID:         req.DisasterID,
				RequestID:          req.ID,
				CampID:             req.CampID,
				ItemID:             result.ItemID,
				Requested:          result.RequestedQuantity,
				AvailableAfterDays: -1,
			}
			if result.Status == models.ItemStatusError {
				row.Error = result.Error
				rows = append(rows, row)
				continue
			}
			if result.InStock {
				continue
			}
			row.CurrentlyAvailable = result.CurrentlyAvailable
			if result.RequestAvailableAfterDays != nil {
				row.AvailableAfterDays = *result.RequestAvailableAfterDays
			}
			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DisasterID < rows[j].DisasterID
	})
	return rows, nil
}

// Run builds the digest and delivers it to the configured channels. It
// returns the summary text.
func (s *Service) Run(ctx context.Context) (string, error) {
	rows, err := s.Build(ctx)
	if err != nil {
		return "", err
	}

	summary := Summarize(s.now().UTC(), rows)
	s.logger.Info("shortfall digest built", zap.Int("rows", len(rows)))

	if s.exporter != nil && len(rows) > 0 {
		values := make([][]interface{}, 0, len(rows))
		for _, row := range rows {
			values = append(values, row.SheetValues())
		}
		if err := s.exporter.AppendRows(ctx, shortfallRange, values); err != nil {
			return summary, fmt.Errorf("export digest: %w", err)
		}
	}

	if s.notifier != nil {
		msg := notifier.Message{Title: "Shortfall digest " + s.now().UTC().Format(dateLayout), Text: summary}
		if err := s.notifier.Send(ctx, msg); err != nil {
			return summary, fmt.Errorf("deliver digest: %w", err)
		}
	}

	return summary, nil
}

// Summarize renders rows as a short plain-text report.
func Summarize(day time.Time, rows []models.ShortfallRow) string {
	if len(rows) == 0 {
		return fmt.Sprintf("Shortfall digest (%s): all pending requests can be served from stock.", day.Format(dateLayout))
	}

	requests := make(map[string]struct{}, len(rows))
	uncovered := 0
	for _, row := range rows {
		requests[row.RequestID] = struct{}{}
		if row.AvailableAfterDays < 0 {
			uncovered++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Shortfall digest (%s): %d items short across %d requests, %d not covered by pledges.",
		day.Format(dateLayout), len(rows), len(requests), uncovered)

	for i, row := range rows {
		if i == maxSummaryRows {
			fmt.Fprintf(&b, "\n... and %d more", len(rows)-maxSummaryRows)
			break
		}
		switch {
		case row.Error != "":
			fmt.Fprintf(&b, "\n- %s/%s %s: check failed (%s)", row.CampID, row.RequestID, row.ItemID, row.Error)
		case row.AvailableAfterDays < 0:
			fmt.Fprintf(&b, "\n- %s/%s %s: need %d, have %d, no pledge cover", row.CampID, row.RequestID, row.ItemID, row.Requested, row.CurrentlyAvailable)
		default:
			fmt.Fprintf(&b, "\n- %s/%s %s: need %d, have %d, covered in %d days", row.CampID, row.RequestID, row.ItemID, row.Requested, row.CurrentlyAvailable, row.AvailableAfterDays)
		}
	}
	return b.String()
}
