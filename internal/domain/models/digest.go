package models

import "time"

// ShortfallRow describes one pending request line that current stock cannot serve.
type ShortfallRow struct {
	Date               time.Time
	DisasterID         string
	RequestID          string
	CampID             string
	ItemID             string
	Requested          int
	CurrentlyAvailable int
	// AvailableAfterDays is -1 when confirmed pledges do not cover the line.
	AvailableAfterDays int
	Error              string
}

// SheetValues flattens the row for spreadsheet export.
func (r ShortfallRow) SheetValues() []interface{} {
	return []interface{}{
		r.Date.Format("2006-01-02"),
		r.DisasterID,
		r.RequestID,
		r.CampID,
		r.ItemID,
		r.Requested,
		r.CurrentlyAvailable,
		r.AvailableAfterDays,
	}
}
