package models

import "time"

// CampReservation is one competing reservation netted out of on-hand stock.
type CampReservation struct {
	RequestID  string            `json:"requestId"`
	CampID     string            `json:"campId"`
	Quantity   int               `json:"quantity"`
	Status     ReservationStatus `json:"status"`
	PickupDate *time.Time        `json:"pickupDate,omitempty"`
}

// IncomingSupply is a pledge line projected to arrive for the requested item.
type IncomingSupply struct {
	PledgeID string `json:"pledgeId"`
	// Quantity is everything the pledge brings for the item.
	Quantity int `json:"quantity"`
	// AllocatedQuantity is the part of Quantity that covers the shortfall.
	AllocatedQuantity  int        `json:"allocatedQuantity"`
	ConfirmDate        *time.Time `json:"confirmDate,omitempty"`
	DaysUntilAvailable int        `json:"daysUntilAvailable"`
}

// AvailabilityReport answers whether a requested quantity can be served and when.
type AvailabilityReport struct {
	ItemID                string            `json:"itemId"`
	RequestedQuantity     int               `json:"requestedQuantity"`
	InStock               bool              `json:"inStock"`
	CurrentStock          int               `json:"currentStock"`
	CurrentlyAvailable    int               `json:"currentlyAvailable"`
	ReservedInOtherCamps  int               `json:"reservedInOtherCamps"`
	OtherCampReservations []CampReservation `json:"otherCampReservations"`
	Shortfall             int               `json:"shortfall"`
	AvailableSoon         []IncomingSupply  `json:"availableSoon"`
	FullRequestAvailable  bool              `json:"fullRequestAvailable"`
	// RequestAvailableAfterDays is nil when pledges cannot cover the shortfall.
	RequestAvailableAfterDays    *int `json:"requestAvailableAfterDays"`
	TotalAvailableAfterDonations int  `json:"totalAvailableAfterDonations"`
}

// ItemStatus tags each entry of a batch availability response.
type ItemStatus string

const (
	ItemStatusOK    ItemStatus = "ok"
	ItemStatusError ItemStatus = "error"
)

// ItemAvailability is one entry of a batch response. On failure only the
// identifying fields, Status and Error are set.
type ItemAvailability struct {
	*AvailabilityReport
	ItemID            string     `json:"itemId"`
	RequestedQuantity int        `json:"requestedQuantity"`
	Status            ItemStatus `json:"status"`
	Error             string     `json:"error,omitempty"`
}
