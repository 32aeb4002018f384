package models

import "time"

// ReservationStatus is the lifecycle state of a camp request.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationApproved  ReservationStatus = "approved"
	ReservationArrived   ReservationStatus = "arrived"
	ReservationProcessed ReservationStatus = "processed"
	ReservationRejected  ReservationStatus = "rejected"
)

// ActiveReservationStatuses are the statuses that earmark stock.
var ActiveReservationStatuses = []ReservationStatus{ReservationApproved, ReservationArrived}

// Active reports whether a request in this status holds stock.
// Pending requests are not binding yet.
func (s ReservationStatus) Active() bool {
	return s == ReservationApproved || s == ReservationArrived
}

// Priority expresses how urgently a camp needs its request.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ReservationRequest is a camp's ask for item quantities.
type ReservationRequest struct {
	ID         string            `bson:"_id" json:"_id"`
	CampID     string            `bson:"campId" json:"campId"`
	DisasterID string            `bson:"disasterId" json:"disasterId"`
	Items      []RequestedItem   `bson:"items" json:"items"`
	Status     ReservationStatus `bson:"status" json:"status"`
	Priority   Priority          `bson:"priority" json:"priority"`
	PickupDate *time.Time        `bson:"pickupDate,omitempty" json:"pickupDate,omitempty"`
	Notes      string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time         `bson:"createdAt" json:"createdAt"`
}

// QuantityOf sums the requested quantity of itemID across the request's lines.
func (r ReservationRequest) QuantityOf(itemID string) int {
	return sumQuantity(r.Items, itemID)
}

func sumQuantity(items []RequestedItem, itemID string) int {
	total := 0
	for _, item := range items {
		if item.ItemID == itemID && item.Quantity > 0 {
			total += item.Quantity
		}
	}
	return total
}
