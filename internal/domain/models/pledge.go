package models

import "time"

// PledgeStatus is the lifecycle state of an incoming donation.
type PledgeStatus string

const (
	PledgePending   PledgeStatus = "pending"
	PledgeConfirmed PledgeStatus = "confirmed"
	PledgeArrived   PledgeStatus = "arrived"
	PledgeProcessed PledgeStatus = "processed"
)

// SupplyPledgeStatuses are the statuses counted as projected supply.
var SupplyPledgeStatuses = []PledgeStatus{PledgeConfirmed, PledgeArrived}

// Supplies reports whether a pledge in this status counts as future supply.
func (s PledgeStatus) Supplies() bool {
	return s == PledgeConfirmed || s == PledgeArrived
}

// Pledge is a donation that has been announced by a donor.
type Pledge struct {
	ID           string          `bson:"_id" json:"_id"`
	DisasterID   string          `bson:"disasterId" json:"disasterId"`
	DonorName    string          `bson:"donorName" json:"donorName"`
	DonorEmail   string          `bson:"donorEmail" json:"donorEmail"`
	DonorAddress string          `bson:"donorAddress" json:"donorAddress"`
	Items        []RequestedItem `bson:"items" json:"items"`
	Status       PledgeStatus    `bson:"status" json:"status"`
	// ConfirmDate is the expected arrival. Nil means the supply is available now.
	ConfirmDate *time.Time `bson:"confirmDate,omitempty" json:"confirmDate,omitempty"`
	DonatedAt   time.Time  `bson:"donatedAt" json:"donatedAt"`
	ProcessedAt *time.Time `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
}

// QuantityOf sums the pledged quantity of itemID.
func (p Pledge) QuantityOf(itemID string) int {
	return sumQuantity(p.Items, itemID)
}
