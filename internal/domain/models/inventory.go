package models

// InventoryItem is the on-hand stock of one item type within a disaster.
type InventoryItem struct {
	ID          string `bson:"_id" json:"_id"`
	DisasterID  string `bson:"disasterId" json:"disasterId"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Category    string `bson:"category,omitempty" json:"category,omitempty"`
	Unit        string `bson:"unit,omitempty" json:"unit,omitempty"`
	Quantity    int    `bson:"quantity" json:"quantity"`
	Room        string `bson:"room,omitempty" json:"room,omitempty"`
}

// RequestedItem is an (item, quantity) pair used by reservations, pledges and queries.
type RequestedItem struct {
	ItemID   string `bson:"itemId" json:"itemId" validate:"required"`
	Quantity int    `bson:"quantity" json:"quantity" validate:"gt=0"`
}
