package order

import (
	"time"

	"github.com/google/uuid"
)

type Status string

// Canonical forward-only lifecycle. The persisted enum of the legacy schema
// listed delivered twice and enforced no ordering; here the sequence is fixed
// and transitions may only move to a strictly later state.
const (
	StatusPlaced         Status = "placed"
	StatusPaid           Status = "paid"
	StatusOutForDelivery Status = "outForDelivery"
	StatusDelivered      Status = "delivered"
)

var statusRank = map[Status]int{
	StatusPlaced:         0,
	StatusPaid:           1,
	StatusOutForDelivery: 2,
	StatusDelivered:      3,
}

// ParseStatus validates a client-supplied status string.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := statusRank[st]
	return st, ok
}

// CanAdvanceTo reports whether target is strictly later in the lifecycle.
func (s Status) CanAdvanceTo(target Status) bool {
	from, okFrom := statusRank[s]
	to, okTo := statusRank[target]
	return okFrom && okTo && to > from
}

type DeliveryDetails struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
}

// CartItem is the persisted snapshot of a cart entry. Prices are not stored;
// they are derived from the live menu at pricing time only.
type CartItem struct {
	MenuItemID uuid.UUID `json:"menuItemId"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
}

type Order struct {
	ID              uuid.UUID       `json:"_id"`
	RestaurantID    uuid.UUID       `json:"restaurant"`
	UserID          uuid.UUID       `json:"user"`
	DeliveryDetails DeliveryDetails `json:"deliveryDetails"`
	CartItems       []CartItem      `json:"cartItems"`
	TotalAmount     *int64          `json:"totalAmount,omitempty"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// LineItem is derived per checkout request and never persisted.
type LineItem struct {
	ProductName string
	UnitPrice   int64
	Quantity    int
}
