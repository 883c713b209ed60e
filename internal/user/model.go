package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the locally stored profile for an externally verified identity.
// AuthID is the token subject issued by the identity provider.
type User struct {
	ID           uuid.UUID `json:"_id"`
	AuthID       string    `json:"authId"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	AddressLine1 string    `json:"addressLine1,omitempty"`
	City         string    `json:"city,omitempty"`
	Country      string    `json:"country,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
