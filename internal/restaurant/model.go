package restaurant

import (
	"time"

	"github.com/google/uuid"
)

// MenuItem prices are integer minor currency units.
type MenuItem struct {
	ID    uuid.UUID `json:"_id"`
	Name  string    `json:"name"`
	Price int64     `json:"price"`
}

type Restaurant struct {
	ID                    uuid.UUID  `json:"_id"`
	UserID                uuid.UUID  `json:"user"`
	RestaurantName        string     `json:"restaurantName"`
	City                  string     `json:"city"`
	Country               string     `json:"country"`
	DeliveryPrice         int64      `json:"deliveryPrice"`
	EstimatedDeliveryTime int        `json:"estimatedDeliveryTime"`
	Cuisines              []string   `json:"cuisines"`
	MenuItems             []MenuItem `json:"menuItems"`
	ImageURL              string     `json:"imageUrl"`
	LastUpdated           time.Time  `json:"lastUpdated"`
}

type SearchFilter struct {
	SearchQuery string
	Cuisines    []string
	SortOption  string
	Page        int
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

type SearchResult struct {
	Data       []*Restaurant `json:"data"`
	Pagination Pagination    `json:"pagination"`
}
