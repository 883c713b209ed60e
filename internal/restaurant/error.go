package restaurant

import "errors"

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrRestaurantExists   = errors.New("user restaurant already exists")
	ErrCityNotFound       = errors.New("no restaurants in city")
)
