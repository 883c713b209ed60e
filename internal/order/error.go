package order

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnknownMenuItem   = errors.New("unknown menu item")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStatusConflict    = errors.New("order status changed concurrently")
	ErrGateway           = errors.New("payment gateway error")
)
