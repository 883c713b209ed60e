package payment

import "context"

// LineItem is a priced, named quantity unit submitted to the gateway.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

// CheckoutParams describes one hosted checkout session request.
// Metadata is echoed back verbatim in webhook events and carries the
// correlation ids (orderId, restaurantId).
type CheckoutParams struct {
	LineItems         []LineItem
	DeliveryFeeAmount int64
	Metadata          map[string]string
	SuccessURL        string
	CancelURL         string
}

// CheckoutSession is the gateway-hosted transaction context the client is
// redirected to. URL may be empty when the gateway declines to host one.
type CheckoutSession struct {
	ID  string
	URL string
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
}
