package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersPlaced counts orders persisted with a usable checkout session.
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealmart_orders_placed_total",
		Help: "Number of orders created through checkout.",
	})

	// OrdersPaid counts first-time paid transitions applied by the reconciler.
	OrdersPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealmart_orders_paid_total",
		Help: "Number of orders transitioned to paid.",
	})

	// WebhookEvents counts verified gateway deliveries by outcome.
	// Outcomes: applied, duplicate, ignored, order_missing, signature_invalid, error.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealmart_webhook_events_total",
		Help: "Payment gateway webhook deliveries by outcome.",
	}, []string{"outcome"})
)
