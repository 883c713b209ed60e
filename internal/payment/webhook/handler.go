package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"mealmart-be/internal/httpx"
	"mealmart-be/internal/logger"
	"mealmart-be/internal/metrics"
	"mealmart-be/internal/order"
	"mealmart-be/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SignatureHeader carries the gateway's timestamped HMAC over the raw body.
const SignatureHeader = "Stripe-Signature"

const maxBodySize = 1 << 20

// OrderService is the slice of the order service the reconciler needs.
type OrderService interface {
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, settledAmount int64) (bool, error)
}

type Handler struct {
	orders    OrderService
	secret    []byte
	tolerance time.Duration
}

func NewHandler(orders OrderService, endpointSecret string) *Handler {
	return &Handler{
		orders:    orders,
		secret:    []byte(endpointSecret),
		tolerance: payment.DefaultTolerance,
	}
}

// HandleWebhook is the route handler for POST /checkout/webhook.
//
// Only signature failure is rejected with an error status; every verified
// event is acknowledged so the gateway does not keep retrying deliveries
// this service cannot resolve further. The one exception is an order the
// event references that is not stored yet (the checkout crash window):
// that gets a 404 so the gateway's transient retry can heal it.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("handler", "payment_webhook"))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	defer r.Body.Close()

	// Verified over the raw bytes, before any parsing. A single error
	// for every failure mode; which part failed must not leak.
	sig := r.Header.Get(SignatureHeader)
	if err := payment.VerifySignature(body, sig, h.secret, time.Now(), h.tolerance); err != nil {
		log.Warn("webhook signature verification failed")
		metrics.WebhookEvents.WithLabelValues("signature_invalid").Inc()
		httpx.WriteError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	var event payment.Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warn("verified webhook body is not valid JSON", zap.Error(err))
		metrics.WebhookEvents.WithLabelValues("error").Inc()
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	log = log.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)

	if event.Type != payment.EventCheckoutCompleted {
		log.Info("ignoring webhook event type")
		metrics.WebhookEvents.WithLabelValues("ignored").Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	orderID, err := uuid.Parse(event.Data.Object.Metadata["orderId"])
	if err != nil {
		// Verified but unusable; retrying cannot fix the metadata.
		log.Error("webhook event has no usable orderId metadata", zap.Error(err))
		metrics.WebhookEvents.WithLabelValues("error").Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	log = log.With(zap.String("order_id", orderID.String()))

	applied, err := h.orders.ConfirmPayment(ctx, orderID, event.Data.Object.AmountTotal)
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		log.Warn("webhook references unknown order")
		metrics.WebhookEvents.WithLabelValues("order_missing").Inc()
		httpx.WriteError(w, http.StatusNotFound, "order not found")
		return
	case err != nil:
		log.Error("payment reconciliation failed", zap.Error(err))
		metrics.WebhookEvents.WithLabelValues("error").Inc()
		httpx.WriteError(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	if applied {
		metrics.WebhookEvents.WithLabelValues("applied").Inc()
		log.Info("payment event applied")
	} else {
		metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
		log.Info("payment event already applied, acknowledging")
	}

	w.WriteHeader(http.StatusOK)
}
