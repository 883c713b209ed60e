package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mealmart-be/internal/order"
	"mealmart-be/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, settledAmount int64) (bool, error) {
	args := m.Called(ctx, orderID, settledAmount)
	return args.Bool(0), args.Error(1)
}

func completedEventBody(orderID string, amount int64) string {
	return fmt.Sprintf(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_1",
				"amount_total": %d,
				"metadata": {"orderId": %q, "restaurantId": "rest_1"}
			}
		}
	}`, amount, orderID)
}

func deliver(h *Handler, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/checkout/webhook", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)
	return rec
}

func signedHeader(body string) string {
	return payment.SignPayload([]byte(body), []byte(testSecret), time.Now())
}

func TestHandleWebhookApplies(t *testing.T) {
	orders := new(MockOrderService)
	h := NewHandler(orders, testSecret)

	orderID := uuid.New()
	body := completedEventBody(orderID.String(), 2700)

	orders.On("ConfirmPayment", mock.Anything, orderID, int64(2700)).Return(true, nil)

	rec := deliver(h, body, signedHeader(body))
	assert.Equal(t, http.StatusOK, rec.Code)
	orders.AssertExpectations(t)
}

func TestHandleWebhookDuplicateAcknowledged(t *testing.T) {
	orders := new(MockOrderService)
	h := NewHandler(orders, testSecret)

	orderID := uuid.New()
	body := completedEventBody(orderID.String(), 2700)

	orders.On("ConfirmPayment", mock.Anything, orderID, int64(2700)).Return(false, nil)

	rec := deliver(h, body, signedHeader(body))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleWebhookMissingSignature(t *testing.T) {
	orders := new(MockOrderService)
	h := NewHandler(orders, testSecret)

	body := completedEventBody(uuid.NewString(), 2700)
	rec := deliver(h, body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// An unverified delivery must not touch any order.
	orders.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhookBadSignature(t *testing.T) {
	orders := new(MockOrderService)
	h := NewHandler(orders, testSecret)

	body := completedEventBody(uuid.NewString(), 2700)
	forged := payment.SignPayload([]byte(body), []byte("whsec_wrong"), time.Now())

	rec := deliver(h, body, forged)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	orders.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhookTamperedBody(t *testing.T) {
	orders := new(MockOrderService)
	h := NewHandler(orders, testSecret)

	body := completedEventBody(uuid.NewString(), 2700)
	header := signedHeader(body)
	tampered := strings.Replace(body, "2700", "1", 1)

	rec := deliver(h, tampered, header)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	orders.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhookIgnoredEventType(t *testing.T) {
	orders := new(MockOrderService)
	h := NewHandler(orders, testSecret)

	body := `{"id":"evt_2","type":"payment_intent.created","data":{"object":{}}}`
	rec := deliver(h, body, signedHeader(body))

	assert.Equal(t, http.StatusOK, rec.Code)
	orders.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhookUnusableMetadata(t *testing.T) {
	orders := new(MockOrderService)
	h := NewHandler(orders, testSecret)

	// Verified event without a parseable order id; a retry cannot fix it,
	// so it is acknowledged and dropped.
	body := completedEventBody("not-a-uuid", 2700)
	rec := deliver(h, body, signedHeader(body))

	assert.Equal(t, http.StatusOK, rec.Code)
	orders.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleWebhookOrderMissing(t *testing.T) {
	orders := new(MockOrderService)
	h := NewHandler(orders, testSecret)

	orderID := uuid.New()
	body := completedEventBody(orderID.String(), 2700)

	orders.On("ConfirmPayment", mock.Anything, orderID, int64(2700)).
		Return(false, order.ErrOrderNotFound)

	// 404 keeps the gateway retrying; the order may land shortly after the
	// session if the service crashed mid-checkout.
	rec := deliver(h, body, signedHeader(body))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleWebhookReconcilerError(t *testing.T) {
	orders := new(MockOrderService)
	h := NewHandler(orders, testSecret)

	orderID := uuid.New()
	body := completedEventBody(orderID.String(), 2700)

	orders.On("ConfirmPayment", mock.Anything, orderID, int64(2700)).
		Return(false, errors.New("db down"))

	rec := deliver(h, body, signedHeader(body))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleWebhookInvalidJSON(t *testing.T) {
	orders := new(MockOrderService)
	h := NewHandler(orders, testSecret)

	body := `{"id": "evt_3", "type":`
	rec := deliver(h, body, signedHeader(body))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	orders.AssertNotCalled(t, "ConfirmPayment", mock.Anything, mock.Anything, mock.Anything)
}
