package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mealmart-be/internal/logger"

	"go.uber.org/zap"
)

const (
	stripeBaseURL = "https://api.stripe.com"
	currency      = "usd"
)

type stripeGateway struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewStripeGateway returns a Gateway backed by Stripe hosted checkout.
func NewStripeGateway(apiKey string) Gateway {
	if apiKey == "" {
		logger.L().Warn("Stripe API key is empty")
	}

	return &stripeGateway{
		apiKey:  apiKey,
		baseURL: stripeBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type stripeSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	log := logger.FromCtx(ctx).With(
		zap.Int("line_items", len(params.LineItems)),
		zap.String("order_id", params.Metadata["orderId"]),
	)

	form := buildSessionForm(params)

	req, err := http.NewRequestWithContext(ctx, "POST",
		g.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}

	req.SetBasicAuth(g.apiKey, "")
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	log.Info("Creating checkout session")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("Stripe request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("Stripe returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("stripe error: %s", string(bodyBytes))
	}

	var res stripeSessionResponse
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("Failed decoding Stripe response", zap.Error(err))
		return nil, err
	}

	log.Info("Checkout session created",
		zap.String("session_id", res.ID),
	)

	return &CheckoutSession{
		ID:  res.ID,
		URL: res.URL,
	}, nil
}

// buildSessionForm flattens CheckoutParams into Stripe's bracketed form keys.
func buildSessionForm(params CheckoutParams) url.Values {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)

	for i, li := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(li.UnitAmount, 10))
		form.Set(prefix+"[price_data][product_data][name]", li.Name)
		form.Set(prefix+"[quantity]", strconv.Itoa(li.Quantity))
	}

	form.Set("shipping_options[0][shipping_rate_data][display_name]", "Delivery")
	form.Set("shipping_options[0][shipping_rate_data][type]", "fixed_amount")
	form.Set("shipping_options[0][shipping_rate_data][fixed_amount][amount]",
		strconv.FormatInt(params.DeliveryFeeAmount, 10))
	form.Set("shipping_options[0][shipping_rate_data][fixed_amount][currency]", currency)

	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	return form
}
