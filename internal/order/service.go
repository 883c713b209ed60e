package order

import (
	"context"
	"fmt"
	"time"

	"mealmart-be/internal/logger"
	"mealmart-be/internal/metrics"
	"mealmart-be/internal/payment"
	"mealmart-be/internal/restaurant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	// CreateCheckout prices the cart, opens a gateway session carrying the
	// order id as correlation metadata, persists the placed order and
	// returns the redirect URL for the client to complete payment.
	CreateCheckout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (string, error)

	// ConfirmPayment applies the placed->paid transition at most once.
	// The returned bool is false when the event had already been applied.
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, settledAmount int64) (bool, error)

	// UpdateStatus advances an order through fulfillment on behalf of the
	// owning restaurant's principal.
	UpdateStatus(ctx context.Context, callerID, orderID uuid.UUID, target Status) (*Order, error)

	ListMine(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*Order, error)
}

type CheckoutRequest struct {
	RestaurantID    uuid.UUID
	CartItems       []CartItem
	DeliveryDetails DeliveryDetails
}

type service struct {
	repo        Repository
	restaurants restaurant.Repository
	gateway     payment.Gateway
	frontendURL string
}

func NewService(repo Repository, restaurants restaurant.Repository, gateway payment.Gateway, frontendURL string) Service {
	return &service{
		repo:        repo,
		restaurants: restaurants,
		gateway:     gateway,
		frontendURL: frontendURL,
	}
}

func (s *service) CreateCheckout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateCheckout"),
		zap.String("restaurant_id", req.RestaurantID.String()),
		zap.Int("item_count", len(req.CartItems)),
	)

	log.Info("checkout started")

	rest, err := s.restaurants.GetByID(ctx, req.RestaurantID)
	if err != nil {
		log.Warn("restaurant lookup failed", zap.Error(err))
		return "", err
	}

	lineItems, err := BuildLineItems(req.CartItems, rest.MenuItems)
	if err != nil {
		log.Warn("cart pricing failed", zap.Error(err))
		return "", err
	}

	// The order id must exist before the gateway call; it rides along as
	// session metadata and is how the webhook finds its way back.
	o := &Order{
		ID:              uuid.New(),
		RestaurantID:    rest.ID,
		UserID:          userID,
		DeliveryDetails: req.DeliveryDetails,
		CartItems:       req.CartItems,
		Status:          StatusPlaced,
		CreatedAt:       time.Now(),
	}

	log = log.With(zap.String("order_id", o.ID.String()))

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutParams{
		LineItems:         toGatewayItems(lineItems),
		DeliveryFeeAmount: rest.DeliveryPrice,
		Metadata: map[string]string{
			"orderId":      o.ID.String(),
			"restaurantId": rest.ID.String(),
		},
		SuccessURL: fmt.Sprintf("%s/order-status?success=true", s.frontendURL),
		CancelURL:  fmt.Sprintf("%s/detail/%s?cancelled=true", s.frontendURL, rest.ID),
	})
	if err != nil {
		log.Error("gateway session creation failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if session.URL == "" {
		log.Error("gateway returned session without redirect URL",
			zap.String("session_id", session.ID))
		return "", ErrGateway
	}

	// Persisted only now that a usable session exists; a failed gateway
	// call must not leave an orphan placed order behind.
	if err := s.repo.Create(ctx, o); err != nil {
		log.Error("failed to persist order", zap.Error(err))
		return "", err
	}

	metrics.OrdersPlaced.Inc()
	log.Info("order placed", zap.String("session_id", session.ID))

	return session.URL, nil
}

func toGatewayItems(lineItems []LineItem) []payment.LineItem {
	items := make([]payment.LineItem, 0, len(lineItems))
	for _, li := range lineItems {
		items = append(items, payment.LineItem{
			Name:       li.ProductName,
			UnitAmount: li.UnitPrice,
			Quantity:   li.Quantity,
		})
	}
	return items
}

func (s *service) ConfirmPayment(ctx context.Context, orderID uuid.UUID, settledAmount int64) (bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ConfirmPayment"),
		zap.String("order_id", orderID.String()),
		zap.Int64("settled_amount", settledAmount),
	)

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		log.Warn("order lookup failed", zap.Error(err))
		return false, err
	}

	if o.Status != StatusPlaced {
		// Duplicate or late delivery; the transition already happened.
		log.Info("payment event already applied", zap.String("status", string(o.Status)))
		return false, nil
	}

	// Guarded write; a concurrent delivery observing the same placed
	// state loses the race here instead of double-applying.
	applied, err := s.repo.MarkPaid(ctx, orderID, settledAmount)
	if err != nil {
		log.Error("failed to mark order paid", zap.Error(err))
		return false, err
	}
	if !applied {
		log.Info("payment event lost the race, already applied")
		return false, nil
	}

	metrics.OrdersPaid.Inc()
	log.Info("order marked paid")
	return true, nil
}

func (s *service) UpdateStatus(ctx context.Context, callerID, orderID uuid.UUID, target Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", orderID.String()),
		zap.String("target_status", string(target)),
	)

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	rest, err := s.restaurants.GetByID(ctx, o.RestaurantID)
	if err != nil {
		log.Error("failed to resolve order restaurant", zap.Error(err))
		return nil, err
	}

	// Ownership check before anything about the order leaks.
	if rest.UserID != callerID {
		log.Warn("status update by non-owner rejected")
		return nil, ErrUnauthorized
	}

	// paid belongs to the payment reconciler; owners only move orders
	// forward through fulfillment.
	if target == StatusPaid || !o.Status.CanAdvanceTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
	}

	updated, err := s.repo.UpdateStatusIfCurrent(ctx, orderID, o.Status, target)
	if err != nil {
		log.Error("failed to update status", zap.Error(err))
		return nil, err
	}
	if !updated {
		return nil, ErrStatusConflict
	}

	o.Status = target
	log.Info("order status updated")
	return o, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*Order, error) {
	rest, err := s.restaurants.GetByUserID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByRestaurant(ctx, rest.ID)
}
