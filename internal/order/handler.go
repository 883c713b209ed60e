package order

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"mealmart-be/internal/auth"
	"mealmart-be/internal/httpx"
	"mealmart-be/internal/restaurant"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// quantityValue accepts both 2 and "2" on the wire; clients historically
// send quantities as strings.
type quantityValue int

func (q *quantityValue) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid quantity %q", s)
	}
	*q = quantityValue(n)
	return nil
}

type checkoutCartItem struct {
	MenuItemID string        `json:"menuItemId" validate:"required,uuid"`
	Name       string        `json:"name"`
	Quantity   quantityValue `json:"quantity" validate:"gt=0"`
}

type deliveryDetailsRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	City         string `json:"city" validate:"required"`
}

type checkoutRequest struct {
	RestaurantID    string                 `json:"restaurantId" validate:"required,uuid"`
	CartItems       []checkoutCartItem     `json:"cartItems" validate:"required,min=1,dive"`
	DeliveryDetails deliveryDetailsRequest `json:"deliveryDetails" validate:"required"`
}

// CreateCheckout handles POST /checkout.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.PrincipalID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req checkoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	restaurantID, _ := uuid.Parse(req.RestaurantID)

	cartItems := make([]CartItem, 0, len(req.CartItems))
	for _, ci := range req.CartItems {
		menuItemID, _ := uuid.Parse(ci.MenuItemID)
		cartItems = append(cartItems, CartItem{
			MenuItemID: menuItemID,
			Name:       ci.Name,
			Quantity:   int(ci.Quantity),
		})
	}

	url, err := h.svc.CreateCheckout(r.Context(), userID, CheckoutRequest{
		RestaurantID: restaurantID,
		CartItems:    cartItems,
		DeliveryDetails: DeliveryDetails{
			Email:        req.DeliveryDetails.Email,
			Name:         req.DeliveryDetails.Name,
			AddressLine1: req.DeliveryDetails.AddressLine1,
			City:         req.DeliveryDetails.City,
		},
	})
	if err != nil {
		writeCheckoutError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, restaurant.ErrRestaurantNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Restaurant not found")
	case errors.Is(err, ErrUnknownMenuItem):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrGateway):
		httpx.WriteError(w, http.StatusInternalServerError, "Error creating payment session")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus handles PATCH /order/{orderId}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.PrincipalID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	target, ok := ParseStatus(req.Status)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid status: "+req.Status)
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), callerID, orderID, target)
	if err != nil {
		writeStatusError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, o)
}

func writeStatusError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrOrderNotFound),
		errors.Is(err, restaurant.ErrRestaurantNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, ErrUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrInvalidTransition):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrStatusConflict):
		httpx.WriteError(w, http.StatusConflict, "Order status changed, retry")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "Unable to update order status")
	}
}

// GetMyOrders handles GET /api/order.
func (h *Handler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.PrincipalID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.svc.ListMine(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if orders == nil {
		orders = []*Order{}
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

// GetMyRestaurantOrders handles GET /api/my/restaurant/order.
func (h *Handler) GetMyRestaurantOrders(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.PrincipalID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.svc.ListForOwner(r.Context(), ownerID)
	if errors.Is(err, restaurant.ErrRestaurantNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "Restaurant not found")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if orders == nil {
		orders = []*Order{}
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}
