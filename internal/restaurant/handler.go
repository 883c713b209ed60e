package restaurant

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"mealmart-be/internal/auth"
	"mealmart-be/internal/httpx"

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

type menuItemRequest struct {
	Name  string `json:"name" validate:"required"`
	Price int64  `json:"price" validate:"gte=0"`
}

type restaurantRequest struct {
	RestaurantName        string            `json:"restaurantName" validate:"required"`
	City                  string            `json:"city" validate:"required"`
	Country               string            `json:"country" validate:"required"`
	DeliveryPrice         int64             `json:"deliveryPrice" validate:"gte=0"`
	EstimatedDeliveryTime int               `json:"estimatedDeliveryTime" validate:"gt=0"`
	Cuisines              []string          `json:"cuisines" validate:"required,min=1"`
	MenuItems             []menuItemRequest `json:"menuItems" validate:"required,min=1,dive"`
	ImageURL              string            `json:"imageUrl"`
}

func (req *restaurantRequest) toInput() RestaurantInput {
	items := make([]MenuItemInput, 0, len(req.MenuItems))
	for _, mi := range req.MenuItems {
		items = append(items, MenuItemInput{Name: mi.Name, Price: mi.Price})
	}
	return RestaurantInput{
		RestaurantName:        req.RestaurantName,
		City:                  req.City,
		Country:               req.Country,
		DeliveryPrice:         req.DeliveryPrice,
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,
		Cuisines:              req.Cuisines,
		MenuItems:             items,
		ImageURL:              req.ImageURL,
	}
}

// GetRestaurant handles GET /api/restaurant/{restaurantId} (public).
func (h *Handler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "restaurantId"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid restaurant id")
		return
	}

	rest, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeRestaurantError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rest)
}

// SearchRestaurants handles GET /api/restaurant/search/{city} (public).
func (h *Handler) SearchRestaurants(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	filter := SearchFilter{
		SearchQuery: q.Get("searchQuery"),
		SortOption:  q.Get("sortOption"),
		Page:        page,
	}
	if raw := q.Get("selectedCuisines"); raw != "" {
		filter.Cuisines = strings.Split(raw, ",")
	}

	result, err := h.svc.Search(r.Context(), city, filter)
	if errors.Is(err, ErrCityNotFound) {
		// Same envelope with no hits, so clients can render an empty page.
		httpx.WriteJSON(w, http.StatusNotFound, &SearchResult{
			Data:       []*Restaurant{},
			Pagination: Pagination{Total: 0, Page: 1, Pages: 1},
		})
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result)
}

// CreateMyRestaurant handles POST /api/my/restaurant.
func (h *Handler) CreateMyRestaurant(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.PrincipalID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := decodeRestaurantRequest(w, r)
	if !ok {
		return
	}

	rest, err := h.svc.CreateMine(r.Context(), userID, req.toInput())
	if errors.Is(err, ErrRestaurantExists) {
		httpx.WriteError(w, http.StatusConflict, "User restaurant already exists")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rest)
}

// GetMyRestaurant handles GET /api/my/restaurant.
func (h *Handler) GetMyRestaurant(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.PrincipalID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rest, err := h.svc.GetMine(r.Context(), userID)
	if err != nil {
		writeRestaurantError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rest)
}

// UpdateMyRestaurant handles PUT /api/my/restaurant.
func (h *Handler) UpdateMyRestaurant(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.PrincipalID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := decodeRestaurantRequest(w, r)
	if !ok {
		return
	}

	rest, err := h.svc.UpdateMine(r.Context(), userID, req.toInput())
	if err != nil {
		writeRestaurantError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rest)
}

func decodeRestaurantRequest(w http.ResponseWriter, r *http.Request) (*restaurantRequest, bool) {
	var req restaurantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return nil, false
	}
	if err := validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &req, true
}

func writeRestaurantError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRestaurantNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Restaurant not found")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong")
	}
}
