package user

import (
	"errors"
	"net/http"

	"mealmart-be/internal/auth"
	"mealmart-be/internal/httpx"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type updateProfileRequest struct {
	Name         string `json:"name" validate:"required"`
	AddressLine1 string `json:"addressLine1" validate:"required"`
	City         string `json:"city" validate:"required"`
	Country      string `json:"country" validate:"required"`
}

// CreateCurrentUser handles POST /api/my/user. Requires only a verified
// token; the profile record may not exist yet.
func (h *Handler) CreateCurrentUser(w http.ResponseWriter, r *http.Request) {
	authID, ok := auth.SubjectID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body struct {
		Email string `json:"email"`
	}
	_ = httpx.DecodeJSON(r, &body)

	email := body.Email
	if email == "" {
		email = auth.Email(r.Context())
	}

	u, created, err := h.svc.CreateCurrent(r.Context(), authID, email)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, u)
}

// GetCurrentUser handles GET /api/my/user.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.PrincipalID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.svc.GetCurrent(r.Context(), userID)
	if err != nil {
		writeUserError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// UpdateCurrentUser handles PUT /api/my/user.
func (h *Handler) UpdateCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.PrincipalID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.svc.UpdateCurrent(r.Context(), userID, ProfileUpdate{
		Name:         req.Name,
		AddressLine1: req.AddressLine1,
		City:         req.City,
		Country:      req.Country,
	})
	if err != nil {
		writeUserError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "User not found")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "Something went wrong")
	}
}
