package user

import (
	"context"
	"errors"
	"time"

	"mealmart-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	// CreateCurrent registers a profile for a verified identity. Replays for
	// an already registered subject return the stored record unchanged.
	CreateCurrent(ctx context.Context, authID, email string) (*User, bool, error)
	GetCurrent(ctx context.Context, userID uuid.UUID) (*User, error)
	UpdateCurrent(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*User, error)

	// ResolvePrincipal satisfies middleware.PrincipalResolver.
	ResolvePrincipal(ctx context.Context, authID string) (uuid.UUID, error)
}

type ProfileUpdate struct {
	Name         string
	AddressLine1 string
	City         string
	Country      string
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCurrent(ctx context.Context, authID, email string) (*User, bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateCurrent"),
	)

	existing, err := s.repo.GetByAuthID(ctx, authID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		log.Error("failed to look up user", zap.Error(err))
		return nil, false, err
	}

	now := time.Now()
	u := &User{
		ID:        uuid.New(),
		AuthID:    authID,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, false, err
	}

	log.Info("user created", zap.String("user_id", u.ID.String()))
	return u, true, nil
}

func (s *service) GetCurrent(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) UpdateCurrent(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.Name = update.Name
	u.AddressLine1 = update.AddressLine1
	u.City = update.City
	u.Country = update.Country
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ResolvePrincipal(ctx context.Context, authID string) (uuid.UUID, error) {
	u, err := s.repo.GetByAuthID(ctx, authID)
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}
