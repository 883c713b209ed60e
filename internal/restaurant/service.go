package restaurant

import (
	"context"
	"errors"
	"math"
	"time"

	"mealmart-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Restaurant, error)
	Search(ctx context.Context, city string, filter SearchFilter) (*SearchResult, error)

	CreateMine(ctx context.Context, userID uuid.UUID, input RestaurantInput) (*Restaurant, error)
	GetMine(ctx context.Context, userID uuid.UUID) (*Restaurant, error)
	UpdateMine(ctx context.Context, userID uuid.UUID, input RestaurantInput) (*Restaurant, error)
}

// RestaurantInput carries the owner-editable fields. Image bytes are hosted
// externally; only the resulting URL is stored here.
type RestaurantInput struct {
	RestaurantName        string
	City                  string
	Country               string
	DeliveryPrice         int64
	EstimatedDeliveryTime int
	Cuisines              []string
	MenuItems             []MenuItemInput
	ImageURL              string
}

type MenuItemInput struct {
	Name  string
	Price int64
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Search(ctx context.Context, city string, filter SearchFilter) (*SearchResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Search"),
		zap.String("city", city),
	)

	cityCount, err := s.repo.CountByCity(ctx, city)
	if err != nil {
		log.Error("failed to count city restaurants", zap.Error(err))
		return nil, err
	}
	if cityCount == 0 {
		return nil, ErrCityNotFound
	}

	restaurants, total, err := s.repo.Search(ctx, city, filter)
	if err != nil {
		log.Error("search failed", zap.Error(err))
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}

	if restaurants == nil {
		restaurants = []*Restaurant{}
	}

	return &SearchResult{
		Data: restaurants,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Pages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	}, nil
}

func (s *service) CreateMine(ctx context.Context, userID uuid.UUID, input RestaurantInput) (*Restaurant, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateMine"),
		zap.String("user_id", userID.String()),
	)

	// One restaurant per owner.
	_, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return nil, ErrRestaurantExists
	}
	if !errors.Is(err, ErrRestaurantNotFound) {
		return nil, err
	}

	rest := buildRestaurant(uuid.New(), userID, input)

	if err := s.repo.Create(ctx, rest); err != nil {
		log.Error("failed to create restaurant", zap.Error(err))
		return nil, err
	}

	log.Info("restaurant created", zap.String("restaurant_id", rest.ID.String()))
	return rest, nil
}

func (s *service) GetMine(ctx context.Context, userID uuid.UUID) (*Restaurant, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) UpdateMine(ctx context.Context, userID uuid.UUID, input RestaurantInput) (*Restaurant, error) {
	existing, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	rest := buildRestaurant(existing.ID, userID, input)
	if input.ImageURL == "" {
		rest.ImageURL = existing.ImageURL
	}

	if err := s.repo.Update(ctx, rest); err != nil {
		return nil, err
	}
	return rest, nil
}

func buildRestaurant(id, userID uuid.UUID, input RestaurantInput) *Restaurant {
	items := make([]MenuItem, 0, len(input.MenuItems))
	for _, mi := range input.MenuItems {
		items = append(items, MenuItem{
			ID:    uuid.New(),
			Name:  mi.Name,
			Price: mi.Price,
		})
	}

	return &Restaurant{
		ID:                    id,
		UserID:                userID,
		RestaurantName:        input.RestaurantName,
		City:                  input.City,
		Country:               input.Country,
		DeliveryPrice:         input.DeliveryPrice,
		EstimatedDeliveryTime: input.EstimatedDeliveryTime,
		Cuisines:              input.Cuisines,
		MenuItems:             items,
		ImageURL:              input.ImageURL,
		LastUpdated:           time.Now(),
	}
}
