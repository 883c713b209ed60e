package restaurant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const pageSize = 10

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Restaurant, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Restaurant, error)
	Create(ctx context.Context, rest *Restaurant) error
	Update(ctx context.Context, rest *Restaurant) error
	CountByCity(ctx context.Context, city string) (int64, error)
	Search(ctx context.Context, city string, filter SearchFilter) ([]*Restaurant, int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const restaurantColumns = `id, user_id, restaurant_name, city, country,
		delivery_price, estimated_delivery_time, cuisines, image_url, last_updated`

func (r *repository) scanRestaurant(ctx context.Context, row *sql.Row) (*Restaurant, error) {
	var rest Restaurant
	err := row.Scan(
		&rest.ID, &rest.UserID, &rest.RestaurantName, &rest.City, &rest.Country,
		&rest.DeliveryPrice, &rest.EstimatedDeliveryTime,
		pq.Array(&rest.Cuisines), &rest.ImageURL, &rest.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, err
	}

	menus, err := r.fetchMenuItems(ctx, []uuid.UUID{rest.ID})
	if err != nil {
		return nil, err
	}
	rest.MenuItems = menus[rest.ID]
	return &rest, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+restaurantColumns+`
		FROM restaurants WHERE id = $1
	`, id)
	return r.scanRestaurant(ctx, row)
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Restaurant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+restaurantColumns+`
		FROM restaurants WHERE user_id = $1
	`, userID)
	return r.scanRestaurant(ctx, row)
}

// fetchMenuItems loads menus for a batch of restaurants in one round trip.
func (r *repository) fetchMenuItems(ctx context.Context, restaurantIDs []uuid.UUID) (map[uuid.UUID][]MenuItem, error) {
	ids := make([]string, 0, len(restaurantIDs))
	for _, id := range restaurantIDs {
		ids = append(ids, id.String())
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT restaurant_id, id, name, price
		FROM menu_items
		WHERE restaurant_id = ANY($1)
		ORDER BY position ASC
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	menus := make(map[uuid.UUID][]MenuItem)
	for rows.Next() {
		var restID uuid.UUID
		var item MenuItem
		if err := rows.Scan(&restID, &item.ID, &item.Name, &item.Price); err != nil {
			return nil, err
		}
		menus[restID] = append(menus[restID], item)
	}
	return menus, rows.Err()
}

func (r *repository) Create(ctx context.Context, rest *Restaurant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO restaurants (
			id, user_id, restaurant_name, city, country,
			delivery_price, estimated_delivery_time, cuisines, image_url, last_updated
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		rest.ID, rest.UserID, rest.RestaurantName, rest.City, rest.Country,
		rest.DeliveryPrice, rest.EstimatedDeliveryTime,
		pq.Array(rest.Cuisines), rest.ImageURL, rest.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert restaurant: %w", err)
	}

	if err := insertMenuItems(ctx, tx, rest.ID, rest.MenuItems); err != nil {
		return err
	}

	return tx.Commit()
}

// Update rewrites the restaurant row and replaces the menu wholesale.
func (r *repository) Update(ctx context.Context, rest *Restaurant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE restaurants
		SET restaurant_name = $2, city = $3, country = $4,
			delivery_price = $5, estimated_delivery_time = $6,
			cuisines = $7, image_url = $8, last_updated = $9
		WHERE id = $1
	`,
		rest.ID, rest.RestaurantName, rest.City, rest.Country,
		rest.DeliveryPrice, rest.EstimatedDeliveryTime,
		pq.Array(rest.Cuisines), rest.ImageURL, rest.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to update restaurant: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return ErrRestaurantNotFound
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM menu_items WHERE restaurant_id = $1`, rest.ID)
	if err != nil {
		return fmt.Errorf("failed to clear menu: %w", err)
	}

	if err := insertMenuItems(ctx, tx, rest.ID, rest.MenuItems); err != nil {
		return err
	}

	return tx.Commit()
}

func insertMenuItems(ctx context.Context, tx *sql.Tx, restaurantID uuid.UUID, items []MenuItem) error {
	for i, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO menu_items (id, restaurant_id, name, price, position)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, restaurantID, item.Name, item.Price, i)
		if err != nil {
			return fmt.Errorf("failed to insert menu item: %w", err)
		}
	}
	return nil
}

func (r *repository) CountByCity(ctx context.Context, city string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM restaurants WHERE city ILIKE $1
	`, city).Scan(&count)
	return count, err
}

var sortColumns = map[string]string{
	"lastUpdated":           "last_updated",
	"deliveryPrice":         "delivery_price",
	"estimatedDeliveryTime": "estimated_delivery_time",
}

func (r *repository) Search(ctx context.Context, city string, filter SearchFilter) ([]*Restaurant, int64, error) {
	conditions := []string{"city ILIKE $1"}
	args := []interface{}{city}

	if len(filter.Cuisines) > 0 {
		args = append(args, pq.Array(filter.Cuisines))
		conditions = append(conditions, fmt.Sprintf("cuisines @> $%d", len(args)))
	}

	if filter.SearchQuery != "" {
		args = append(args, "%"+filter.SearchQuery+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(restaurant_name ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(cuisines) c WHERE c ILIKE $%d))", n, n))
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM restaurants WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn, ok := sortColumns[filter.SortOption]
	if !ok {
		sortColumn = "last_updated"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	args = append(args, pageSize, (page-1)*pageSize)

	query := fmt.Sprintf(`
		SELECT `+restaurantColumns+`
		FROM restaurants
		WHERE %s
		ORDER BY %s ASC
		LIMIT $%d OFFSET $%d
	`, where, sortColumn, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var restaurants []*Restaurant
	var ids []uuid.UUID
	for rows.Next() {
		var rest Restaurant
		err := rows.Scan(
			&rest.ID, &rest.UserID, &rest.RestaurantName, &rest.City, &rest.Country,
			&rest.DeliveryPrice, &rest.EstimatedDeliveryTime,
			pq.Array(&rest.Cuisines), &rest.ImageURL, &rest.LastUpdated,
		)
		if err != nil {
			return nil, 0, err
		}
		restaurants = append(restaurants, &rest)
		ids = append(ids, rest.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		menus, err := r.fetchMenuItems(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for _, rest := range restaurants {
			rest.MenuItems = menus[rest.ID]
		}
	}

	return restaurants, total, nil
}
