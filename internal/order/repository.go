package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*Order, error)

	// MarkPaid applies the placed->paid transition and sets the settled
	// amount in one guarded statement. Returns false when the order was
	// not in placed state anymore, so concurrent deliveries apply at most
	// one transition between them.
	MarkPaid(ctx context.Context, id uuid.UUID, totalAmount int64) (bool, error)

	// UpdateStatusIfCurrent advances the status only if the row still holds
	// the status the caller observed. Returns false on a lost race.
	UpdateStatusIfCurrent(ctx context.Context, id uuid.UUID, current, target Status) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, restaurant_id, user_id,
			delivery_email, delivery_name, delivery_address_line1, delivery_city,
			total_amount, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		o.ID, o.RestaurantID, o.UserID,
		o.DeliveryDetails.Email, o.DeliveryDetails.Name,
		o.DeliveryDetails.AddressLine1, o.DeliveryDetails.City,
		o.TotalAmount, o.Status, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i, item := range o.CartItems {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, name, quantity, position)
			VALUES ($1,$2,$3,$4,$5)
		`, o.ID, item.MenuItemID, item.Name, item.Quantity, i)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

const orderColumns = `id, restaurant_id, user_id,
		delivery_email, delivery_name, delivery_address_line1, delivery_city,
		total_amount, status, created_at`

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders WHERE id = $1
	`, id)

	var o Order
	err := row.Scan(
		&o.ID, &o.RestaurantID, &o.UserID,
		&o.DeliveryDetails.Email, &o.DeliveryDetails.Name,
		&o.DeliveryDetails.AddressLine1, &o.DeliveryDetails.City,
		&o.TotalAmount, &o.Status, &o.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachCartItems(ctx, []*Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return r.list(ctx, `WHERE user_id = $1`, userID)
}

func (r *repository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*Order, error) {
	return r.list(ctx, `WHERE restaurant_id = $1`, restaurantID)
}

func (r *repository) list(ctx context.Context, where string, arg interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders `+where+`
		ORDER BY created_at DESC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		err := rows.Scan(
			&o.ID, &o.RestaurantID, &o.UserID,
			&o.DeliveryDetails.Email, &o.DeliveryDetails.Name,
			&o.DeliveryDetails.AddressLine1, &o.DeliveryDetails.City,
			&o.TotalAmount, &o.Status, &o.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachCartItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) attachCartItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*Order, len(orders))
	ids := make([]interface{}, 0, len(orders))
	placeholders := make([]string, 0, len(orders))
	for i, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}

	query := fmt.Sprintf(`
		SELECT order_id, menu_item_id, name, quantity
		FROM order_items
		WHERE order_id IN (%s)
		ORDER BY position ASC
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		var item CartItem
		if err := rows.Scan(&orderID, &item.MenuItemID, &item.Name, &item.Quantity); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.CartItems = append(o.CartItems, item)
		}
	}
	return rows.Err()
}

func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, totalAmount int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, total_amount = $3
		WHERE id = $1 AND status = $4
	`, id, StatusPaid, totalAmount, StatusPlaced)
	if err != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *repository) UpdateStatusIfCurrent(ctx context.Context, id uuid.UUID, current, target Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2
		WHERE id = $1 AND status = $3
	`, id, target, current)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
