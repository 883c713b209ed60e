package order

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRows(o *Order) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "restaurant_id", "user_id",
		"delivery_email", "delivery_name", "delivery_address_line1", "delivery_city",
		"total_amount", "status", "created_at",
	}).AddRow(
		o.ID, o.RestaurantID, o.UserID,
		o.DeliveryDetails.Email, o.DeliveryDetails.Name,
		o.DeliveryDetails.AddressLine1, o.DeliveryDetails.City,
		o.TotalAmount, o.Status, o.CreatedAt,
	)
}

func TestRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	o := &Order{
		ID:           uuid.New(),
		RestaurantID: uuid.New(),
		UserID:       uuid.New(),
		DeliveryDetails: DeliveryDetails{
			Email: "jo@example.com", Name: "Jo",
			AddressLine1: "Main St 1", City: "Amsterdam",
		},
		CartItems: []CartItem{
			{MenuItemID: uuid.New(), Name: "Margherita", Quantity: 2},
			{MenuItemID: uuid.New(), Name: "Garlic Bread", Quantity: 1},
		},
		Status:    StatusPlaced,
		CreatedAt: time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO orders`)).
		WithArgs(
			o.ID, o.RestaurantID, o.UserID,
			o.DeliveryDetails.Email, o.DeliveryDetails.Name,
			o.DeliveryDetails.AddressLine1, o.DeliveryDetails.City,
			nil, string(StatusPlaced), o.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WithArgs(o.ID, o.CartItems[0].MenuItemID, "Margherita", 2, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO order_items`)).
		WithArgs(o.ID, o.CartItems[1].MenuItemID, "Garlic Bread", 1, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.Create(context.Background(), o)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(nil))

	_, err = repo.GetByID(context.Background(), id)
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestRepositoryGetByIDAttachesItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	o := &Order{
		ID:           uuid.New(),
		RestaurantID: uuid.New(),
		UserID:       uuid.New(),
		Status:       StatusPlaced,
		CreatedAt:    time.Now(),
	}
	itemID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE id = $1`)).
		WithArgs(o.ID).
		WillReturnRows(orderRows(o))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items`)).
		WithArgs(o.ID).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "menu_item_id", "name", "quantity"}).
			AddRow(o.ID, itemID, "Margherita", 2))

	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, got.CartItems, 1)
	assert.Equal(t, itemID, got.CartItems[0].MenuItemID)
	assert.Equal(t, 2, got.CartItems[0].Quantity)
	assert.Nil(t, got.TotalAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryMarkPaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders`)).
		WithArgs(id, string(StatusPaid), int64(2700), string(StatusPlaced)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.MarkPaid(context.Background(), id, 2700)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryMarkPaidAlreadyApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	id := uuid.New()

	// The row is no longer in placed state; the guarded update touches nothing.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders`)).
		WithArgs(id, string(StatusPaid), int64(2700), string(StatusPlaced)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.MarkPaid(context.Background(), id, 2700)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestRepositoryUpdateStatusIfCurrent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders`)).
		WithArgs(id, string(StatusOutForDelivery), string(StatusPaid)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.UpdateStatusIfCurrent(context.Background(), id, StatusPaid, StatusOutForDelivery)
	require.NoError(t, err)
	assert.True(t, updated)
}

func TestRepositoryUpdateStatusIfCurrentLostRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders`)).
		WithArgs(id, string(StatusOutForDelivery), string(StatusPaid)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.UpdateStatusIfCurrent(context.Background(), id, StatusPaid, StatusOutForDelivery)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestRepositoryListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	userID := uuid.New()

	o := &Order{
		ID:           uuid.New(),
		RestaurantID: uuid.New(),
		UserID:       userID,
		Status:       StatusPaid,
		CreatedAt:    time.Now(),
	}

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1`)).
		WithArgs(userID).
		WillReturnRows(orderRows(o))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM order_items`)).
		WithArgs(o.ID).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "menu_item_id", "name", "quantity"}))

	orders, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
