package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bitesofsouth/ordering-backend/pkg/db/models"
	"github.com/bitesofsouth/ordering-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_status TEXT NOT NULL DEFAULT 'Pending',
  pending_status TEXT NOT NULL DEFAULT '25',
  payment_status TEXT NOT NULL,
  total_paise INTEGER NOT NULL,
  dine_in INTEGER NOT NULL DEFAULT 0,
  table_no TEXT,
  instructions TEXT NOT NULL DEFAULT 'No instructions provided',
  coupon_code TEXT,
  discount_paise INTEGER NOT NULL DEFAULT 0,
  making_time_minutes INTEGER NOT NULL,
  payment_id TEXT NOT NULL,
  payment_order_id TEXT NOT NULL,
  payment_amount_paise INTEGER NOT NULL,
  payment_currency TEXT NOT NULL DEFAULT 'INR',
  payment_captured INTEGER NOT NULL DEFAULT 0,
  payment_timestamp DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_paise INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  making_time_minutes INTEGER NOT NULL,
  is_redeemed INTEGER NOT NULL DEFAULT 0,
  required_points INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM order_items")
		db.Exec("DELETE FROM orders")
	})
	return db
}

func seedOrder(t *testing.T, repo Repository, userID string, createdAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:                uuid.New(),
		UserID:            userID,
		OrderStatus:       enums.OrderStatusPending,
		PendingStatus:     "25",
		PaymentStatus:     enums.PaymentStatusPaid,
		TotalPaise:        23000,
		Instructions:      "No instructions provided",
		MakingTimeMinutes: 20,
		PaymentID:         "pay_test",
		PaymentOrderID:    "order_test",
		PaymentAmount:     23000,
		PaymentCurrency:   "INR",
		CreatedAt:         createdAt,
		Items: []models.OrderItem{
			{
				ID:                uuid.New(),
				ItemID:            "masala-dosa",
				Name:              "Masala Dosa",
				UnitPricePaise:    10000,
				Quantity:          2,
				MakingTimeMinutes: 10,
			},
		},
	}
	require.NoError(t, repo.Create(context.Background(), nil, order))
	return order
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := seedOrder(t, repo, "user-1", time.Now())

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", found.UserID)
	assert.Equal(t, "25", found.PendingStatus)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Masala Dosa", found.Items[0].Name)
	assert.Equal(t, 2, found.Items[0].Quantity)
}

func TestRepositoryListByUserNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	base := time.Now().Add(-time.Hour)
	older := seedOrder(t, repo, "user-1", base)
	newer := seedOrder(t, repo, "user-1", base.Add(30*time.Minute))
	seedOrder(t, repo, "user-2", base.Add(10*time.Minute))

	listed, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, newer.ID, listed[0].ID)
	assert.Equal(t, older.ID, listed[1].ID)
}

func TestRepositoryUpdateProgress(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := seedOrder(t, repo, "user-1", time.Now())

	updated, err := repo.UpdateProgress(context.Background(), order.ID, 60, enums.OrderStatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, "60", updated.PendingStatus)
	assert.Equal(t, enums.OrderStatusPreparing, updated.OrderStatus)

	_, err = repo.UpdateProgress(context.Background(), uuid.New(), 60, enums.OrderStatusPreparing)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
