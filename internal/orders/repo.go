package orders

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitesofsouth/ordering-backend/pkg/db/models"
	"github.com/bitesofsouth/ordering-backend/pkg/enums"
)

// Repository persists orders and their item snapshots.
type Repository interface {
	// Create inserts the order and its items on the given handle so checkout
	// can bundle it with the wallet debit.
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int, status enums.OrderStatus) (*models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	handle := tx
	if handle == nil {
		handle = r.db
	}
	return handle.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) UpdateProgress(ctx context.Context, id uuid.UUID, progress int, status enums.OrderStatus) (*models.Order, error) {
	updates := map[string]any{
		"pending_status": strconv.Itoa(progress),
	}
	if status != "" {
		updates["order_status"] = status
	}
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}
