package coupons

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bitesofsouth/ordering-backend/pkg/db/models"
)

// Repository reads coupon records. Uses counters are advanced by the
// back-office, not by this service.
type Repository interface {
	ListAvailable(ctx context.Context, now time.Time) ([]models.Coupon, error)
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a coupon repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListAvailable(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.db.WithContext(ctx).
		Where("(expires_at IS NULL OR expires_at > ?) AND uses < uses_till_valid", now).
		Order("code ASC").
		Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(code)).
		First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}
