package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bitesofsouth/ordering-backend/pkg/enums"
)

// Coupon is a storefront discount code. Codes are stored upper-case and
// matched case-insensitively. The engine treats everything except Uses as
// immutable; Uses is advanced by the back-office when a coupon is consumed.
type Coupon struct {
	Code          string             `gorm:"column:code;primaryKey"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	Value         decimal.Decimal    `gorm:"column:value;type:numeric(12,2);not null"`
	ExpiresAt     *time.Time         `gorm:"column:expires_at"`
	UsesTillValid int                `gorm:"column:uses_till_valid;not null"`
	Uses          int                `gorm:"column:uses;not null;default:0"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// Usable reports whether the coupon can still be applied at the given time.
// A nil expiry never expires.
func (c Coupon) Usable(now time.Time) bool {
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return false
	}
	return c.Uses < c.UsesTillValid
}
