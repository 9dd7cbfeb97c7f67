package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bitesofsouth/ordering-backend/pkg/enums"
)

// GuestUserID marks orders placed without an authenticated session.
const GuestUserID = "guest"

// Order is the immutable record produced at checkout. Only PendingStatus and
// OrderStatus change afterward, driven by the kitchen workflow.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            string              `gorm:"column:user_id;not null;index"`
	OrderStatus       enums.OrderStatus   `gorm:"column:order_status;type:text;not null;default:'Pending'"`
	PendingStatus     string              `gorm:"column:pending_status;not null;default:'25'"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;type:text;not null"`
	TotalPaise        int64               `gorm:"column:total_paise;not null"`
	DineIn            bool                `gorm:"column:dine_in;not null;default:false"`
	TableNo           *string             `gorm:"column:table_no"`
	Instructions      string              `gorm:"column:instructions;not null;default:'No instructions provided'"`
	CouponCode        *string             `gorm:"column:coupon_code"`
	DiscountPaise     int64               `gorm:"column:discount_paise;not null;default:0"`
	MakingTimeMinutes int                 `gorm:"column:making_time_minutes;not null"`

	PaymentID        string    `gorm:"column:payment_id;not null"`
	PaymentOrderID   string    `gorm:"column:payment_order_id;not null"`
	PaymentAmount    int64     `gorm:"column:payment_amount_paise;not null"`
	PaymentCurrency  string    `gorm:"column:payment_currency;not null;default:'INR'"`
	PaymentCaptured  bool      `gorm:"column:payment_captured;not null;default:false"`
	PaymentTimestamp time.Time `gorm:"column:payment_timestamp"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is the snapshot of one cart line at checkout time. MakingTimeMinutes
// holds the per-item share of the order's preparation time, not the menu value.
type OrderItem struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ItemID            string    `gorm:"column:item_id;not null"`
	Name              string    `gorm:"column:name;not null"`
	UnitPricePaise    int64     `gorm:"column:unit_price_paise;not null"`
	Quantity          int       `gorm:"column:quantity;not null"`
	MakingTimeMinutes int       `gorm:"column:making_time_minutes;not null"`
	IsRedeemed        bool      `gorm:"column:is_redeemed;not null;default:false"`
	RequiredPoints    int       `gorm:"column:required_points;not null;default:0"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
