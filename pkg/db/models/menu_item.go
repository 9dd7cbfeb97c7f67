package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuItem is one orderable dish on the storefront menu.
type MenuItem struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string    `gorm:"column:name;not null"`
	Description       string    `gorm:"column:description"`
	ImageURL          string    `gorm:"column:image_url"`
	PricePaise        int64     `gorm:"column:price_paise;not null"`
	MakingTimeMinutes int       `gorm:"column:making_time_minutes;not null;default:15"`
	Category          string    `gorm:"column:category"`
	Available         bool      `gorm:"column:available;not null;default:true"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}
