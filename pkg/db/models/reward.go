package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Reward is a loyalty bundle redeemable for points. It references one or
// more menu items by id.
type Reward struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string         `gorm:"column:name;not null"`
	MenuItemIDs    pq.StringArray `gorm:"column:menu_item_ids;type:text[];not null"`
	RequiredPoints int            `gorm:"column:required_points;not null"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Reward) TableName() string {
	return "rewards"
}
