package models

import "time"

// RewardWallet holds a user's loyalty point balance. UserID is the external
// identity id; guests never have a row. The balance is only ever mutated by
// the checkout debit and never goes negative.
type RewardWallet struct {
	UserID       string    `gorm:"column:user_id;primaryKey"`
	RewardPoints int       `gorm:"column:reward_points;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (RewardWallet) TableName() string {
	return "reward_wallets"
}
