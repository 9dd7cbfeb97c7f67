package rewards

import (
	"context"

	"gorm.io/gorm"

	"github.com/bitesofsouth/ordering-backend/pkg/db/models"
)

// Repository manages reward definitions and user wallets.
type Repository interface {
	ListRewards(ctx context.Context) ([]models.Reward, error)
	FindReward(ctx context.Context, id string) (*models.Reward, error)
	// FindWallet looks the wallet up on the given handle; a nil tx reads
	// from the repository's own connection.
	FindWallet(ctx context.Context, tx *gorm.DB, userID string) (*models.RewardWallet, error)
	// DebitPoints performs an atomic conditional decrement on the given
	// handle: it succeeds only if reward_points covers the debit. Returns
	// false when the balance was insufficient (or the wallet is absent).
	DebitPoints(ctx context.Context, tx *gorm.DB, userID string, points int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a rewards repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListRewards(ctx context.Context) ([]models.Reward, error) {
	var rewards []models.Reward
	if err := r.db.WithContext(ctx).Order("required_points ASC").Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *repository) FindReward(ctx context.Context, id string) (*models.Reward, error) {
	var reward models.Reward
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reward).Error; err != nil {
		return nil, err
	}
	return &reward, nil
}

func (r *repository) FindWallet(ctx context.Context, tx *gorm.DB, userID string) (*models.RewardWallet, error) {
	handle := tx
	if handle == nil {
		handle = r.db
	}
	var wallet models.RewardWallet
	if err := handle.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) DebitPoints(ctx context.Context, tx *gorm.DB, userID string, points int) (bool, error) {
	handle := tx
	if handle == nil {
		handle = r.db
	}
	result := handle.WithContext(ctx).
		Model(&models.RewardWallet{}).
		Where("user_id = ? AND reward_points >= ?", userID, points).
		UpdateColumn("reward_points", gorm.Expr("reward_points - ?", points))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
