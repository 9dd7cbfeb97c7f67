package menu

import (
	"context"

	"gorm.io/gorm"

	"github.com/bitesofsouth/ordering-backend/pkg/db/models"
)

// Repository reads the storefront menu.
type Repository interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	FindByID(ctx context.Context, id string) (*models.MenuItem, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.MenuItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a menu repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.db.WithContext(ctx).
		Where("available = ?", true).
		Order("category ASC, name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []string) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.MenuItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
