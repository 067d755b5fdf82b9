package versions

import (
	"context"
	"time"

	"github.com/tatame/tatame-backend/pkg/db/models"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, version *models.Version) error
	FindByID(ctx context.Context, id uint) (*models.Version, error)
	FindLatestActive(ctx context.Context) (*models.Version, error)
	Disable(ctx context.Context, id uint, at time.Time) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, version *models.Version) error {
	return r.db.WithContext(ctx).Create(version).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uint) (*models.Version, error) {
	var version models.Version
	if err := r.db.WithContext(ctx).First(&version, id).Error; err != nil {
		return nil, err
	}
	return &version, nil
}

// FindLatestActive returns the active version with the highest id.
func (r *repositoryImpl) FindLatestActive(ctx context.Context) (*models.Version, error) {
	var version models.Version
	err := r.db.WithContext(ctx).
		Where("disabled_at IS NULL").
		Order("id DESC").
		First(&version).Error
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *repositoryImpl) Disable(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Version{}).
		Where("id = ? AND disabled_at IS NULL", id).
		Update("disabled_at", at)
	return result.RowsAffected > 0, result.Error
}
