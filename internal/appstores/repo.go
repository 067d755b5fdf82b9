package appstores

import (
	"context"
	"time"

	"github.com/tatame/tatame-backend/pkg/db/models"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, link *models.AppStoreLink) error
	FindByID(ctx context.Context, id uint) (*models.AppStoreLink, error)
	ListActive(ctx context.Context) ([]models.AppStoreLink, error)
	Disable(ctx context.Context, id uint, at time.Time) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, link *models.AppStoreLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uint) (*models.AppStoreLink, error) {
	var link models.AppStoreLink
	if err := r.db.WithContext(ctx).First(&link, id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repositoryImpl) ListActive(ctx context.Context) ([]models.AppStoreLink, error) {
	var out []models.AppStoreLink
	err := r.db.WithContext(ctx).
		Where("disabled_at IS NULL").
		Order("platform ASC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *repositoryImpl) Disable(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AppStoreLink{}).
		Where("id = ? AND disabled_at IS NULL", id).
		Update("disabled_at", at).Error
}
