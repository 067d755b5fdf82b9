package assets

import (
	"context"
	"time"

	"github.com/tatame/tatame-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for class assets.
type Repository interface {
	Create(ctx context.Context, asset *models.Asset) error
	FindByID(ctx context.Context, id uint) (*models.Asset, error)
	ListByClass(ctx context.Context, classID uint, now time.Time) ([]models.Asset, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]models.Asset, error)
	Delete(ctx context.Context, ids ...uint) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, asset *models.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uint) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.WithContext(ctx).First(&asset, id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// ListByClass returns assets of the class that are still valid at now.
func (r *repositoryImpl) ListByClass(ctx context.Context, classID uint, now time.Time) ([]models.Asset, error) {
	var out []models.Asset
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *repositoryImpl) ListExpired(ctx context.Context, now time.Time, limit int) ([]models.Asset, error) {
	var out []models.Asset
	err := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Order("expires_at ASC, id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *repositoryImpl) Delete(ctx context.Context, ids ...uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Asset{})
	return result.RowsAffected, result.Error
}
