package gyms

import (
	"context"

	"github.com/tatame/tatame-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for gyms.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, gym *models.Gym) error
	FindByID(ctx context.Context, id uint) (*models.Gym, error)
	FindByManagerID(ctx context.Context, managerID uint) (*models.Gym, error)
	List(ctx context.Context) ([]models.Gym, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	AffiliateUser(ctx context.Context, userID, gymID uint) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a gyms repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, gym *models.Gym) error {
	return r.db.WithContext(ctx).Create(gym).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uint) (*models.Gym, error) {
	var gym models.Gym
	if err := r.db.WithContext(ctx).First(&gym, id).Error; err != nil {
		return nil, err
	}
	return &gym, nil
}

func (r *repositoryImpl) FindByManagerID(ctx context.Context, managerID uint) (*models.Gym, error) {
	var gym models.Gym
	err := r.db.WithContext(ctx).
		Where("manager_id = ?", managerID).
		Order("id ASC").
		First(&gym).Error
	if err != nil {
		return nil, err
	}
	return &gym, nil
}

func (r *repositoryImpl) List(ctx context.Context) ([]models.Gym, error) {
	var gyms []models.Gym
	err := r.db.WithContext(ctx).Order("name ASC").Find(&gyms).Error
	return gyms, err
}

func (r *repositoryImpl) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Gym{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AffiliateUser points the user's gym_id at gymID.
func (r *repositoryImpl) AffiliateUser(ctx context.Context, userID, gymID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND deleted_at IS NULL", userID).
		Update("gym_id", gymID).Error
}
