package graduations

import (
	"context"

	"github.com/tatame/tatame-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence helpers for graduations.
type Repository interface {
	Upsert(ctx context.Context, graduation *models.Graduation) error
	FindByID(ctx context.Context, id uint) (*models.Graduation, error)
	FindByUserID(ctx context.Context, userID uint) (*models.Graduation, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	FindUser(ctx context.Context, id uint) (*models.User, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// Upsert writes the user's single graduation row, replacing any previous belt.
func (r *repositoryImpl) Upsert(ctx context.Context, graduation *models.Graduation) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"belt", "degree", "modality", "updated_at"}),
		}).
		Create(graduation).Error
	if err != nil {
		return err
	}
	stored, err := r.FindByUserID(ctx, graduation.UserID)
	if err != nil {
		return err
	}
	*graduation = *stored
	return nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uint) (*models.Graduation, error) {
	var graduation models.Graduation
	if err := r.db.WithContext(ctx).First(&graduation, id).Error; err != nil {
		return nil, err
	}
	return &graduation, nil
}

func (r *repositoryImpl) FindByUserID(ctx context.Context, userID uint) (*models.Graduation, error) {
	var graduation models.Graduation
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&graduation).Error; err != nil {
		return nil, err
	}
	return &graduation, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Graduation{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repositoryImpl) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("deleted_at IS NULL").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
