package checkins

import (
	"context"

	"github.com/tatame/tatame-backend/internal/repo"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists check-ins.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// CreateOnce inserts the check-in unless the (user, class) pair already has
// one, in which case the stored row is loaded into checkIn instead.
func (r *Repository) CreateOnce(ctx context.Context, checkIn *models.CheckIn) (bool, error) {
	result := r.base.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "class_id"}},
			DoNothing: true,
		}).
		Create(checkIn)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var existing models.CheckIn
	err := r.base.DB(ctx).
		Where("user_id = ? AND class_id = ?", checkIn.UserID, checkIn.ClassID).
		First(&existing).Error
	if err != nil {
		return false, err
	}
	*checkIn = existing
	return false, nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.CheckIn, error) {
	return repo.First[models.CheckIn](r.base.DB(ctx), id)
}

func (r *Repository) ListByUser(ctx context.Context, userID uint) ([]models.CheckIn, error) {
	var out []models.CheckIn
	err := r.base.DB(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListByClass filters by date when one is given.
func (r *Repository) ListByClass(ctx context.Context, classID uint, date *string) ([]models.CheckIn, error) {
	query := r.base.DB(ctx).Where("class_id = ?", classID)
	if date != nil {
		query = query.Where("date = ?", *date)
	}
	var out []models.CheckIn
	err := query.Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

// Delete removes the row permanently.
func (r *Repository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.base.DB(ctx).Delete(&models.CheckIn{}, id)
	return result.RowsAffected > 0, result.Error
}

// ClassExists reports whether an active class has the given id.
func (r *Repository) ClassExists(ctx context.Context, classID uint) (bool, error) {
	var count int64
	err := r.base.Active(ctx).Model(&models.Class{}).Where("id = ?", classID).Count(&count).Error
	return count > 0, err
}
