package classes

import (
	"context"

	"github.com/tatame/tatame-backend/internal/repo"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists classes.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, class *models.Class) error {
	return r.base.DB(ctx).Create(class).Error
}

// FindByID loads a class by id, soft-deleted rows included.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Class, error) {
	return repo.First[models.Class](withRelations(r.base.IncludingDeleted(ctx)), id)
}

// ListByGym returns every active class of the gym with instructor and gym loaded.
func (r *Repository) ListByGym(ctx context.Context, gymID uint) ([]models.Class, error) {
	var out []models.Class
	err := withRelations(r.base.Active(ctx)).
		Where("gym_id = ?", gymID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// FindInSession returns the class of the gym whose window contains at.
// HH:MM strings are fixed width so the comparison is lexicographic.
func (r *Repository) FindInSession(ctx context.Context, gymID uint, day enums.DayOfWeek, at string) (*models.Class, error) {
	q := withRelations(r.base.Active(ctx)).
		Where("gym_id = ? AND day_of_week = ?", gymID, day).
		Where("start_time <= ? AND end_time >= ?", at, at).
		Order("start_time ASC, id ASC")
	return repo.First[models.Class](q)
}

func (r *Repository) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.base.Active(ctx).
		Model(&models.Class{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *Repository) SoftDelete(ctx context.Context, id uint) (bool, error) {
	result := r.base.Active(ctx).Delete(&models.Class{}, id)
	return result.RowsAffected > 0, result.Error
}

// FindUser loads an active user, used to validate instructors.
func (r *Repository) FindUser(ctx context.Context, id uint) (*models.User, error) {
	return repo.First[models.User](r.base.Active(ctx), id)
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Instructor", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Preload("Gym")
}
