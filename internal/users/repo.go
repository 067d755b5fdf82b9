package users

import (
	"context"
	"time"

	"github.com/tatame/tatame-backend/internal/repo"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.base.DB(ctx).Create(user).Error
}

// FindByID loads a user by id, including soft-deleted rows.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return repo.First[models.User](r.base.IncludingDeleted(ctx), id)
}

// FindActiveByID loads a user by id, skipping soft-deleted rows.
func (r *Repository) FindActiveByID(ctx context.Context, id uint) (*models.User, error) {
	return repo.First[models.User](r.base.Active(ctx), id)
}

// FindByIdentityID loads the active user linked to an identity-provider account.
func (r *Repository) FindByIdentityID(ctx context.Context, identityID string) (*models.User, error) {
	return repo.First[models.User](r.base.Active(ctx), "identity_id = ?", identityID)
}

// FindByStripeCustomerID loads the active user billed under the given customer.
func (r *Repository) FindByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	return repo.First[models.User](r.base.Active(ctx), "stripe_customer_id = ?", customerID)
}

// FindRoleByUserID returns gorm.ErrRecordNotFound for unknown ids.
func (r *Repository) FindRoleByUserID(ctx context.Context, id uint) (enums.Role, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// ListByIDs loads active users by id.
func (r *Repository) ListByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.User
	err := r.base.Active(ctx).Where("id IN ?", ids).Order("id ASC").Find(&out).Error
	return out, err
}

// Update applies the provided column values.
func (r *Repository) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.base.IncludingDeleted(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SetGymID affiliates the user with a gym.
func (r *Repository) SetGymID(ctx context.Context, userID, gymID uint) error {
	return r.base.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("gym_id", gymID).Error
}

// SetApproval writes the mutually exclusive approval timestamps.
func (r *Repository) SetApproval(ctx context.Context, userID uint, approvedAt, deniedAt *time.Time) error {
	return r.base.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"approved_at": approvedAt,
			"denied_at":   deniedAt,
		}).Error
}

// SoftDelete marks the user as deleted.
func (r *Repository) SoftDelete(ctx context.Context, id uint) (bool, error) {
	result := r.base.Active(ctx).Delete(&models.User{}, id)
	return result.RowsAffected > 0, result.Error
}

// ListStudentsByGym returns the active students of a gym with their graduation, if any.
func (r *Repository) ListStudentsByGym(ctx context.Context, gymID uint) ([]StudentDTO, error) {
	var students []models.User
	if err := r.base.Active(ctx).
		Where("gym_id = ? AND role = ?", gymID, enums.RoleStudent).
		Find(&students).Error; err != nil {
		return nil, err
	}
	if len(students) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	var grads []models.Graduation
	if err := r.base.DB(ctx).Where("user_id IN ?", ids).Find(&grads).Error; err != nil {
		return nil, err
	}
	byUser := make(map[uint]models.Graduation, len(grads))
	for _, g := range grads {
		byUser[g.UserID] = g
	}

	out := make([]StudentDTO, 0, len(students))
	for _, s := range students {
		dto := StudentDTO{User: s}
		if g, ok := byUser[s.ID]; ok {
			dto.Graduation = &GraduationSummary{Belt: g.Belt, Degree: g.Degree, Modality: g.Modality}
		}
		out = append(out, dto)
	}
	return out, nil
}

// ListInstructorsByGym returns managers and approved instructors of a gym.
func (r *Repository) ListInstructorsByGym(ctx context.Context, gymID uint) ([]models.User, error) {
	var out []models.User
	err := r.base.Active(ctx).
		Where("gym_id = ?", gymID).
		Where("role = ? OR (role = ? AND approved_at IS NOT NULL)", enums.RoleManager, enums.RoleInstructor).
		Order("first_name ASC").
		Find(&out).Error
	return out, err
}

// ListPendingByGym returns members awaiting a manager decision.
func (r *Repository) ListPendingByGym(ctx context.Context, gymID uint) ([]models.User, error) {
	var out []models.User
	err := r.base.Active(ctx).
		Where("gym_id = ? AND role <> ?", gymID, enums.RoleManager).
		Where("approved_at IS NULL AND denied_at IS NULL").
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// ListBirthdays returns users whose birth_day matches monthDay ("MM-DD").
// A nil gymID searches every gym.
func (r *Repository) ListBirthdays(ctx context.Context, gymID *uint, monthDay string) ([]models.User, error) {
	query := r.base.Active(ctx).Where("birth_day = ?", monthDay)
	if gymID != nil {
		query = query.Where("gym_id = ?", *gymID)
	}
	var out []models.User
	err := query.Order("first_name ASC").Find(&out).Error
	return out, err
}
