package graduations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"gorm.io/gorm"
)

// SetGraduationInput assigns a belt to a user.
type SetGraduationInput struct {
	UserID   uint
	Belt     enums.Belt
	Degree   int
	Modality string
}

// UpdateGraduationInput carries optional fields.
type UpdateGraduationInput struct {
	Belt     *enums.Belt
	Degree   *int
	Modality *string
}

// Service exposes graduation operations.
type Service interface {
	Set(ctx context.Context, gymID uint, input SetGraduationInput) (*models.Graduation, error)
	GetByUser(ctx context.Context, userID uint) (*models.Graduation, error)
	Update(ctx context.Context, gymID, id uint, input UpdateGraduationInput) (*models.Graduation, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("graduation repository required")
	}
	return &service{repo: repo}, nil
}

// Set creates or replaces the graduation of a member of gymID.
func (s *service) Set(ctx context.Context, gymID uint, input SetGraduationInput) (*models.Graduation, error) {
	if !input.Belt.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid belt")
	}
	if input.Degree < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "degree cannot be negative")
	}
	if err := s.checkMember(ctx, gymID, input.UserID); err != nil {
		return nil, err
	}

	graduation := &models.Graduation{
		UserID:   input.UserID,
		Belt:     input.Belt,
		Degree:   input.Degree,
		Modality: strings.TrimSpace(input.Modality),
	}
	if err := s.repo.Upsert(ctx, graduation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save graduation")
	}
	return graduation, nil
}

// GetByUser returns nil when the user has no graduation.
func (s *service) GetByUser(ctx context.Context, userID uint) (*models.Graduation, error) {
	graduation, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load graduation")
	}
	return graduation, nil
}

func (s *service) Update(ctx context.Context, gymID, id uint, input UpdateGraduationInput) (*models.Graduation, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "graduation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load graduation")
	}
	if err := s.checkMember(ctx, gymID, current.UserID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Belt != nil {
		if !input.Belt.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid belt")
		}
		updates["belt"] = *input.Belt
	}
	if input.Degree != nil {
		if *input.Degree < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "degree cannot be negative")
		}
		updates["degree"] = *input.Degree
	}
	if input.Modality != nil {
		updates["modality"] = strings.TrimSpace(*input.Modality)
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update graduation")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload graduation")
	}
	return updated, nil
}

func (s *service) checkMember(ctx context.Context, gymID, userID uint) error {
	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.GymID == nil || *user.GymID != gymID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "user belongs to another gym")
	}
	return nil
}
