package classes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tatame/tatame-backend/internal/roles"
	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"gorm.io/gorm"
)

type classRepository interface {
	Create(ctx context.Context, class *models.Class) error
	FindByID(ctx context.Context, id uint) (*models.Class, error)
	ListByGym(ctx context.Context, gymID uint) ([]models.Class, error)
	FindInSession(ctx context.Context, gymID uint, day enums.DayOfWeek, at string) (*models.Class, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	SoftDelete(ctx context.Context, id uint) (bool, error)
	FindUser(ctx context.Context, id uint) (*models.User, error)
}

// Service exposes class scheduling operations.
type Service interface {
	Create(ctx context.Context, creatorID uint, input CreateClassInput) (*ClassDTO, error)
	GetByID(ctx context.Context, id uint) (*ClassDTO, error)
	ListByGym(ctx context.Context, gymID uint) ([]ClassDTO, error)
	NextClass(ctx context.Context, gymID uint) (*ClassDTO, error)
	ClassForCheckIn(ctx context.Context, gymID uint, day enums.DayOfWeek, at string) (*ClassDTO, error)
	Update(ctx context.Context, id uint, input UpdateClassInput) (*ClassDTO, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo  classRepository
	clock clock.Clock
}

func NewService(repo classRepository, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("class repository required")
	}
	return &service{repo: repo, clock: clk}, nil
}

func (s *service) Create(ctx context.Context, creatorID uint, input CreateClassInput) (*ClassDTO, error) {
	if !input.DayOfWeek.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid dayOfWeek")
	}
	if err := validateWindow(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}
	if err := s.checkInstructor(ctx, input.GymID, input.InstructorID); err != nil {
		return nil, err
	}

	class := &models.Class{
		GymID:        input.GymID,
		InstructorID: input.InstructorID,
		CreatedByID:  creatorID,
		DayOfWeek:    input.DayOfWeek,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Modality:     strings.TrimSpace(input.Modality),
		Description:  input.Description,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create class")
	}
	if class.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "class creation failed")
	}
	return s.GetByID(ctx, class.ID)
}

// GetByID returns nil when the class does not exist.
func (s *service) GetByID(ctx context.Context, id uint) (*ClassDTO, error) {
	class, err := s.find(ctx, id)
	if err != nil || class == nil {
		return nil, err
	}
	dto := FromModel(*class)
	return &dto, nil
}

// ListByGym returns the gym's classes in weekly order.
func (s *service) ListByGym(ctx context.Context, gymID uint) ([]ClassDTO, error) {
	classes, err := s.repo.ListByGym(ctx, gymID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list classes")
	}
	return fromModels(SortWeekly(classes)), nil
}

// NextClass returns nil only when the gym has no classes.
func (s *service) NextClass(ctx context.Context, gymID uint) (*ClassDTO, error) {
	classes, err := s.repo.ListByGym(ctx, gymID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list classes")
	}
	next := ResolveNext(classes, s.clock.Weekday(), s.clock.TimeOfDay())
	if next == nil {
		return nil, nil
	}
	dto := FromModel(*next)
	return &dto, nil
}

// ClassForCheckIn returns the class in session at the given day and time, or nil.
func (s *service) ClassForCheckIn(ctx context.Context, gymID uint, day enums.DayOfWeek, at string) (*ClassDTO, error) {
	if !day.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid day")
	}
	if !clock.IsTimeOfDay(at) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid time")
	}
	class, err := s.repo.FindInSession(ctx, gymID, day, at)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find class in session")
	}
	// string comparison in SQL is collation dependent; recheck the window here
	if !InSession(*class, day, at) {
		return nil, nil
	}
	dto := FromModel(*class)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uint, input UpdateClassInput) (*ClassDTO, error) {
	if id == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "class id is required")
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil || current.DeletedAt.Valid {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "class not found")
	}

	start, end := current.StartTime, current.EndTime
	if input.StartTime != nil {
		start = *input.StartTime
	}
	if input.EndTime != nil {
		end = *input.EndTime
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.StartTime != nil {
		updates["start_time"] = start
	}
	if input.EndTime != nil {
		updates["end_time"] = end
	}
	if input.DayOfWeek != nil {
		if !input.DayOfWeek.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid dayOfWeek")
		}
		updates["day_of_week"] = *input.DayOfWeek
	}
	if input.InstructorID != nil {
		if err := s.checkInstructor(ctx, current.GymID, *input.InstructorID); err != nil {
			return nil, err
		}
		updates["instructor_id"] = *input.InstructorID
	}
	if input.Modality != nil {
		updates["modality"] = strings.TrimSpace(*input.Modality)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update class")
	}
	return s.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete class")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "class not found")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uint) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load class")
	}
	return class, nil
}

// checkInstructor requires an instructor or manager affiliated with the gym.
func (s *service) checkInstructor(ctx context.Context, gymID, instructorID uint) error {
	user, err := s.repo.FindUser(ctx, instructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "instructor not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load instructor")
	}
	if !roles.IsMediumRole(user.Role) {
		return pkgerrors.New(pkgerrors.CodeValidation, "instructor must be an instructor or manager")
	}
	if user.GymID == nil || *user.GymID != gymID {
		return pkgerrors.New(pkgerrors.CodeValidation, "instructor belongs to another gym")
	}
	return nil
}

func validateWindow(start, end string) error {
	if !clock.IsTimeOfDay(start) || !clock.IsTimeOfDay(end) {
		return pkgerrors.New(pkgerrors.CodeValidation, "times must be HH:MM")
	}
	if end <= start {
		return pkgerrors.New(pkgerrors.CodeValidation, "endTime must be after startTime")
	}
	return nil
}
