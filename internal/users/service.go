package users

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tatame/tatame-backend/internal/roles"
	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db"
	"github.com/tatame/tatame-backend/pkg/db/models"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type usersRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByIdentityID(ctx context.Context, identityID string) (*models.User, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	SetApproval(ctx context.Context, userID uint, approvedAt, deniedAt *time.Time) error
	SoftDelete(ctx context.Context, id uint) (bool, error)
	ListStudentsByGym(ctx context.Context, gymID uint) ([]StudentDTO, error)
	ListInstructorsByGym(ctx context.Context, gymID uint) ([]models.User, error)
	ListPendingByGym(ctx context.Context, gymID uint) ([]models.User, error)
	ListBirthdays(ctx context.Context, gymID *uint, monthDay string) ([]models.User, error)
}

// Notifier sends an in-app notification to a single user.
type Notifier interface {
	NotifyUser(ctx context.Context, senderID *uint, recipientID uint, title, content string) error
}

// Service exposes user operations.
type Service interface {
	Create(ctx context.Context, identityID string, input CreateUserInput) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIdentityID(ctx context.Context, identityID string) (*models.User, error)
	GetApprovalStatus(ctx context.Context, id uint) (bool, error)
	Update(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error)
	UpdatePushToken(ctx context.Context, id uint, token string) error
	Delete(ctx context.Context, id uint) error
	Approve(ctx context.Context, managerID, userID uint) error
	Deny(ctx context.Context, managerID, userID uint) error
	ListStudents(ctx context.Context, gymID uint) ([]StudentDTO, error)
	ListInstructors(ctx context.Context, gymID uint) ([]models.User, error)
	ListPending(ctx context.Context, gymID uint) ([]models.User, error)
	ListBirthdays(ctx context.Context, gymID uint) ([]models.User, error)
}

// ServiceParams groups the collaborators of the user service.
type ServiceParams struct {
	Repo     usersRepository
	Notifier Notifier
	Clock    clock.Clock
	Logger   *logger.Logger
}

type service struct {
	repo     usersRepository
	notifier Notifier
	clock    clock.Clock
	logg     *logger.Logger
}

// NewService builds a user service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     params.Repo,
		notifier: params.Notifier,
		clock:    params.Clock,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, identityID string, input CreateUserInput) (*models.User, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	user := &models.User{
		IdentityID: identityID,
		Role:       input.Role,
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		PictureURL: input.PictureURL,
		GymID:      input.GymID,
	}
	if input.BirthDate != nil {
		date, monthDay := birthFields(*input.BirthDate)
		user.BirthDate = &date
		user.BirthDay = &monthDay
	}
	if roles.IsHigherRole(input.Role) {
		now := s.clock.Now()
		user.ApprovedAt = &now
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	if user.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user creation failed")
	}
	return user, nil
}

// GetByID returns nil when the user does not exist.
func (s *service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

// GetByIdentityID returns nil when no user is linked to the identity.
func (s *service) GetByIdentityID(ctx context.Context, identityID string) (*models.User, error) {
	user, err := s.repo.FindByIdentityID(ctx, identityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) GetApprovalStatus(ctx context.Context, id uint) (bool, error) {
	user, err := s.mustFind(ctx, id)
	if err != nil {
		return false, err
	}
	return user.IsApproved(), nil
}

// Update applies the provided fields. Moving a non-manager to another gym
// drops the previous approval decision so the new gym has to decide again.
func (s *service) Update(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error) {
	current, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.PictureURL != nil {
		updates["picture_url"] = *input.PictureURL
	}
	if input.BirthDate != nil {
		date, monthDay := birthFields(*input.BirthDate)
		updates["birth_date"] = date
		updates["birth_day"] = monthDay
	}
	if input.GymID != nil {
		updates["gym_id"] = *input.GymID
		moved := current.GymID == nil || *current.GymID != *input.GymID
		if moved && !roles.IsHigherRole(current.Role) {
			updates["approved_at"] = nil
			updates["denied_at"] = nil
		}
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return s.mustFind(ctx, id)
}

func (s *service) UpdatePushToken(ctx context.Context, id uint, token string) error {
	if _, err := s.mustFind(ctx, id); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	var value any
	if token != "" {
		value = token
	}
	if err := s.repo.Update(ctx, id, map[string]any{"push_token": value}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update push token")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}

func (s *service) Approve(ctx context.Context, managerID, userID uint) error {
	return s.decide(ctx, managerID, userID, true)
}

func (s *service) Deny(ctx context.Context, managerID, userID uint) error {
	return s.decide(ctx, managerID, userID, false)
}

func (s *service) decide(ctx context.Context, managerID, userID uint, approve bool) error {
	manager, err := s.mustFind(ctx, managerID)
	if err != nil {
		return err
	}
	target, err := s.mustFind(ctx, userID)
	if err != nil {
		return err
	}
	if manager.GymID == nil || target.GymID == nil || *manager.GymID != *target.GymID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "user belongs to another gym")
	}

	now := s.clock.Now()
	title, content := "Membership approved", "Your gym membership was approved."
	var approvedAt, deniedAt *time.Time
	if approve {
		approvedAt = &now
	} else {
		deniedAt = &now
		title, content = "Membership denied", "Your gym membership request was denied."
	}

	if err := s.repo.SetApproval(ctx, userID, approvedAt, deniedAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update approval")
	}

	if err := s.notifier.NotifyUser(ctx, &managerID, userID, title, content); err != nil {
		logCtx := s.logg.WithField(ctx, "target_user_id", userID)
		s.logg.Error(logCtx, "users.approval_notification_failed", err)
	}
	return nil
}

// ListStudents orders students by belt seniority, then degree, then first name.
// Students without a graduation come last.
func (s *service) ListStudents(ctx context.Context, gymID uint) ([]StudentDTO, error) {
	students, err := s.repo.ListStudentsByGym(ctx, gymID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list students")
	}
	sortStudents(students)
	return students, nil
}

func (s *service) ListInstructors(ctx context.Context, gymID uint) ([]models.User, error) {
	out, err := s.repo.ListInstructorsByGym(ctx, gymID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list instructors")
	}
	return out, nil
}

func (s *service) ListPending(ctx context.Context, gymID uint) ([]models.User, error) {
	out, err := s.repo.ListPendingByGym(ctx, gymID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending users")
	}
	return out, nil
}

// ListBirthdays returns members of the gym whose birthday is today.
func (s *service) ListBirthdays(ctx context.Context, gymID uint) ([]models.User, error) {
	out, err := s.repo.ListBirthdays(ctx, &gymID, s.clock.MonthDay())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list birthdays")
	}
	return out, nil
}

func (s *service) mustFind(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

func birthFields(t time.Time) (datatypes.Date, string) {
	return datatypes.Date(t), t.Format(clock.MonthDayLayout)
}

func sortStudents(students []StudentDTO) {
	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i], students[j]
		if (a.Graduation == nil) != (b.Graduation == nil) {
			return a.Graduation != nil
		}
		if a.Graduation != nil {
			pa, pb := a.Graduation.Belt.Precedence(), b.Graduation.Belt.Precedence()
			if pa != pb {
				return pa < pb
			}
			if a.Graduation.Degree != b.Graduation.Degree {
				return a.Graduation.Degree > b.Graduation.Degree
			}
		}
		return strings.ToLower(a.FirstName) < strings.ToLower(b.FirstName)
	})
}
