package checkins

import (
	"context"
	"errors"
	"fmt"

	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db/models"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"gorm.io/gorm"
)

type checkInRepository interface {
	CreateOnce(ctx context.Context, checkIn *models.CheckIn) (bool, error)
	FindByID(ctx context.Context, id uint) (*models.CheckIn, error)
	ListByUser(ctx context.Context, userID uint) ([]models.CheckIn, error)
	ListByClass(ctx context.Context, classID uint, date *string) ([]models.CheckIn, error)
	Delete(ctx context.Context, id uint) (bool, error)
	ClassExists(ctx context.Context, classID uint) (bool, error)
}

// CreateCheckInInput captures an attendance record. Date defaults to today.
type CreateCheckInInput struct {
	ClassID uint
	Date    *string
}

// Service exposes check-in operations.
type Service interface {
	Create(ctx context.Context, userID uint, input CreateCheckInInput) (*models.CheckIn, bool, error)
	GetByID(ctx context.Context, id uint) (*models.CheckIn, error)
	ListByUser(ctx context.Context, userID uint) ([]models.CheckIn, error)
	ListByClass(ctx context.Context, classID uint, date *string) ([]models.CheckIn, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo  checkInRepository
	clock clock.Clock
}

func NewService(repo checkInRepository, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("check-in repository required")
	}
	return &service{repo: repo, clock: clk}, nil
}

// Create records attendance. The boolean is false when the user had already
// checked into the class and the existing row is returned.
func (s *service) Create(ctx context.Context, userID uint, input CreateCheckInInput) (*models.CheckIn, bool, error) {
	date := s.clock.Date()
	if input.Date != nil {
		if !clock.IsDate(*input.Date) {
			return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
		}
		date = *input.Date
	}

	exists, err := s.repo.ClassExists(ctx, input.ClassID)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load class")
	}
	if !exists {
		return nil, false, pkgerrors.New(pkgerrors.CodeNotFound, "class not found")
	}

	checkIn := &models.CheckIn{UserID: userID, ClassID: input.ClassID, Date: date}
	created, err := s.repo.CreateOnce(ctx, checkIn)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create check-in")
	}
	if checkIn.ID == 0 {
		return nil, false, pkgerrors.New(pkgerrors.CodeInternal, "check-in creation failed")
	}
	return checkIn, created, nil
}

// GetByID returns nil when the check-in does not exist.
func (s *service) GetByID(ctx context.Context, id uint) (*models.CheckIn, error) {
	checkIn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load check-in")
	}
	return checkIn, nil
}

func (s *service) ListByUser(ctx context.Context, userID uint) ([]models.CheckIn, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list check-ins")
	}
	return out, nil
}

func (s *service) ListByClass(ctx context.Context, classID uint, date *string) ([]models.CheckIn, error) {
	if date != nil && !clock.IsDate(*date) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	out, err := s.repo.ListByClass(ctx, classID, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list check-ins")
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete check-in")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "check-in not found")
	}
	return nil
}
