package gyms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tatame/tatame-backend/pkg/db/models"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateGymInput captures a new gym.
type CreateGymInput struct {
	Name      string
	Address   string
	FoundedAt *time.Time
	LogoURL   *string
}

// UpdateGymInput carries optional fields; nil leaves the column unchanged.
type UpdateGymInput struct {
	Name      *string
	Address   *string
	FoundedAt *time.Time
	LogoURL   *string
}

// Service exposes gym operations.
type Service interface {
	Create(ctx context.Context, managerID uint, input CreateGymInput) (*models.Gym, error)
	GetByID(ctx context.Context, id uint) (*models.Gym, error)
	GetByManager(ctx context.Context, managerID uint) (*models.Gym, error)
	List(ctx context.Context) ([]models.Gym, error)
	Update(ctx context.Context, actorID, gymID uint, input UpdateGymInput) (*models.Gym, error)
	SetLogo(ctx context.Context, gymID uint, logoURL string) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a gym service; tx scopes the create-and-affiliate write.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("gym repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Create inserts the gym and affiliates its manager in one transaction.
func (s *service) Create(ctx context.Context, managerID uint, input CreateGymInput) (*models.Gym, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	gym := &models.Gym{
		Name:      name,
		Address:   strings.TrimSpace(input.Address),
		ManagerID: &managerID,
		LogoURL:   input.LogoURL,
	}
	if input.FoundedAt != nil {
		founded := datatypes.Date(*input.FoundedAt)
		gym.FoundedAt = &founded
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, gym); err != nil {
			return err
		}
		if gym.ID == 0 {
			return errors.New("insert returned no row")
		}
		return repo.AffiliateUser(ctx, managerID, gym.ID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gym")
	}
	return gym, nil
}

// GetByID returns nil when the gym does not exist.
func (s *service) GetByID(ctx context.Context, id uint) (*models.Gym, error) {
	gym, err := s.repo.FindByID(ctx, id)
	return absentAsNil(gym, err, "load gym")
}

// GetByManager returns nil when the user manages no gym.
func (s *service) GetByManager(ctx context.Context, managerID uint) (*models.Gym, error) {
	gym, err := s.repo.FindByManagerID(ctx, managerID)
	return absentAsNil(gym, err, "load gym by manager")
}

func (s *service) List(ctx context.Context) ([]models.Gym, error) {
	gyms, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gyms")
	}
	return gyms, nil
}

func (s *service) Update(ctx context.Context, actorID, gymID uint, input UpdateGymInput) (*models.Gym, error) {
	gym, err := s.GetByID(ctx, gymID)
	if err != nil {
		return nil, err
	}
	if gym == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gym not found")
	}
	if gym.ManagerID == nil || *gym.ManagerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the gym manager can edit it")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Address != nil {
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.FoundedAt != nil {
		updates["founded_at"] = datatypes.Date(*input.FoundedAt)
	}
	if input.LogoURL != nil {
		updates["logo_url"] = *input.LogoURL
	}

	if err := s.repo.Update(ctx, gymID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update gym")
	}
	return s.GetByID(ctx, gymID)
}

func (s *service) SetLogo(ctx context.Context, gymID uint, logoURL string) error {
	if err := s.repo.Update(ctx, gymID, map[string]any{"logo_url": logoURL}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update gym logo")
	}
	return nil
}

func absentAsNil(gym *models.Gym, err error, op string) (*models.Gym, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
	return gym, nil
}
