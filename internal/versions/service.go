package versions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db/models"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service manages the client version gate.
type Service interface {
	Create(ctx context.Context, version string) (*models.Version, error)
	Latest(ctx context.Context) (*models.Version, error)
	Disable(ctx context.Context, id uint) error
}

type service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("version repository required")
	}
	return &service{repo: repo, clock: clk}, nil
}

func (s *service) Create(ctx context.Context, version string) (*models.Version, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "version is required")
	}
	row := &models.Version{Version: version}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create version")
	}
	if row.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "version creation failed")
	}
	return row, nil
}

// Latest returns the most recent active version, or nil when every row is disabled.
func (s *service) Latest(ctx context.Context) (*models.Version, error) {
	version, err := s.repo.FindLatestActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest version")
	}
	return version, nil
}

func (s *service) Disable(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "version not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load version")
	}
	if _, err := s.repo.Disable(ctx, id, s.clock.Now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "disable version")
	}
	return nil
}
