package appstores

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service manages the app-store download links shown to clients.
type Service interface {
	Create(ctx context.Context, platform, rawURL string) (*models.AppStoreLink, error)
	ListActive(ctx context.Context) ([]models.AppStoreLink, error)
	Disable(ctx context.Context, id uint) error
}

type service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("app store repository required")
	}
	return &service{repo: repo, clock: clk}, nil
}

func (s *service) Create(ctx context.Context, platform, rawURL string) (*models.AppStoreLink, error) {
	parsedPlatform, err := enums.ParsePlatform(strings.ToUpper(strings.TrimSpace(platform)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid platform")
	}
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "url must be absolute")
	}

	link := &models.AppStoreLink{Platform: parsedPlatform, URL: rawURL}
	if err := s.repo.Create(ctx, link); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create app store link")
	}
	if link.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "app store link creation failed")
	}
	return link, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.AppStoreLink, error) {
	links, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list app store links")
	}
	return links, nil
}

func (s *service) Disable(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "app store link not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load app store link")
	}
	if err := s.repo.Disable(ctx, id, s.clock.Now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "disable app store link")
	}
	return nil
}
