package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db/models"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
	"gorm.io/gorm"
)

const purgeBatchSize = 200

// ObjectRemover deletes stored files backing an asset.
type ObjectRemover interface {
	DeleteObject(ctx context.Context, bucket, object string) error
}

// CreateAssetInput captures study material attached to a class.
type CreateAssetInput struct {
	ClassID   *uint
	Title     string
	Content   string
	Type      string
	ObjectKey *string
	ExpiresAt *time.Time
}

// Service exposes asset operations.
type Service interface {
	Create(ctx context.Context, input CreateAssetInput) (*models.Asset, error)
	GetByID(ctx context.Context, id uint) (*models.Asset, error)
	ListByClass(ctx context.Context, classID uint) ([]models.Asset, error)
	Delete(ctx context.Context, id uint) error
	PurgeExpired(ctx context.Context) (int, error)
}

type service struct {
	repo    Repository
	objects ObjectRemover
	clock   clock.Clock
	logg    *logger.Logger
}

// NewService builds the asset service. objects may be nil, in which case
// stored files are left in place on delete.
func NewService(repo Repository, objects ObjectRemover, clk clock.Clock, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("asset repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, objects: objects, clock: clk, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateAssetInput) (*models.Asset, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and content are required")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(s.clock.Now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiresAt must be in the future")
	}

	asset := &models.Asset{
		ClassID:   input.ClassID,
		Title:     title,
		Content:   content,
		Type:      strings.ToLower(strings.TrimSpace(input.Type)),
		ObjectKey: input.ObjectKey,
		ExpiresAt: input.ExpiresAt,
	}
	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create asset")
	}
	if asset.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "asset creation failed")
	}
	return asset, nil
}

// GetByID returns nil when the asset does not exist.
func (s *service) GetByID(ctx context.Context, id uint) (*models.Asset, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load asset")
	}
	return asset, nil
}

func (s *service) ListByClass(ctx context.Context, classID uint) ([]models.Asset, error) {
	out, err := s.repo.ListByClass(ctx, classID, s.clock.Now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assets")
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	asset, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if asset == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "asset not found")
	}
	s.removeObject(ctx, *asset)
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete asset")
	}
	return nil
}

// PurgeExpired deletes assets past their expiry, batch by batch.
func (s *service) PurgeExpired(ctx context.Context) (int, error) {
	now := s.clock.Now()
	total := 0
	for {
		expired, err := s.repo.ListExpired(ctx, now, purgeBatchSize)
		if err != nil {
			return total, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired assets")
		}
		if len(expired) == 0 {
			return total, nil
		}

		ids := make([]uint, 0, len(expired))
		for _, asset := range expired {
			s.removeObject(ctx, asset)
			ids = append(ids, asset.ID)
		}
		deleted, err := s.repo.Delete(ctx, ids...)
		if err != nil {
			return total, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expired assets")
		}
		total += int(deleted)
		if len(expired) < purgeBatchSize || deleted == 0 {
			return total, nil
		}
	}
}

func (s *service) removeObject(ctx context.Context, asset models.Asset) {
	if s.objects == nil || asset.ObjectKey == nil || *asset.ObjectKey == "" {
		return
	}
	if err := s.objects.DeleteObject(ctx, "", *asset.ObjectKey); err != nil {
		logCtx := s.logg.WithField(ctx, "asset_id", asset.ID)
		s.logg.Error(logCtx, "assets.object_delete_failed", err)
	}
}
