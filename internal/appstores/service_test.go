package appstores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn     func(ctx context.Context, link *models.AppStoreLink) error
	findByIDFn   func(ctx context.Context, id uint) (*models.AppStoreLink, error)
	listActiveFn func(ctx context.Context) ([]models.AppStoreLink, error)
	disableFn    func(ctx context.Context, id uint, at time.Time) error
}

func (f fakeRepo) Create(ctx context.Context, link *models.AppStoreLink) error {
	if f.createFn != nil {
		return f.createFn(ctx, link)
	}
	link.ID = 1
	return nil
}

func (f fakeRepo) FindByID(ctx context.Context, id uint) (*models.AppStoreLink, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeRepo) ListActive(ctx context.Context) ([]models.AppStoreLink, error) {
	if f.listActiveFn != nil {
		return f.listActiveFn(ctx)
	}
	return nil, nil
}

func (f fakeRepo) Disable(ctx context.Context, id uint, at time.Time) error {
	if f.disableFn != nil {
		return f.disableFn(ctx, id, at)
	}
	return nil
}

var fixed = time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)

func TestCreateNormalizesPlatform(t *testing.T) {
	svc, err := NewService(fakeRepo{}, clock.Fixed(fixed))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	link, err := svc.Create(context.Background(), " ios ", "https://apps.apple.com/app/tatame/id1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if link.Platform != enums.PlatformIOS {
		t.Fatalf("expected IOS platform, got %s", link.Platform)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _ := NewService(fakeRepo{}, clock.Fixed(fixed))

	cases := map[string][2]string{
		"unknown platform": {"windows", "https://example.com"},
		"relative url":     {"ANDROID", "/store"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc[0], tc[1])
			if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDisableStampsClock(t *testing.T) {
	var stamped time.Time
	repo := fakeRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.AppStoreLink, error) {
			return &models.AppStoreLink{ID: id}, nil
		},
		disableFn: func(ctx context.Context, id uint, at time.Time) error {
			stamped = at
			return nil
		},
	}
	svc, _ := NewService(repo, clock.Fixed(fixed))

	if err := svc.Disable(context.Background(), 3); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if !stamped.Equal(fixed) {
		t.Fatalf("expected disabled_at %v, got %v", fixed, stamped)
	}
}

func TestListActiveWrapsRepoError(t *testing.T) {
	repo := fakeRepo{listActiveFn: func(ctx context.Context) ([]models.AppStoreLink, error) {
		return nil, errors.New("boom")
	}}
	svc, _ := NewService(repo, clock.Fixed(fixed))

	_, err := svc.ListActive(context.Background())
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
