package assets

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatame/tatame-backend/internal/testutil"
	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db/models"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
)

type recordingRemover struct {
	deleted []string
	err     error
}

func (r *recordingRemover) DeleteObject(ctx context.Context, bucket, object string) error {
	r.deleted = append(r.deleted, object)
	return r.err
}

var now = time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, remover ObjectRemover) (Service, Repository) {
	t.Helper()
	conn := testutil.NewSQLite(t, &models.Asset{})
	repo := NewRepository(conn)
	svc, err := NewService(repo, remover, clock.Fixed(now), logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)
	return svc, repo
}

func ptr[T any](v T) *T { return &v }

func TestListByClassHidesExpired(t *testing.T) {
	svc, repo := newTestService(t, nil)
	ctx := context.Background()
	classID := uint(4)

	require.NoError(t, repo.Create(ctx, &models.Asset{ClassID: &classID, Title: "old", Content: "u1", Type: "video", ExpiresAt: ptr(now.Add(-time.Hour))}))
	valid, err := svc.Create(ctx, CreateAssetInput{ClassID: &classID, Title: "Passagem de guarda", Content: "https://cdn/x.mp4", Type: "Video", ExpiresAt: ptr(now.Add(time.Hour))})
	require.NoError(t, err)
	assert.Equal(t, "video", valid.Type)
	_, err = svc.Create(ctx, CreateAssetInput{ClassID: &classID, Title: "forever", Content: "u3", Type: "pdf"})
	require.NoError(t, err)

	out, err := svc.ListByClass(ctx, classID)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestCreateRejectsPastExpiry(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Create(context.Background(), CreateAssetInput{Title: "x", Content: "y", ExpiresAt: ptr(now.Add(-time.Minute))})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestPurgeExpiredRemovesRowsAndObjects(t *testing.T) {
	remover := &recordingRemover{err: errors.New("storage unavailable")}
	svc, repo := newTestService(t, remover)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Asset{Title: "a", Content: "u", Type: "pdf", ObjectKey: ptr("class_asset/1/a.pdf"), ExpiresAt: ptr(now.Add(-time.Hour))}))
	require.NoError(t, repo.Create(ctx, &models.Asset{Title: "b", Content: "u", Type: "pdf", ExpiresAt: ptr(now.Add(-time.Minute))}))
	require.NoError(t, repo.Create(ctx, &models.Asset{Title: "c", Content: "u", Type: "pdf", ExpiresAt: ptr(now.Add(time.Hour))}))

	purged, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, purged)
	assert.Equal(t, []string{"class_asset/1/a.pdf"}, remover.deleted)

	remaining, err := repo.ListExpired(ctx, now.Add(2*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "c", remaining[0].Title)
}

func TestDeleteMissingAsset(t *testing.T) {
	svc, _ := newTestService(t, nil)

	err := svc.Delete(context.Background(), 77)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
