package uploads

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatame/tatame-backend/pkg/clock"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
)

type fakeSigner struct {
	signedURLFn func(bucket, object, contentType string, expires time.Duration) (string, error)
}

func (f fakeSigner) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	if f.signedURLFn != nil {
		return f.signedURLFn(bucket, object, contentType, expires)
	}
	return "https://signed.example/" + object, nil
}

func (f fakeSigner) PublicURL(object string) string {
	return "https://cdn.example/" + object
}

type fakeUsers struct {
	updates map[string]any
}

func (f *fakeUsers) Update(ctx context.Context, id uint, updates map[string]any) error {
	f.updates = updates
	return nil
}

type fakeGyms struct {
	logo string
	err  error
}

func (f *fakeGyms) SetLogo(ctx context.Context, gymID uint, logoURL string) error {
	f.logo = logoURL
	return f.err
}

var now = time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, signer Signer, users *fakeUsers, gyms *fakeGyms) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Signer: signer,
		Users:  users,
		Gyms:   gyms,
		Clock:  clock.Fixed(now),
		Expiry: 15 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestProfilePictureStoresPublicURL(t *testing.T) {
	users := &fakeUsers{}
	svc := newTestService(t, fakeSigner{}, users, &fakeGyms{})

	target, err := svc.ProfilePicture(context.Background(), 12, "Image/PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(target.ObjectKey, "profile_picture/12/"))
	assert.True(t, strings.HasSuffix(target.ObjectKey, ".png"))
	assert.Equal(t, "https://cdn.example/"+target.ObjectKey, users.updates["picture_url"])
	assert.Equal(t, now.Add(15*time.Minute), target.ExpiresAt)
}

func TestGymLogoSetsLogo(t *testing.T) {
	gyms := &fakeGyms{}
	svc := newTestService(t, fakeSigner{}, &fakeUsers{}, gyms)

	target, err := svc.GymLogo(context.Background(), 3, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, target.PublicURL, gyms.logo)
}

func TestContentTypeAllowList(t *testing.T) {
	svc := newTestService(t, fakeSigner{}, &fakeUsers{}, &fakeGyms{})

	_, err := svc.ProfilePicture(context.Background(), 1, "video/mp4")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	target, err := svc.ClassAsset(context.Background(), 1, "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(target.ObjectKey, "class_asset/1/"))
}

func TestSignerFailureIsDependencyError(t *testing.T) {
	signer := fakeSigner{signedURLFn: func(string, string, string, time.Duration) (string, error) {
		return "", errors.New("no service account")
	}}
	svc := newTestService(t, signer, &fakeUsers{}, &fakeGyms{})

	_, err := svc.ClassAsset(context.Background(), 1, "application/pdf")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}
