package uploads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
)

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var assetTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"application/pdf": ".pdf",
}

// Signer issues signed upload URLs for the object store.
type Signer interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	PublicURL(object string) string
}

type userStore interface {
	Update(ctx context.Context, id uint, updates map[string]any) error
}

type gymStore interface {
	SetLogo(ctx context.Context, gymID uint, logoURL string) error
}

// Target tells the client where to PUT the file and where it will be served from.
type Target struct {
	UploadURL   string    `json:"uploadUrl"`
	PublicURL   string    `json:"publicUrl"`
	ObjectKey   string    `json:"objectKey"`
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type Service interface {
	ProfilePicture(ctx context.Context, userID uint, contentType string) (*Target, error)
	GymLogo(ctx context.Context, gymID uint, contentType string) (*Target, error)
	ClassAsset(ctx context.Context, classID uint, contentType string) (*Target, error)
}

type ServiceParams struct {
	Signer Signer
	Users  userStore
	Gyms   gymStore
	Clock  clock.Clock
	Expiry time.Duration
}

type service struct {
	signer Signer
	users  userStore
	gyms   gymStore
	clock  clock.Clock
	expiry time.Duration
}

func NewService(params ServiceParams) (Service, error) {
	if params.Signer == nil {
		return nil, fmt.Errorf("signer required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user store required")
	}
	if params.Gyms == nil {
		return nil, fmt.Errorf("gym store required")
	}
	if params.Expiry <= 0 {
		return nil, fmt.Errorf("upload expiry must be positive")
	}
	return &service{
		signer: params.Signer,
		users:  params.Users,
		gyms:   params.Gyms,
		clock:  params.Clock,
		expiry: params.Expiry,
	}, nil
}

// ProfilePicture signs an upload and points the user's picture at the resulting object.
func (s *service) ProfilePicture(ctx context.Context, userID uint, contentType string) (*Target, error) {
	target, err := s.sign(enums.UploadKindProfilePicture, userID, contentType, imageTypes)
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, userID, map[string]any{"picture_url": target.PublicURL}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store picture url")
	}
	return target, nil
}

func (s *service) GymLogo(ctx context.Context, gymID uint, contentType string) (*Target, error) {
	target, err := s.sign(enums.UploadKindGymLogo, gymID, contentType, imageTypes)
	if err != nil {
		return nil, err
	}
	if err := s.gyms.SetLogo(ctx, gymID, target.PublicURL); err != nil {
		return nil, err
	}
	return target, nil
}

// ClassAsset only signs; the caller registers the asset with the returned key.
func (s *service) ClassAsset(ctx context.Context, classID uint, contentType string) (*Target, error) {
	return s.sign(enums.UploadKindClassAsset, classID, contentType, assetTypes)
}

func (s *service) sign(kind enums.UploadKind, ownerID uint, contentType string, allowed map[string]string) (*Target, error) {
	if ownerID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := allowed[contentType]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("content type %q not allowed for %s", contentType, kind))
	}

	key := ObjectKey(kind, ownerID, uuid.New(), ext)
	uploadURL, err := s.signer.SignedURL("", key, contentType, s.expiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}
	return &Target{
		UploadURL:   uploadURL,
		PublicURL:   s.signer.PublicURL(key),
		ObjectKey:   key,
		ContentType: contentType,
		ExpiresAt:   s.clock.Now().Add(s.expiry),
	}, nil
}

// ObjectKey lays objects out as <kind>/<owner>/<uuid><ext>.
func ObjectKey(kind enums.UploadKind, ownerID uint, id uuid.UUID, ext string) string {
	return fmt.Sprintf("%s/%d/%s%s", kind, ownerID, id, ext)
}
