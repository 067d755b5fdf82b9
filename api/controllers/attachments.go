package controllers

import (
	"net/http"
	"time"

	"github.com/tatame/tatame-backend/api/responses"
	"github.com/tatame/tatame-backend/api/validators"
	"github.com/tatame/tatame-backend/internal/assets"
	"github.com/tatame/tatame-backend/internal/uploads"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
)

type createAttachmentRequest struct {
	ClassID   *uint      `json:"classId" validate:"omitempty,gt=0"`
	Title     string     `json:"title" validate:"required,max=120"`
	Content   string     `json:"content" validate:"required,max=2048"`
	Type      string     `json:"type" validate:"required,max=32"`
	ObjectKey *string    `json:"objectKey" validate:"omitempty,max=512"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

type uploadRequest struct {
	ContentType string `json:"contentType" validate:"required,max=100"`
}

type attachmentUploadRequest struct {
	ClassID     uint   `json:"classId" validate:"required,gt=0"`
	ContentType string `json:"contentType" validate:"required,max=100"`
}

func CreateAttachment(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("assets"))
			return
		}

		var body createAttachmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.Create(r.Context(), assets.CreateAssetInput{
			ClassID:   body.ClassID,
			Title:     validators.SanitizeString(body.Title, 120),
			Content:   body.Content,
			Type:      body.Type,
			ObjectKey: body.ObjectKey,
			ExpiresAt: body.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, asset)
	}
}

// CreateAttachmentUploadURL signs a direct upload for class material. The
// returned objectKey is passed back on CreateAttachment.
func CreateAttachmentUploadURL(svc uploads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("uploads"))
			return
		}

		var body attachmentUploadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := svc.ClassAsset(r.Context(), body.ClassID, body.ContentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, target)
	}
}

func GetAttachment(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("assets"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "attachment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if asset == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found"))
			return
		}
		responses.WriteSuccess(w, asset)
	}
}

func ListClassAttachments(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailableHandler("assets", logg)
	}
	return listByParam(logg, "classId", "class id", svc.ListByClass)
}

func DeleteAttachment(svc assets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("assets"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "attachment id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, "attachment deleted")
	}
}

// UploadProfilePicture signs an upload for the caller's own picture.
func UploadProfilePicture(svc uploads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("uploads"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body uploadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := svc.ProfilePicture(r.Context(), actor.UserID, body.ContentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, target)
	}
}

func UploadGymLogo(svc uploads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("uploads"))
			return
		}

		gymID, err := validators.ParseIDParam(r, "gymId", "gym id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		_, ownGym, err := managerGym(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if ownGym != gymID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "gym belongs to another manager"))
			return
		}

		var body uploadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := svc.GymLogo(r.Context(), gymID, body.ContentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, target)
	}
}
