package controllers

import (
	"net/http"

	"github.com/tatame/tatame-backend/api/responses"
	"github.com/tatame/tatame-backend/api/validators"
	"github.com/tatame/tatame-backend/internal/graduations"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
)

type setGraduationRequest struct {
	UserID   uint   `json:"userId" validate:"required,gt=0"`
	Belt     string `json:"belt" validate:"required,belt"`
	Degree   int    `json:"degree" validate:"gte=0,lte=10"`
	Modality string `json:"modality" validate:"required,max=80"`
}

type updateGraduationRequest struct {
	Belt     *string `json:"belt" validate:"omitempty,belt"`
	Degree   *int    `json:"degree" validate:"omitempty,gte=0,lte=10"`
	Modality *string `json:"modality" validate:"omitempty,min=1,max=80"`
}

// SetGraduation assigns or replaces the belt of a member of the caller's gym.
func SetGraduation(svc graduations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("graduations"))
			return
		}

		gymID, err := staffGym(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setGraduationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		graduation, err := svc.Set(r.Context(), gymID, graduations.SetGraduationInput{
			UserID:   body.UserID,
			Belt:     enums.Belt(body.Belt),
			Degree:   body.Degree,
			Modality: validators.SanitizeString(body.Modality, 80),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, graduation)
	}
}

func GetUserGraduation(svc graduations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("graduations"))
			return
		}

		userID, err := validators.ParseIDParam(r, "userId", "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		graduation, err := svc.GetByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if graduation == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "graduation not found"))
			return
		}
		responses.WriteSuccess(w, graduation)
	}
}

func UpdateGraduation(svc graduations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("graduations"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "graduation id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		gymID, err := staffGym(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateGraduationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := graduations.UpdateGraduationInput{
			Degree:   body.Degree,
			Modality: validators.SanitizeOptional(body.Modality, 80),
		}
		if body.Belt != nil {
			belt := enums.Belt(*body.Belt)
			input.Belt = &belt
		}

		if _, err := svc.Update(r.Context(), gymID, id, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, "graduation updated")
	}
}
