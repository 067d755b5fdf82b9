package controllers

import (
	"net/http"

	"github.com/tatame/tatame-backend/api/responses"
	"github.com/tatame/tatame-backend/api/validators"
	"github.com/tatame/tatame-backend/internal/gyms"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
)

type createGymRequest struct {
	Name      string  `json:"name" validate:"required,max=120"`
	Address   string  `json:"address" validate:"required,max=255"`
	FoundedAt *string `json:"foundedAt" validate:"omitempty,date"`
	LogoURL   *string `json:"logoUrl" validate:"omitempty,url"`
}

type updateGymRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=120"`
	Address   *string `json:"address" validate:"omitempty,min=1,max=255"`
	FoundedAt *string `json:"foundedAt" validate:"omitempty,date"`
	LogoURL   *string `json:"logoUrl" validate:"omitempty,url"`
}

// CreateGym creates a gym and affiliates the calling manager with it.
func CreateGym(svc gyms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("gyms"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createGymRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		foundedAt, err := parseDate("foundedAt", body.FoundedAt)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		gym, err := svc.Create(r.Context(), actor.UserID, gyms.CreateGymInput{
			Name:      validators.SanitizeString(body.Name, 120),
			Address:   validators.SanitizeString(body.Address, 255),
			FoundedAt: foundedAt,
			LogoURL:   body.LogoURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, gym)
	}
}

func ListGyms(svc gyms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("gyms"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, list)
	}
}

func GetGym(svc gyms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("gyms"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "gym id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		gym, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if gym == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "gym not found"))
			return
		}
		responses.WriteSuccess(w, gym)
	}
}

// GetGymByManager returns the gym run by the given manager.
func GetGymByManager(svc gyms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("gyms"))
			return
		}

		managerID, err := validators.ParseIDParam(r, "userId", "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		gym, err := svc.GetByManager(r.Context(), managerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if gym == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "gym not found"))
			return
		}
		responses.WriteSuccess(w, gym)
	}
}

func UpdateGym(svc gyms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("gyms"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "gym id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateGymRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		foundedAt, err := parseDate("foundedAt", body.FoundedAt)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.Update(r.Context(), actor.UserID, id, gyms.UpdateGymInput{
			Name:      validators.SanitizeOptional(body.Name, 120),
			Address:   validators.SanitizeOptional(body.Address, 255),
			FoundedAt: foundedAt,
			LogoURL:   body.LogoURL,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, "gym updated")
	}
}
