package controllers

import (
	"net/http"
	"strings"

	"github.com/tatame/tatame-backend/api/responses"
	"github.com/tatame/tatame-backend/api/validators"
	"github.com/tatame/tatame-backend/internal/checkins"
	"github.com/tatame/tatame-backend/internal/roles"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
)

type createCheckInRequest struct {
	ClassID uint    `json:"classId" validate:"required,gt=0"`
	Date    *string `json:"date" validate:"omitempty,date"`
}

// CreateCheckIn records the caller's attendance. Repeating a check-in for the
// same class returns the existing row with 200.
func CreateCheckIn(svc checkins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("check-ins"))
			return
		}

		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createCheckInRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkIn, created, err := svc.Create(r.Context(), actor.UserID, checkins.CreateCheckInInput{
			ClassID: body.ClassID,
			Date:    body.Date,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !created {
			responses.WriteSuccess(w, checkIn)
			return
		}
		responses.WriteCreated(w, checkIn)
	}
}

func ListUserCheckIns(svc checkins.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailableHandler("check-ins", logg)
	}
	return listByParam(logg, "userId", "user id", svc.ListByUser)
}

// ListClassCheckIns lists attendance of a class, optionally for one ?date=.
func ListClassCheckIns(svc checkins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("check-ins"))
			return
		}

		classID, err := validators.ParseIDParam(r, "classId", "class id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var date *string
		if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
			date = &raw
		}

		list, err := svc.ListByClass(r.Context(), classID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, list)
	}
}

// DeleteCheckIn lets members undo their own check-in; instructors and
// managers may remove any.
func DeleteCheckIn(svc checkins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("check-ins"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "check-in id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !roles.IsMediumRole(actor.Role) {
			checkIn, err := svc.GetByID(r.Context(), id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if checkIn == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "check-in not found"))
				return
			}
			if checkIn.UserID != actor.UserID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "check-in belongs to another user"))
				return
			}
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, "check-in deleted")
	}
}
