package controllers

import (
	"net/http"

	"github.com/tatame/tatame-backend/api/middleware"
	"github.com/tatame/tatame-backend/api/responses"
	"github.com/tatame/tatame-backend/api/validators"
	"github.com/tatame/tatame-backend/internal/roles"
	"github.com/tatame/tatame-backend/internal/users"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
)

type createUserRequest struct {
	Role       string  `json:"role" validate:"required,role"`
	FirstName  string  `json:"firstName" validate:"required,max=80"`
	LastName   string  `json:"lastName" validate:"required,max=80"`
	Email      string  `json:"email" validate:"required,email"`
	PictureURL *string `json:"pictureUrl" validate:"omitempty,url"`
	BirthDate  *string `json:"birthDate" validate:"omitempty,date"`
	GymID      *uint   `json:"gymId" validate:"omitempty,gt=0"`
}

type updateUserRequest struct {
	FirstName  *string `json:"firstName" validate:"omitempty,min=1,max=80"`
	LastName   *string `json:"lastName" validate:"omitempty,min=1,max=80"`
	Email      *string `json:"email" validate:"omitempty,email"`
	PictureURL *string `json:"pictureUrl" validate:"omitempty,url"`
	BirthDate  *string `json:"birthDate" validate:"omitempty,date"`
	GymID      *uint   `json:"gymId" validate:"omitempty,gt=0"`
}

type pushTokenRequest struct {
	Token string `json:"token" validate:"required,max=255"`
}

// CreateUser registers the profile of the authenticated identity.
func CreateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("users"))
			return
		}

		identityID := middleware.IdentityIDFromContext(r.Context())
		if identityID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity"))
			return
		}

		var body createUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		birthDate, err := parseDate("birthDate", body.BirthDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Create(r.Context(), identityID, users.CreateUserInput{
			Role:       enums.Role(body.Role),
			FirstName:  validators.SanitizeString(body.FirstName, 80),
			LastName:   validators.SanitizeString(body.LastName, 80),
			Email:      body.Email,
			PictureURL: body.PictureURL,
			BirthDate:  birthDate,
			GymID:      body.GymID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, user)
	}
}

// GetCurrentUser returns the profile of the authenticated identity.
func GetCurrentUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("users"))
			return
		}

		user, err := svc.GetByIdentityID(r.Context(), middleware.IdentityIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if user == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func GetUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("users"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if user == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func GetUserApproval(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("users"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		approved, err := svc.GetApprovalStatus(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"approved": approved})
	}
}

func GetUserRole(svc roles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("roles"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := svc.GetRoleByUserID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"role": string(role)})
	}
}

// UpdateUser applies the provided profile fields.
func UpdateUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("users"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := selfOrManager(r, svc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		birthDate, err := parseDate("birthDate", body.BirthDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.Update(r.Context(), id, users.UpdateUserInput{
			FirstName:  validators.SanitizeOptional(body.FirstName, 80),
			LastName:   validators.SanitizeOptional(body.LastName, 80),
			Email:      body.Email,
			PictureURL: body.PictureURL,
			BirthDate:  birthDate,
			GymID:      body.GymID,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, "user updated")
	}
}

// UpdatePushToken stores the device token of the caller.
func UpdatePushToken(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("users"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if actor.UserID != id {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "push token belongs to the caller"))
			return
		}

		var body pushTokenRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdatePushToken(r.Context(), id, body.Token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, "push token updated")
	}
}

func DeleteUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("users"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := selfOrManager(r, svc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, "user deleted")
	}
}

// ApproveUser and DenyUser record a manager decision about a student.
func ApproveUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return decideUser(svc, logg, true)
}

func DenyUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return decideUser(svc, logg, false)
}

func decideUser(svc users.Service, logg *logger.Logger, approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("users"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if approve {
			err = svc.Approve(r.Context(), actor.UserID, id)
		} else {
			err = svc.Deny(r.Context(), actor.UserID, id)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if approve {
			responses.WriteMutation(w, "user approved")
			return
		}
		responses.WriteMutation(w, "user denied")
	}
}

func ListGymStudents(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailableHandler("users", logg)
	}
	return listByParam(logg, "gymId", "gym id", svc.ListStudents)
}

func ListGymInstructors(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailableHandler("users", logg)
	}
	return listByParam(logg, "gymId", "gym id", svc.ListInstructors)
}

func ListGymPending(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailableHandler("users", logg)
	}
	return listByParam(logg, "gymId", "gym id", svc.ListPending)
}

// ListGymBirthdays lists members whose birthday is today in the gym time zone.
func ListGymBirthdays(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailableHandler("users", logg)
	}
	return listByParam(logg, "gymId", "gym id", svc.ListBirthdays)
}
