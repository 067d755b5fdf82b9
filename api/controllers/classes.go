package controllers

import (
	"net/http"

	"github.com/tatame/tatame-backend/api/responses"
	"github.com/tatame/tatame-backend/api/validators"
	"github.com/tatame/tatame-backend/internal/classes"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
)

type createClassRequest struct {
	GymID        *uint   `json:"gymId" validate:"omitempty,gt=0"`
	InstructorID uint    `json:"instructorId" validate:"required,gt=0"`
	DayOfWeek    string  `json:"dayOfWeek" validate:"required,dayofweek"`
	StartTime    string  `json:"startTime" validate:"required,timeofday"`
	EndTime      string  `json:"endTime" validate:"required,timeofday"`
	Modality     string  `json:"modality" validate:"required,max=80"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
}

type updateClassRequest struct {
	InstructorID *uint   `json:"instructorId" validate:"omitempty,gt=0"`
	DayOfWeek    *string `json:"dayOfWeek" validate:"omitempty,dayofweek"`
	StartTime    *string `json:"startTime" validate:"omitempty,timeofday"`
	EndTime      *string `json:"endTime" validate:"omitempty,timeofday"`
	Modality     *string `json:"modality" validate:"omitempty,min=1,max=80"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
}

// CreateClass schedules a weekly class in the manager's gym.
func CreateClass(svc classes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("classes"))
			return
		}

		actor, gymID, err := managerGym(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createClassRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.GymID != nil && *body.GymID != gymID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "class belongs to another gym"))
			return
		}

		class, err := svc.Create(r.Context(), actor.UserID, classes.CreateClassInput{
			GymID:        gymID,
			InstructorID: body.InstructorID,
			DayOfWeek:    enums.DayOfWeek(body.DayOfWeek),
			StartTime:    body.StartTime,
			EndTime:      body.EndTime,
			Modality:     validators.SanitizeString(body.Modality, 80),
			Description:  validators.SanitizeOptional(body.Description, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, class)
	}
}

func GetClass(svc classes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("classes"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "class id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		class, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if class == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "class not found"))
			return
		}
		responses.WriteSuccess(w, class)
	}
}

func ListGymClasses(svc classes.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailableHandler("classes", logg)
	}
	return listByParam(logg, "gymId", "gym id", svc.ListByGym)
}

// GetNextClass returns the upcoming class of the gym; data is null when the
// gym has no classes.
func GetNextClass(svc classes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("classes"))
			return
		}

		gymID, err := validators.ParseIDParam(r, "gymId", "gym id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, err := svc.NextClass(r.Context(), gymID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, next)
	}
}

// GetClassForCheckIn resolves the class in session for ?day=&time=.
func GetClassForCheckIn(svc classes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("classes"))
			return
		}

		gymID, err := validators.ParseIDParam(r, "gymId", "gym id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		day, err := validators.RequireQuery(r, "day")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		at, err := validators.RequireQuery(r, "time")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		class, err := svc.ClassForCheckIn(r.Context(), gymID, enums.DayOfWeek(day), at)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, class)
	}
}

func UpdateClass(svc classes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("classes"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "class id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := ownClass(r, svc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateClassRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := classes.UpdateClassInput{
			InstructorID: body.InstructorID,
			StartTime:    body.StartTime,
			EndTime:      body.EndTime,
			Modality:     validators.SanitizeOptional(body.Modality, 80),
			Description:  validators.SanitizeOptional(body.Description, 500),
		}
		if body.DayOfWeek != nil {
			day := enums.DayOfWeek(*body.DayOfWeek)
			input.DayOfWeek = &day
		}

		if _, err := svc.Update(r.Context(), id, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, "class updated")
	}
}

func DeleteClass(svc classes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("classes"))
			return
		}

		id, err := validators.ParseIDParam(r, "id", "class id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := ownClass(r, svc, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation(w, "class deleted")
	}
}

// ownClass requires the class to exist in the calling manager's gym.
func ownClass(r *http.Request, svc classes.Service, id uint) error {
	_, gymID, err := managerGym(r)
	if err != nil {
		return err
	}
	class, err := svc.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	if class == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "class not found")
	}
	if class.GymID != gymID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "class belongs to another gym")
	}
	return nil
}
