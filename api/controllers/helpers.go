package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tatame/tatame-backend/api/middleware"
	"github.com/tatame/tatame-backend/api/responses"
	"github.com/tatame/tatame-backend/api/validators"
	"github.com/tatame/tatame-backend/internal/roles"
	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/db/models"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
)

func actorFrom(r *http.Request) (middleware.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok || actor.UserID == 0 {
		return middleware.Actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "user registration required")
	}
	return actor, nil
}

type userLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// selfOrManager allows the user to act on their own record, and managers on
// members of their own gym.
func selfOrManager(r *http.Request, lookup userLookup, userID uint) (middleware.Actor, error) {
	actor, err := actorFrom(r)
	if err != nil {
		return actor, err
	}
	if actor.UserID == userID {
		return actor, nil
	}
	if !roles.IsHigherRole(actor.Role) {
		return actor, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to act on this user")
	}

	target, err := lookup.GetByID(r.Context(), userID)
	if err != nil {
		return actor, err
	}
	if target == nil {
		return actor, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if actor.GymID == nil || target.GymID == nil || *actor.GymID != *target.GymID {
		return actor, pkgerrors.New(pkgerrors.CodeForbidden, "user belongs to another gym")
	}
	return actor, nil
}

func managerGym(r *http.Request) (middleware.Actor, uint, error) {
	actor, err := actorFrom(r)
	if err != nil {
		return actor, 0, err
	}
	if !roles.IsHigherRole(actor.Role) {
		return actor, 0, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required")
	}
	if actor.GymID == nil {
		return actor, 0, pkgerrors.New(pkgerrors.CodeForbidden, "manager has no gym")
	}
	return actor, *actor.GymID, nil
}

// staffGym returns the gym of an instructor or manager.
func staffGym(r *http.Request) (uint, error) {
	actor, err := actorFrom(r)
	if err != nil {
		return 0, err
	}
	if !roles.IsMediumRole(actor.Role) {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "instructor role required")
	}
	if actor.GymID == nil {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "caller has no gym")
	}
	return *actor.GymID, nil
}

func parseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(clock.DateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid "+field).WithDetails(map[string]any{"field": field})
	}
	return &t, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}

func unavailableHandler(name string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, unavailable(name))
	}
}

// listByParam answers a listing scoped by a numeric URL parameter.
func listByParam[T any](logg *logger.Logger, param, field string, list func(context.Context, uint) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, param, field)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := list(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, items)
	}
}
