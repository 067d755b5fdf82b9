package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tatame/tatame-backend/api/responses"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
)

// RequireGymMember restricts a gym-scoped route to members of the gym named by
// the URL parameter.
func RequireGymMember(param string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gymID, err := strconv.ParseUint(chi.URLParam(r, param), 10, 64)
			if err != nil || gymID == 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Invalid gym id").WithDetails(map[string]any{"field": "gym id"}))
				return
			}
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "user registration required"))
				return
			}
			if actor.GymID == nil || uint64(*actor.GymID) != gymID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this gym"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
