package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/tatame/tatame-backend/api/responses"
	"github.com/tatame/tatame-backend/pkg/db/models"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
	"gorm.io/gorm"
)

// Actor is the registered user behind the authenticated identity.
type Actor struct {
	UserID uint
	Role   enums.Role
	GymID  *uint
}

type ctxActorKey struct{}

// ActorLookup resolves a user by identity-provider subject.
type ActorLookup interface {
	FindByIdentityID(ctx context.Context, identityID string) (*models.User, error)
}

// ResolveActor loads the user matching the authenticated identity. Identities
// without a user row (first sign-up) pass through without an actor.
func ResolveActor(lookup ActorLookup, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identityID := IdentityIDFromContext(r.Context())
			if identityID == "" || lookup == nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := lookup.FindByIdentityID(r.Context(), identityID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					next.ServeHTTP(w, r)
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve user"))
				return
			}

			ctx := WithActor(r.Context(), Actor{UserID: user.ID, Role: user.Role, GymID: user.GymID})
			if logg != nil {
				fields := map[string]any{
					"user_id":    user.ID,
					"actor_role": string(user.Role),
				}
				if user.GymID != nil {
					fields["gym_id"] = *user.GymID
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithActor injects the actor into the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorKey{}, actor)
}

// ActorFromContext returns the resolved actor, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ctxActorKey{}).(Actor)
	return actor, ok
}
