package middleware

import (
	"net/http"
	"strings"

	"github.com/tatame/tatame-backend/api/responses"
	pkgAuth "github.com/tatame/tatame-backend/pkg/auth"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
)

const unauthorizedMessage = "Unauthorized"

// TokenVerifier validates identity-provider session tokens.
type TokenVerifier interface {
	Verify(token string) (*pkgAuth.SessionClaims, error)
}

// Auth validates a bearer token and seeds the request context with the caller identity.
func Auth(verifier TokenVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, unauthorizedMessage))
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, unauthorizedMessage))
				return
			}

			ctx := withIdentity(r.Context(), identity{subject: claims.Subject, session: claims.SessionID})
			if logg != nil {
				ctx = logg.WithField(ctx, "identity_id", claims.Subject)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(raw string) string {
	token := strings.TrimSpace(raw)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
