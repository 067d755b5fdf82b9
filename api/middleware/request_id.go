package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/tatame/tatame-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

type ctxRequestIDKey struct{}

// Incoming ids are echoed only when they look like ids.
var acceptableRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// RequestID echoes or mints X-Request-Id and tags the log context and the
// Sentry scope with it.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if !acceptableRequestID.MatchString(id) {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			ctx := context.WithValue(r.Context(), ctxRequestIDKey{}, id)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			if hub := sentry.GetHubFromContext(ctx); hub != nil {
				hub.Scope().SetTag("request_id", id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestIDKey{}).(string)
	return id
}
