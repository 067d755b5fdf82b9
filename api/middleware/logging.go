package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/tatame/tatame-backend/pkg/logger"
)

// statusWriter remembers what the handler wrote for access logs and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func wrapWriter(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w}
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusWriter) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Logging writes one access line per request. Probe traffic is logged at
// debug so it does not drown real requests.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logg.WithFields(r.Context(), map[string]any{"method": r.Method, "path": r.URL.Path})
			sw := wrapWriter(w)
			started := time.Now()

			next.ServeHTTP(sw, r.WithContext(ctx))

			ctx = logg.WithFields(ctx, map[string]any{
				"status":      sw.code(),
				"bytes":       sw.bytes,
				"duration_ms": time.Since(started).Milliseconds(),
			})
			switch {
			case strings.HasPrefix(r.URL.Path, "/health"):
				logg.Debug(ctx, "http.request")
			case sw.code() >= http.StatusInternalServerError:
				logg.Warn(ctx, "http.request")
			default:
				logg.Info(ctx, "http.request")
			}
		})
	}
}
