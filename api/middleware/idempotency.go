package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tatame/tatame-backend/api/responses"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
	pkgredis "github.com/tatame/tatame-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"

	defaultReplayTTL = 24 * time.Hour
	billingReplayTTL = 7 * 24 * time.Hour
)

// replayPolicy applies to one mutation route. Billing calls must carry a key;
// everywhere else a key is honored when the client sends one.
type replayPolicy struct {
	ttl      time.Duration
	required bool
}

// Keyed by "METHOD route template"; {param} segments match any value.
var replayPolicies = map[string]replayPolicy{
	"POST /api/v1/stripe/subscriptions":      {ttl: billingReplayTTL, required: true},
	"POST /api/v1/stripe/customers":          {ttl: billingReplayTTL, required: true},
	"POST /api/v1/users":                     {ttl: defaultReplayTTL},
	"POST /api/v1/gyms":                      {ttl: defaultReplayTTL},
	"POST /api/v1/checkins":                  {ttl: defaultReplayTTL},
	"POST /api/v1/notifications":             {ttl: defaultReplayTTL},
	"POST /api/v1/notifications/{id}/resend": {ttl: defaultReplayTTL},
	"POST /api/v1/attachments":               {ttl: defaultReplayTTL},
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body"`
	RequestHash string `json:"requestHash"`
}

// Idempotency replays the first non-5xx response for a repeated
// (caller, route, Idempotency-Key). Reusing a key with a different body is a
// conflict.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy, ok := policyFor(r.Method, routePattern(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				if policy.required {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, idempotencyHeader+" header required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sum := sha256.Sum256(body)
			requestHash := hex.EncodeToString(sum[:])
			key := store.IdempotencyKey(callerScope(r), clientKey)

			raw, err := store.Get(r.Context(), key)
			switch {
			case err != nil && !pkgredis.IsNil(err):
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
				return
			case raw != "":
				var prior storedResponse
				if err := json.Unmarshal([]byte(raw), &prior); err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
					return
				}
				if prior.RequestHash != requestHash {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "idempotency key reused with a different request body"))
					return
				}
				replay(w, prior)
				return
			}

			capture := &responseCapture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			// A 5xx leaves the key free so the client can retry.
			if capture.status >= http.StatusInternalServerError {
				return
			}

			payload, err := json.Marshal(storedResponse{
				Status:      capture.status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				RequestHash: requestHash,
			})
			if err == nil {
				_, err = store.SetNX(r.Context(), key, string(payload), policy.ttl)
			}
			if err != nil && logg != nil {
				logg.Error(r.Context(), "idempotency.persist_failed", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, prior storedResponse) {
	if prior.ContentType != "" {
		w.Header().Set("Content-Type", prior.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(prior.Status)
	_, _ = w.Write(prior.Body)
}

// callerScope keeps keys from different users (or unregistered identities)
// from colliding on the same route.
func callerScope(r *http.Request) string {
	caller := "identity:" + IdentityIDFromContext(r.Context())
	if actor, ok := ActorFromContext(r.Context()); ok {
		caller = "user:" + strconv.FormatUint(uint64(actor.UserID), 10)
	}
	return caller + "|" + r.Method + "|" + r.URL.Path
}

func policyFor(method, path string) (replayPolicy, bool) {
	if path == "" {
		return replayPolicy{}, false
	}
	for route, policy := range replayPolicies {
		routeMethod, template, _ := strings.Cut(route, " ")
		if routeMethod == method && matchTemplate(template, path) {
			return policy, true
		}
	}
	return replayPolicy{}, false
}

func matchTemplate(template, path string) bool {
	want := strings.Split(template, "/")
	got := strings.Split(path, "/")
	if len(want) != len(got) {
		return false
	}
	for i, segment := range want {
		if strings.HasPrefix(segment, "{") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if segment != got[i] {
			return false
		}
	}
	return true
}

// routePattern prefers chi's template. Inside a mounted sub-router the
// pattern is still "/api/v1/stripe/*" here, so the concrete path is used.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" && !strings.HasSuffix(pattern, "*") {
			return trimSlash(pattern)
		}
	}
	return trimSlash(r.URL.Path)
}

func trimSlash(path string) string {
	if len(path) > 1 {
		return strings.TrimSuffix(path, "/")
	}
	return path
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
