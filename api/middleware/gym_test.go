package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/tatame/tatame-backend/pkg/enums"
)

func TestRequireGymMember(t *testing.T) {
	gymID := uint(3)
	other := uint(4)
	tests := []struct {
		name   string
		param  string
		actor  *Actor
		status int
	}{
		{"member", "3", &Actor{UserID: 1, Role: enums.RoleStudent, GymID: &gymID}, http.StatusNoContent},
		{"other gym", "3", &Actor{UserID: 1, Role: enums.RoleManager, GymID: &other}, http.StatusForbidden},
		{"no gym", "3", &Actor{UserID: 1, Role: enums.RoleStudent}, http.StatusForbidden},
		{"no actor", "3", nil, http.StatusForbidden},
		{"bad id", "x", &Actor{UserID: 1, GymID: &gymID}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/gym/"+tt.param+"/students", nil)
			rc := chi.NewRouteContext()
			rc.URLParams.Add("gymId", tt.param)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
			if tt.actor != nil {
				ctx = WithActor(ctx, *tt.actor)
			}
			rec := httptest.NewRecorder()
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})

			RequireGymMember("gymId", nil)(next).ServeHTTP(rec, req.WithContext(ctx))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
