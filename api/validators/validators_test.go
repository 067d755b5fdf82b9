package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
)

type classBody struct {
	DayOfWeek string `json:"dayOfWeek" validate:"required,dayofweek"`
	StartTime string `json:"startTime" validate:"required,timeofday"`
	EndTime   string `json:"endTime" validate:"required,timeofday"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"dayOfWeek":"MONDAY","startTime":"18:00","endTime":"19:30"}`))
	var body classBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.EndTime != "19:30" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDecodeJSONBodyReportsFieldDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"dayOfWeek":"FUNDAY","startTime":"6pm","endTime":"19:30"}`))
	var body classBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected map details, got %T", typed.Details())
	}
	if _, ok := details["dayOfWeek"]; !ok {
		t.Fatalf("expected dayOfWeek detail, got %v", details)
	}
	if details["startTime"] != "must be a time formatted as HH:MM" {
		t.Fatalf("unexpected startTime detail %q", details["startTime"])
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"dayOfWeek":"MONDAY","startTime":"18:00","endTime":"19:30","extra":1}`))
	var body classBody
	if err := DecodeJSONBody(req, &body); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestParseIDParam(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "42")
	id, err := ParseIDParam(req, "id", "id")
	if err != nil || id != 42 {
		t.Fatalf("unexpected result %d %v", id, err)
	}

	for _, raw := range []string{"abc", "-1", "0", ""} {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "gymId", raw)
		_, err := ParseIDParam(req, "gymId", "gymId")
		typed := pkgerrors.As(err)
		if typed == nil || typed.Message() != "Invalid gymId" {
			t.Fatalf("%q: expected Invalid gymId, got %v", raw, err)
		}
	}
}

func TestRequireQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?day=MONDAY", nil)
	if v, err := RequireQuery(req, "day"); err != nil || v != "MONDAY" {
		t.Fatalf("unexpected result %q %v", v, err)
	}
	if _, err := RequireQuery(req, "time"); err == nil {
		t.Fatal("expected missing query to fail")
	}
}

func TestSanitize(t *testing.T) {
	if got := SanitizeString("  João Silva  ", 4); got != "João" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
	blank := "   "
	if SanitizeOptional(&blank, 10) != nil {
		t.Fatal("expected blank optional to become nil")
	}
	if SanitizeOptional(nil, 10) != nil {
		t.Fatal("expected nil to stay nil")
	}
}
