package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
)

// ParseIDParam reads a positive numeric URL parameter. Malformed values fail
// with "Invalid <field>".
func ParseIDParam(r *http.Request, param, field string) (uint, error) {
	return parseID(chi.URLParam(r, param), field)
}

// ParseQueryID reads an optional positive numeric query parameter.
func ParseQueryID(r *http.Request, key string) (*uint, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw, key)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseID(raw, field string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Invalid %s", field)).WithDetails(map[string]any{"field": field})
	}
	return uint(value), nil
}

// RequireQuery returns a trimmed, required query parameter.
func RequireQuery(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Invalid %s", key)).WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}
