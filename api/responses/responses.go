// Package responses renders every API answer in one of the shared envelopes
// and maps typed errors to status codes.
package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/getsentry/sentry-go"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
	"github.com/tatame/tatame-backend/pkg/logger"
	"github.com/tatame/tatame-backend/pkg/types"
)

const requestIDHeader = "X-Request-Id"

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, types.CreatedEnvelope{Data: data, Created: true})
}

// WriteMutation acknowledges an update or delete that returns no entity.
func WriteMutation(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, types.MutationEnvelope{Success: true, Message: message})
}

// WriteList never renders null: an empty result is [].
func WriteList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, types.ListEnvelope{Data: items, Count: len(items)})
}

// WriteError renders err. Client errors expose their own message; server
// errors expose only the code's public message and are reported to Sentry.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	typed := classify(err)
	meta := pkgerrors.MetadataFor(typed.Code())
	serverSide := meta.HTTPStatus >= http.StatusInternalServerError

	payload := types.ErrorEnvelope{
		Error:     meta.PublicMessage,
		Code:      string(typed.Code()),
		RequestID: w.Header().Get(requestIDHeader),
	}
	if !serverSide && typed.Message() != "" {
		payload.Error = typed.Message()
	}
	if details := typed.Details(); meta.DetailsAllowed && !isNil(details) {
		payload.Details = details
	}

	if serverSide {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			hub.CaptureException(typed)
		}
	}
	if logg != nil {
		logCtx := logg.WithFields(ctx, pkgerrors.Dump(typed).LogFields())
		if serverSide {
			logg.Error(logCtx, "request.error", typed)
		} else {
			logg.Warn(logCtx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

// classify wraps untyped errors: Stripe failures become payment provider
// errors, anything else is internal.
func classify(err error) *pkgerrors.Error {
	if err == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "nil error written")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return pkgerrors.Wrap(pkgerrors.CodePayment, err, "stripe request failed")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// writeJSON encodes before touching the writer so an unencodable payload
// still produces a well-formed 500.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":"internal server error","code":"INTERNAL_ERROR"}` + "\n")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
