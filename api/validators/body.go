// Package validators decodes request bodies and turns validator/v10 failures
// into per-field validation errors.
package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tatame/tatame-backend/pkg/clock"
	"github.com/tatame/tatame-backend/pkg/enums"
	pkgerrors "github.com/tatame/tatame-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

type rule struct {
	check   func(string) bool
	message string
}

var rules = map[string]rule{
	"timeofday": {clock.IsTimeOfDay, "must be a time formatted as HH:MM"},
	"date":      {clock.IsDate, "must be a date formatted as YYYY-MM-DD"},
	"dayofweek": {func(s string) bool { return enums.DayOfWeek(s).IsValid() }, "must be a day of the week such as MONDAY"},
	"role":      {func(s string) bool { return enums.Role(s).IsValid() }, "must be one of STUDENT, INSTRUCTOR, MANAGER"},
	"belt":      {func(s string) bool { return enums.Belt(s).IsValid() }, "must be a known belt color"},
	"channel":   {func(s string) bool { return enums.NotificationChannel(s).IsValid() }, "must be one of push, email, sms"},
	"platform":  {func(s string) bool { return enums.Platform(s).IsValid() }, "must be one of IOS, ANDROID"},
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
			return name
		}
		return f.Name
	})
	for tag, r := range rules {
		check := r.check
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool { return check(fl.Field().String()) }); err != nil {
			panic(fmt.Sprintf("validators: register %s: %v", tag, err))
		}
	}
	return v
}()

// DecodeJSONBody strictly decodes at most 1 MiB of JSON into dest and
// validates it. Unknown fields are rejected.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails(map[string]string{"body": err.Error()})
	}
	return ValidateStruct(dest)
}

func ValidateStruct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = messageFor(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

func messageFor(fe validator.FieldError) string {
	if r, ok := rules[fe.Tag()]; ok {
		return r.message
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid url"
	}
	return "is invalid"
}
