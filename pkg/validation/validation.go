// Package validation wraps go-playground/validator and reports failures as
// bad request errors keyed by JSON field path.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Additional-Code/luxe/pkg/errorbank"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator using JSON tag names.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		instance = v
	})
	return instance
}

// Struct validates s. Failures come back as an errorbank bad request whose
// details map each field path to a message.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errorbank.BadRequest("invalid request", errorbank.WithCause(err))
	}

	details := make(map[string]any, len(fieldErrs))
	first := ""
	for _, fe := range fieldErrs {
		field := fieldPath(fe)
		msg := message(fe)
		details[field] = msg
		if first == "" {
			first = field + ": " + msg
		}
	}
	return errorbank.BadRequest(first, errorbank.WithDetails(details))
}

// fieldPath drops the root struct name: "CreateInput.items[0].quantity" → "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
