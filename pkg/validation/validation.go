// Package validation reports invalid input as per-field errors.
// Struct validation is backed by go-playground/validator using json tag names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid matches every *Error via errors.Is.
var ErrInvalid = errors.New("validation failed")

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a validation failure carrying one or more field errors.
// Cause, when set, is the domain error the failure was derived from.
type Error struct {
	Fields []FieldError
	Cause  error
}

// Field returns an Error for a single field.
func Field(field, message string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Message: message}}}
}

// Wrap returns an Error for field whose message is cause's message.
// The result matches both ErrInvalid and cause via errors.Is.
func Wrap(field string, cause error) *Error {
	return &Error{
		Fields: []FieldError{{Field: field, Message: cause.Error()}},
		Cause:  cause,
	}
}

// Error returns the lone field message, or a summary when several fields failed.
func (e *Error) Error() string {
	if len(e.Fields) == 1 {
		return e.Fields[0].Message
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is reports ErrInvalid as a match.
func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// Unwrap returns the cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Details extracts field errors from err, or nil when err is not a validation error.
func Details(err error) []FieldError {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates s against its `validate` tags.
// It returns nil or an *Error with one entry per failing field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &Error{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "http_url":
		return fmt.Sprintf("%s must be an absolute http(s) URL", fe.Field())
	case "ne":
		return fmt.Sprintf("%s must not be %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
