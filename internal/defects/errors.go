package defects

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/validation"
)

// Domain errors for defect operations.
var (
	ErrNotFound        = errors.New("No defect found with the provided ID")
	ErrDuplicate       = errors.New("defect already exists")
	ErrAlreadyResolved = errors.New("This defect has already been marked as resolved")
	ErrInvalidResolver = errors.New("resolvedBy must be a non-empty string")
	ErrInvalidID       = errors.New("Invalid ID format")
	ErrInvalidBody     = errors.New("request body must be a JSON object")
)

// MapHTTPStatus maps defect domain errors to HTTP status codes.
// An already resolved defect is a state conflict reported as 400.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrAlreadyResolved),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
