package products

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/validation"
)

// Domain errors for product operations.
var (
	ErrNotFound  = errors.New("product not found")
	ErrDuplicate = errors.New("product already exists")
	ErrInvalidID = errors.New("Invalid ID format")
)

// MapHTTPStatus maps product domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID), errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
