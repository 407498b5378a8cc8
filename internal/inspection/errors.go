package inspection

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/formatting"
	"github.com/JaimeStill/inspector/pkg/validation"
)

// Input errors carry the message returned to clients.
var (
	ErrNoImage     = errors.New("Please upload an image file for inspection")
	ErrMissingLine = errors.New("Please specify the production line ID")
	ErrInvalidType = errors.New("Only JPEG, PNG, and WebP images are supported")
	ErrTooLarge    = errors.New("Image file is too large")
)

// sizeLimitError reports the configured upload limit and matches ErrTooLarge.
type sizeLimitError struct {
	max int64
}

func (e sizeLimitError) Error() string {
	return "Image file must be smaller than " + formatting.FormatBytes(e.max, 0)
}

func (e sizeLimitError) Is(target error) bool {
	return target == ErrTooLarge
}

// Pipeline failures.
var (
	ErrUploadFailed         = errors.New("failed to upload image to cloud storage")
	ErrClassificationFailed = errors.New("failed to analyze image with AI model")
	ErrDefectNotRecorded    = errors.New("product recorded but its defect record could not be saved")
)

// MapHTTPStatus maps inspection errors to HTTP status codes.
// Persistence validation failures are caller data problems and map to 400.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
