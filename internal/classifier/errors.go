package classifier

import "errors"

var (
	ErrNotLoaded        = errors.New("classifier model not loaded")
	ErrLoadFailed       = errors.New("classifier model failed to load")
	ErrEmptyImage       = errors.New("invalid image buffer provided")
	ErrImageTooLarge    = errors.New("image file too large, maximum size is 10MB")
	ErrPredictionFailed = errors.New("failed to analyze image")
	ErrUnavailable      = errors.New("classifier provider unavailable in this build")
)
