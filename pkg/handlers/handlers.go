// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/validation"
)

const redacted = "Internal server error"

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message"`
	Details []validation.FieldError `json:"details,omitempty"`
}

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an error response with server-side detail redacted.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	NewResponder(logger, false).Error(w, status, err)
}

// Responder writes error responses. A verbose responder exposes the
// underlying message of 5xx errors; otherwise it is replaced with a generic one.
type Responder struct {
	logger  *slog.Logger
	verbose bool
}

// NewResponder creates a Responder.
func NewResponder(logger *slog.Logger, verbose bool) Responder {
	return Responder{logger: logger, verbose: verbose}
}

// Verbose reports whether server error detail is exposed.
func (r Responder) Verbose() bool {
	return r.verbose
}

// Error logs err and writes {error, message, details?} with status.
func (r Responder) Error(w http.ResponseWriter, status int, err error) {
	body := ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Details: validation.Details(err),
	}

	if status >= http.StatusInternalServerError {
		r.logger.Error("request failed", "status", status, "error", err)
		if !r.verbose {
			body.Message = redacted
		}
	} else {
		r.logger.Debug("request rejected", "status", status, "error", err)
	}

	RespondJSON(w, status, body)
}
