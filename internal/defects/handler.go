package defects

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/routes"
)

const resolvedMessage = "Defect resolved successfully"

// Handler provides HTTP endpoints for defect queries and resolution.
type Handler struct {
	sys        System
	respond    handlers.Responder
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		respond:    handlers.NewResponder(logger.With("handler", "defects"), false),
		pagination: pagination,
	}
}

// WithResponder replaces the error responder, e.g. with a verbose one.
func (h *Handler) WithResponder(r handlers.Responder) *Handler {
	h.respond = r
	return h
}

// Routes returns the route group definition for defect endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/defects",
		Tags:    []string{"Defects"},
		Schemas: Spec.Schemas(),
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
			{Method: "GET", Pattern: "/distribution", Handler: h.Distribution, OpenAPI: Spec.Distribution},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Spec.Find},
			{Method: "PUT", Pattern: "/{id}/resolve", Handler: h.Resolve, OpenAPI: Spec.Resolve},
		},
	}
}

// List returns a filtered page of defects joined with their products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, filters, err := ParseListRequest(r.URL.Query(), h.pagination)
	if err != nil {
		h.respond.Error(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		h.respond.Error(w, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single defect by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respond.Error(w, http.StatusBadRequest, ErrInvalidID)
		return
	}

	d, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.respond.Error(w, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, d)
}

// Resolve marks a defect as resolved. The body is optional.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respond.Error(w, http.StatusBadRequest, ErrInvalidID)
		return
	}

	var cmd ResolveCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil && !errors.Is(err, io.EOF) {
		h.respond.Error(w, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	d, err := h.sys.Resolve(r.Context(), id, cmd)
	if err != nil {
		h.respond.Error(w, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ResolveResponse{
		Message: resolvedMessage,
		Defect:  d,
	})
}

// Distribution returns unresolved defect counts by type.
func (h *Handler) Distribution(w http.ResponseWriter, r *http.Request) {
	rows, err := h.sys.Distribution(r.Context())
	if err != nil {
		h.respond.Error(w, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rows)
}
