package products

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/routes"
)

// Handler provides HTTP endpoints for product queries.
type Handler struct {
	sys        System
	respond    handlers.Responder
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		respond:    handlers.NewResponder(logger.With("handler", "products"), false),
		pagination: pagination,
	}
}

// WithResponder replaces the error responder, e.g. with a verbose one.
func (h *Handler) WithResponder(r handlers.Responder) *Handler {
	h.respond = r
	return h
}

// Routes returns the route group definition for product endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/products",
		Tags:    []string{"Products"},
		Schemas: Spec.Schemas(),
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: Spec.List},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats, OpenAPI: Spec.Stats},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Spec.Find},
		},
	}
}

// List returns a filtered page of products, newest first.
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

// Find returns a single product by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.respond.Error(w, http.StatusBadRequest, ErrInvalidID)
		return
	}

	p, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.respond.Error(w, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// Stats returns per-line production statistics with an overall roll-up.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	filters, err := ParseStatsFilters(r.URL.Query())
	if err != nil {
		h.respond.Error(w, http.StatusBadRequest, err)
		return
	}

	stats, err := h.sys.Stats(r.Context(), filters)
	if err != nil {
		h.respond.Error(w, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}
