package classifier

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/routes"
)

// Handler exposes the model lifecycle state.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// StatusResponse is the body of GET /classifier/status.
type StatusResponse struct {
	Status
	Timestamp time.Time `json:"timestamp"`
}

// NewHandler creates a Handler for sys.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "classifier"),
	}
}

// Routes returns the classifier route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/classifier",
		Tags:    []string{"Classifier"},
		Schemas: Spec.Schemas(),
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/status", Handler: h.Status, OpenAPI: Spec.Status},
		},
	}
}

// Status reports whether the model is loaded.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, StatusResponse{
		Status:    h.sys.Status(),
		Timestamp: time.Now().UTC(),
	})
}
