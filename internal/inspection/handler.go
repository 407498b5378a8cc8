package inspection

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/routes"
	"github.com/JaimeStill/inspector/pkg/validation"
)

// multipartOverhead allows for form boundaries and the lineId field on top of the image.
const multipartOverhead = 1 << 20

// Handler provides the image upload endpoint.
type Handler struct {
	sys           System
	respond       handlers.Responder
	maxUploadSize int64
}

// NewHandler creates a Handler. verbose exposes classifier debug output and
// unredacted server errors.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64, verbose bool) *Handler {
	if maxUploadSize <= 0 || maxUploadSize > DefaultMaxImageSize {
		maxUploadSize = DefaultMaxImageSize
	}
	return &Handler{
		sys:           sys,
		respond:       handlers.NewResponder(logger.With("handler", "inspection"), verbose),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for inspection endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:  "/inspect",
		Tags:    []string{"Inspection"},
		Schemas: Spec.Schemas(),
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Inspect, OpenAPI: Spec.Inspect},
		},
	}
}

// Inspect accepts a multipart form with an image file field and a lineId
// field and runs the inspection pipeline.
func (h *Handler) Inspect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	cmd, err := h.readCommand(r)
	if err != nil {
		h.respond.Error(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Inspect(r.Context(), cmd)
	if err != nil {
		h.respond.Error(w, MapHTTPStatus(err), err)
		return
	}

	if !h.respond.Verbose() {
		result.Debug = nil
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// readCommand extracts the form. A missing or unreadable image leaves
// Command.Image empty so the pipeline reports it in validation order.
func (h *Handler) readCommand(r *http.Request) (Command, error) {
	var cmd Command

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		if tooLarge(err) {
			return cmd, validation.Wrap("image", sizeLimitError{h.maxUploadSize})
		}
		return cmd, validation.Wrap("image", ErrNoImage)
	}
	defer r.MultipartForm.RemoveAll()

	cmd.Line = r.FormValue("lineId")

	file, header, err := r.FormFile("image")
	if err != nil {
		return cmd, nil
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		if tooLarge(err) {
			return cmd, validation.Wrap("image", sizeLimitError{h.maxUploadSize})
		}
		return cmd, validation.Wrap("image", ErrNoImage)
	}

	cmd.Image = data
	cmd.Filename = header.Filename
	cmd.ContentType = header.Header.Get("Content-Type")
	return cmd, nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
