package inspection_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/classifier"
	"github.com/JaimeStill/inspector/internal/inspection"
	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/handlers"
)

type mockSystem struct {
	inspectFn func(ctx context.Context, cmd inspection.Command) (*inspection.Result, error)
}

func (m *mockSystem) Handler(int64, bool) *inspection.Handler { return nil }

func (m *mockSystem) Inspect(ctx context.Context, cmd inspection.Command) (*inspection.Result, error) {
	return m.inspectFn(ctx, cmd)
}

type formFile struct {
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, line string, file *formFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if line != "" {
		if err := mw.WriteField("lineId", line); err != nil {
			t.Fatal(err)
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="part.jpg"`)
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(file.data)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/inspect", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newHandlerMux(sys inspection.System, maxUpload int64, verbose bool) *http.ServeMux {
	h := inspection.NewHandler(sys, slog.New(slog.NewTextHandler(io.Discard, nil)), maxUpload, verbose)
	group := h.Routes()

	mux := http.NewServeMux()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func pipelineSystem() inspection.System {
	return newFixture(
		classifier.Score{Type: "normal", Probability: 0.05},
		classifier.Score{Type: "crack", Probability: 0.92},
	).sys
}

func TestHandlerInspect(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{"production strips debug", false, false},
		{"development exposes debug", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newHandlerMux(pipelineSystem(), 0, tt.verbose)
			req := multipartRequest(t, "assembly-1", &formFile{contentType: "image/jpeg", data: []byte("jpeg-bytes")})

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200: %s", rec.Code, rec.Body.String())
			}

			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["success"] != true || body["status"] != "rejected" || body["defectType"] != "crack" {
				t.Errorf("body = %v", body)
			}
			if _, ok := body["defectId"]; !ok {
				t.Error("missing defectId")
			}
			if _, ok := body["debug"]; ok != tt.wantDebug {
				t.Errorf("debug present = %v, want %v", ok, tt.wantDebug)
			}
		})
	}
}

func TestHandlerApprovedHasNullDefectType(t *testing.T) {
	sys := &mockSystem{
		inspectFn: func(_ context.Context, cmd inspection.Command) (*inspection.Result, error) {
			return &inspection.Result{Success: true, ProductID: uuid.New(), Status: quality.StatusApproved}, nil
		},
	}
	mux := newHandlerMux(sys, 0, false)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, multipartRequest(t, "qc-3", &formFile{contentType: "image/png", data: []byte("png")}))

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, ok := body["defectType"]
	if !ok || v != nil {
		t.Errorf("defectType = %v (present %v), want explicit null", v, ok)
	}
	if _, ok := body["partial"]; ok {
		t.Error("partial should be omitted")
	}
}

func TestHandlerValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		message string
	}{
		{
			name: "not multipart",
			req: func(*testing.T) *http.Request {
				return httptest.NewRequest("POST", "/inspect", bytes.NewBufferString(`{"lineId":"assembly-1"}`))
			},
			message: inspection.ErrNoImage.Error(),
		},
		{
			name: "missing image",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "assembly-1", nil)
			},
			message: inspection.ErrNoImage.Error(),
		},
		{
			name: "missing line",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "", &formFile{contentType: "image/jpeg", data: []byte("x")})
			},
			message: inspection.ErrMissingLine.Error(),
		},
		{
			name: "unknown line",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "line-4", &formFile{contentType: "image/jpeg", data: []byte("x")})
			},
			message: quality.ErrInvalidLine.Error(),
		},
		{
			name: "unsupported type",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "assembly-1", &formFile{contentType: "image/gif", data: []byte("GIF89a")})
			},
			message: inspection.ErrInvalidType.Error(),
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "assembly-1", &formFile{contentType: "image/jpeg", data: make([]byte, 2048)})
			},
			message: "Image file must be smaller than 1 KB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(classifier.Score{Type: "normal", Probability: 0.9})
			mux := newHandlerMux(inspection.New(inspection.Deps{
				Storage:    f.store,
				Classifier: f.classifier,
				Products:   f.products,
				Defects:    f.defects,
				Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
			}, 1024), 1024, false)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, tt.req(t))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rec.Code)
			}

			var body handlers.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Message != tt.message {
				t.Errorf("message: got %q, want %q", body.Message, tt.message)
			}
			if len(f.store.keys) != 0 {
				t.Error("invalid request reached storage")
			}
		})
	}
}

func TestHandlerServerErrors(t *testing.T) {
	failing := &mockSystem{
		inspectFn: func(context.Context, inspection.Command) (*inspection.Result, error) {
			return nil, errors.Join(inspection.ErrUploadFailed, errors.New("container missing"))
		},
	}

	tests := []struct {
		name    string
		verbose bool
		redact  bool
	}{
		{"production", false, true},
		{"development", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newHandlerMux(failing, 0, tt.verbose)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, multipartRequest(t, "assembly-1", &formFile{contentType: "image/jpeg", data: []byte("x")}))

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status: got %d, want 500", rec.Code)
			}

			var body handlers.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if redacted := body.Message == "Internal server error"; redacted != tt.redact {
				t.Errorf("message = %q, redacted %v, want %v", body.Message, redacted, tt.redact)
			}
		})
	}
}
