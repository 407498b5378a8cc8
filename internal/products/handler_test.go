package products_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/products"
	"github.com/JaimeStill/inspector/internal/quality"
	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/pagination"
)

type mockSystem struct {
	listFn   func(ctx context.Context, page pagination.PageRequest, filters products.Filters) (*products.ListResult, error)
	findFn   func(ctx context.Context, id uuid.UUID) (*products.Product, error)
	createFn func(ctx context.Context, cmd products.CreateCommand) (*products.Product, error)
	statsFn  func(ctx context.Context, filters products.StatsFilters) (*products.Stats, error)
}

func (m *mockSystem) Handler() *products.Handler { return nil }

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters products.Filters) (*products.ListResult, error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*products.Product, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd products.CreateCommand) (*products.Product, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Stats(ctx context.Context, filters products.StatsFilters) (*products.Stats, error) {
	return m.statsFn(ctx, filters)
}

var testPagination = pagination.Config{DefaultLimit: 50, MaxLimit: 100}

func newMux(sys products.System) *http.ServeMux {
	h := products.NewHandler(sys, slog.New(slog.NewTextHandler(io.Discard, nil)), testPagination)
	group := h.Routes()

	mux := http.NewServeMux()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func serve(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var body handlers.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestList(t *testing.T) {
	var gotPage pagination.PageRequest
	var gotFilters products.Filters

	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, filters products.Filters) (*products.ListResult, error) {
			gotPage, gotFilters = page, filters
			return &products.ListResult{
				Products:   []products.Product{{ID: uuid.New(), ProductionLine: quality.LineAssembly}},
				Pagination: pagination.New(1, page),
			}, nil
		},
	}

	rec := serve(newMux(sys), "/products?page=2&limit=10&line=assembly-1&status=rejected")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if gotPage.Page != 2 || gotPage.Limit != 10 {
		t.Errorf("page request = %+v", gotPage)
	}
	if gotFilters.Line == nil || *gotFilters.Line != "assembly-1" {
		t.Errorf("line filter = %v", gotFilters.Line)
	}
	if gotFilters.Status == nil || *gotFilters.Status != "rejected" {
		t.Errorf("status filter = %v", gotFilters.Status)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["products"]; !ok {
		t.Error("missing products key")
	}
	page, ok := body["pagination"].(map[string]any)
	if !ok || page["totalPages"] != float64(1) {
		t.Errorf("pagination = %v", body["pagination"])
	}
}

func TestListValidation(t *testing.T) {
	called := false
	sys := &mockSystem{
		listFn: func(context.Context, pagination.PageRequest, products.Filters) (*products.ListResult, error) {
			called = true
			return &products.ListResult{}, nil
		},
	}
	mux := newMux(sys)

	tests := []struct {
		name    string
		target  string
		message string
	}{
		{"limit too large", "/products?limit=101", "Limit must be a number between 1 and 100"},
		{"limit zero", "/products?limit=0", "Limit must be a number between 1 and 100"},
		{"page zero", "/products?page=0", "Page must be a positive number"},
		{"limit checked before page", "/products?page=0&limit=abc", "Limit must be a number between 1 and 100"},
		{"unknown line", "/products?line=assembly-9", quality.ErrInvalidLine.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, tt.target)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rec.Code)
			}
			body := decodeError(t, rec)
			if body.Error != "Bad Request" {
				t.Errorf("error = %q", body.Error)
			}
			if body.Message != tt.message {
				t.Errorf("message: got %q, want %q", body.Message, tt.message)
			}
		})
	}

	if called {
		t.Error("store should not be queried for invalid requests")
	}
}

func TestListStoreFailure(t *testing.T) {
	sys := &mockSystem{
		listFn: func(context.Context, pagination.PageRequest, products.Filters) (*products.ListResult, error) {
			return nil, errors.New("connection refused")
		},
	}

	rec := serve(newMux(sys), "/products")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	if body := decodeError(t, rec); body.Message != "Internal server error" {
		t.Errorf("message should be redacted, got %q", body.Message)
	}
}

func TestFind(t *testing.T) {
	id := uuid.New()
	sys := &mockSystem{
		findFn: func(_ context.Context, got uuid.UUID) (*products.Product, error) {
			if got != id {
				return nil, products.ErrNotFound
			}
			return &products.Product{ID: id, ProductName: "PROD-assembly-1"}, nil
		},
	}
	mux := newMux(sys)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"found", "/products/" + id.String(), http.StatusOK},
		{"not found", "/products/" + uuid.NewString(), http.StatusNotFound},
		{"invalid id", "/products/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(mux, tt.target); rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	var got products.StatsFilters
	sys := &mockSystem{
		statsFn: func(_ context.Context, filters products.StatsFilters) (*products.Stats, error) {
			got = filters
			s := products.NewStats([]products.LineStats{{ProductionLine: quality.LineAssembly, Total: 2, Approved: 1, Rejected: 1}})
			return &s, nil
		},
	}
	mux := newMux(sys)

	rec := serve(mux, "/products/stats?productionLine=assembly-1&dateFrom=2024-01-01")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if got.ProductionLine == nil || got.DateFrom == nil || got.DateTo != nil {
		t.Errorf("filters = %+v", got)
	}

	var body products.Stats
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Overall.ApprovalRate != "50.00" {
		t.Errorf("approvalRate = %q", body.Overall.ApprovalRate)
	}

	rec = serve(mux, "/products/stats?dateTo=yesterday")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid date status: got %d, want 400", rec.Code)
	}
	if body := decodeError(t, rec); body.Message != "dateTo must be a valid date string" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{products.ErrNotFound, http.StatusNotFound},
		{products.ErrDuplicate, http.StatusConflict},
		{products.ErrInvalidID, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := products.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
