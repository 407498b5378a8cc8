package docs_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/inspector/web/docs"
)

func TestIndex(t *testing.T) {
	m := docs.NewModule("/docs", "Inspector API", "/api/openapi.json")

	req := httptest.NewRequest(http.MethodGet, "/docs/", nil)
	rec := httptest.NewRecorder()
	m.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"<title>Inspector API</title>", `data-url="/api/openapi.json"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestUnknownPath(t *testing.T) {
	m := docs.NewModule("/docs", "Inspector API", "/api/openapi.json")

	req := httptest.NewRequest(http.MethodGet, "/docs/missing.js", nil)
	rec := httptest.NewRecorder()
	m.Serve(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
