package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/inspector/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	cfg := openapi.Config{}
	cfg.Finalize(nil)

	spec := openapi.NewSpec(cfg, "1.2.0", "/api")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Inspector API" || spec.Info.Version != "1.2.0" {
		t.Errorf("info = %+v", spec.Info)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Errorf("servers = %v", spec.Servers)
	}
	for _, name := range []string{"Error", "FieldError", "Pagination"} {
		if _, ok := spec.Components.Schemas[name]; !ok {
			t.Errorf("missing component schema %s", name)
		}
	}
	for _, name := range []string{"BadRequest", "NotFound", "InternalError"} {
		if _, ok := spec.Components.Responses[name]; !ok {
			t.Errorf("missing component response %s", name)
		}
	}
}

func TestNewSpecWithoutBasePath(t *testing.T) {
	spec := openapi.NewSpec(openapi.Config{Title: "T"}, "1", "")
	if len(spec.Servers) != 0 {
		t.Errorf("servers = %v, want none", spec.Servers)
	}
}

func TestNewSpecServerURLOverride(t *testing.T) {
	spec := openapi.NewSpec(openapi.Config{Title: "T", ServerURL: "https://qa.example.com/inspector/api"}, "1", "/api")
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "https://qa.example.com/inspector/api" {
		t.Errorf("servers = %v", spec.Servers)
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_OPENAPI_TITLE", "QA Inspector")

	cfg := openapi.Config{}
	cfg.Finalize(&openapi.ConfigEnv{Title: "TEST_OPENAPI_TITLE"})

	if cfg.Title != "QA Inspector" {
		t.Errorf("title = %q", cfg.Title)
	}
	if cfg.Description == "" {
		t.Error("description default should be set")
	}

	cfg.Merge(&openapi.Config{Description: "overlay"})
	if cfg.Title != "QA Inspector" || cfg.Description != "overlay" {
		t.Errorf("merge = %+v", cfg)
	}
}

func TestPathItemSet(t *testing.T) {
	var item openapi.PathItem
	get := &openapi.Operation{Summary: "get"}
	put := &openapi.Operation{Summary: "put"}

	item.Set(http.MethodGet, get)
	item.Set(http.MethodPut, put)
	item.Set(http.MethodPatch, &openapi.Operation{})

	if item.Get != get || item.Put != put || item.Post != nil || item.Delete != nil {
		t.Errorf("item = %+v", item)
	}
}

func TestHelpers(t *testing.T) {
	if ref := openapi.SchemaRef("Product").Ref; ref != "#/components/schemas/Product" {
		t.Errorf("SchemaRef = %s", ref)
	}
	if ref := openapi.ResponseRef("NotFound").Ref; ref != "#/components/responses/NotFound" {
		t.Errorf("ResponseRef = %s", ref)
	}

	p := openapi.EnumQueryParam("status", "", "pending", "approved", "rejected")
	if p.In != "query" || p.Required || len(p.Schema.Enum) != 3 {
		t.Errorf("EnumQueryParam = %+v", p)
	}

	id := openapi.PathParam("id", "Defect ID")
	if !id.Required || id.Schema.Format != "uuid" {
		t.Errorf("PathParam = %+v", id)
	}

	arr := openapi.ArrayOf("Defect")
	if arr.Type != "array" || arr.Items.Ref != "#/components/schemas/Defect" {
		t.Errorf("ArrayOf = %+v", arr)
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec(openapi.Config{Title: "Inspector API"}, "0.1.0", "/api")
	spec.Paths["/products"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:   "List products",
			Responses: map[int]*openapi.Response{200: openapi.ResponseJSON("OK", "ProductList")},
		},
	}

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %s", ct)
	}

	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	paths := doc["paths"].(map[string]any)
	products := paths["/products"].(map[string]any)
	if _, ok := products["get"]; !ok {
		t.Errorf("paths = %v", paths)
	}
}
