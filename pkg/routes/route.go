package routes

import (
	"net/http"

	"github.com/JaimeStill/inspector/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler and its OpenAPI operation.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}
