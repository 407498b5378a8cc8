// Package module mounts self-contained HTTP handlers under single-segment
// path prefixes, each with its own middleware stack.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/inspector/pkg/middleware"
)

// Module serves requests under prefix. The prefix is removed before the
// request reaches the inner router.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
}

// New creates a Module for a prefix such as "/api". It panics when the
// prefix is not a single absolute segment.
func New(prefix string, router http.Handler) *Module {
	if err := checkPrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Prefix returns the mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware. The first added runs outermost.
func (m *Module) Use(mw ...middleware.Func) {
	m.middleware.Use(mw...)
}

// Handler returns the inner router wrapped in the module middleware.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(m.router)
}

// Serve dispatches req with the prefix stripped; "/api" becomes "/".
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	inner := req.Clone(req.Context())
	inner.URL.Path = m.innerPath(req.URL.Path)
	inner.URL.RawPath = ""
	m.Handler().ServeHTTP(w, inner)
}

func (m *Module) innerPath(path string) string {
	if rest := strings.TrimPrefix(path, m.prefix); rest != "" {
		return rest
	}
	return "/"
}

func checkPrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case prefix[0] != '/':
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Contains(prefix[1:], "/"):
		return fmt.Errorf("module prefix must be a single path segment: %s", prefix)
	}
	return nil
}
