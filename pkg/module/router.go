package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/inspector/pkg/handlers"
)

// Router sends each request to the module owning its first path segment.
// Paths no module owns go to a native ServeMux.
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

// NewRouter creates a Router whose native mux answers unknown paths with
// the JSON error envelope.
func NewRouter() *Router {
	native := http.NewServeMux()
	native.HandleFunc("/", NotFound)

	return &Router{
		modules: make(map[string]*Module),
		native:  native,
	}
}

// NotFound writes a 404 error envelope naming the path.
func NotFound(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusNotFound, handlers.ErrorResponse{
		Error:   http.StatusText(http.StatusNotFound),
		Message: "Route " + r.URL.Path + " not found",
	})
}

// HandleNative registers a handler on the native mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount registers m under its prefix. Mounting two modules on one prefix panics.
func (r *Router) Mount(m *Module) {
	if _, dup := r.modules[m.prefix]; dup {
		panic(fmt.Sprintf("module prefix %s already mounted", m.prefix))
	}
	r.modules[m.prefix] = m
}

// ServeHTTP trims one trailing slash and dispatches.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}

	if m, ok := r.modules[firstSegment(req.URL.Path)]; ok {
		m.Serve(w, req)
		return
	}
	r.native.ServeHTTP(w, req)
}

func firstSegment(path string) string {
	seg, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	return "/" + seg
}
