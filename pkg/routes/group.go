// Package routes declares route groups and registers them on a ServeMux
// and in an OpenAPI document.
package routes

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/inspector/pkg/openapi"
)

// Group organizes routes under a common prefix with shared OpenAPI tags.
type Group struct {
	Prefix   string
	Tags     []string
	Schemas  map[string]*openapi.Schema
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		walk("", group, func(path string, _ Group, route Route) {
			mux.HandleFunc(route.Method+" "+path, route.Handler)
		})
	}
}

// Document adds every route that carries an OpenAPI operation to spec,
// along with each group's component schemas.
func Document(spec *openapi.Spec, groups ...Group) {
	for _, group := range groups {
		walk("", group, func(path string, g Group, route Route) {
			if g.Schemas != nil {
				spec.Components.AddSchemas(g.Schemas)
			}
			if route.OpenAPI == nil {
				return
			}

			op := *route.OpenAPI
			if len(op.Tags) == 0 {
				op.Tags = g.Tags
			}

			key := strings.TrimSuffix(path, "{$}")
			item, ok := spec.Paths[key]
			if !ok {
				item = &openapi.PathItem{}
				spec.Paths[key] = item
			}
			item.Set(route.Method, &op)
		})
	}
}

func walk(parent string, group Group, visit func(path string, g Group, route Route)) {
	prefix := parent + group.Prefix
	for _, route := range group.Routes {
		path := prefix + route.Pattern
		if path == "" {
			path = "/"
		}
		visit(path, group, route)
	}
	for _, child := range group.Children {
		walk(prefix, child, visit)
	}
}
