// Package docs serves an interactive API reference rendered from the
// service's OpenAPI document.
package docs

import (
	_ "embed"
	"html/template"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/module"
)

//go:embed index.html
var indexHTML string

var index = template.Must(template.New("index").Parse(indexHTML))

// NewModule creates a module at prefix whose index page loads specURL.
func NewModule(prefix, title, specURL string) *module.Module {
	return module.New(prefix, buildRouter(title, specURL))
}

func buildRouter(title, specURL string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		index.Execute(w, map[string]string{
			"Title":   title,
			"SpecURL": specURL,
		})
	})
	return mux
}
