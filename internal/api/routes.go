package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/JaimeStill/inspector/internal/classifier"
	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/module"
	"github.com/JaimeStill/inspector/pkg/openapi"
	"github.com/JaimeStill/inspector/pkg/routes"
)

const healthTimeout = 2 * time.Second

// HealthResponse reports service status and dependency connectivity.
type HealthResponse struct {
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
	StoreConnected   bool      `json:"storeConnected"`
	ClassifierLoaded bool      `json:"classifierLoaded"`
	CacheConnected   bool      `json:"cacheConnected"`
}

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Products.Handler().WithResponder(runtime.Responder("products")).Routes(),
		domain.Defects.Handler().WithResponder(runtime.Responder("defects")).Routes(),
		domain.Inspection.Handler(runtime.MaxUploadSize, runtime.Verbose).Routes(),
		classifier.NewHandler(runtime.Classifier, runtime.Logger).Routes(),
		healthGroup(runtime),
	}

	routes.Register(mux, groups...)

	spec := openapi.NewSpec(cfg.API.OpenAPI, cfg.Version, cfg.API.BasePath)
	routes.Document(spec, groups...)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))
	mux.HandleFunc("/", module.NotFound)

	return nil
}

func healthGroup(runtime *Runtime) routes.Group {
	return routes.Group{
		Prefix: "/health",
		Tags:   []string{"Health"},
		Schemas: map[string]*openapi.Schema{
			"Health": {
				Type: "object",
				Properties: map[string]*openapi.Schema{
					"status":           {Type: "string", Example: "OK"},
					"timestamp":        {Type: "string", Format: "date-time"},
					"storeConnected":   {Type: "boolean"},
					"classifierLoaded": {Type: "boolean"},
					"cacheConnected":   {Type: "boolean"},
				},
			},
		},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: health(runtime),
				OpenAPI: &openapi.Operation{
					Summary: "Service health",
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("Health report", "Health"),
					},
				},
			},
		},
	}
}

func health(runtime *Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := HealthResponse{
			Status:           "OK",
			Timestamp:        time.Now().UTC(),
			StoreConnected:   runtime.Database.Ping(ctx) == nil,
			ClassifierLoaded: runtime.Classifier.Status().Loaded,
			CacheConnected:   runtime.Cache.Enabled() && runtime.Cache.Ping(ctx) == nil,
		}

		handlers.RespondJSON(w, http.StatusOK, resp)
	}
}
