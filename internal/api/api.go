// Package api assembles the HTTP modules of the service: the JSON API under
// the configured base path and the public archive files.
package api

import (
	"net/http"

	"github.com/JaimeStill/mod-depot/internal/config"
	"github.com/JaimeStill/mod-depot/pkg/middleware"
	"github.com/JaimeStill/mod-depot/pkg/module"
	"github.com/JaimeStill/mod-depot/pkg/openapi"
)

// NewModule builds the API module and the public files module.
func NewModule(cfg *config.Config, runtime *Runtime, domain *Domain) (api *module.Module, files *module.Module, err error) {
	h := newHandlers(runtime, domain)
	httpMetrics := middleware.NewHTTPMetrics("moddepot", runtime.Metrics)

	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	cfg.API.OpenAPI.Apply(spec)
	spec.AddSecurityScheme("bearerAuth", &openapi.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	})

	mux := http.NewServeMux()
	registerRoutes(mux, spec, h, cfg)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, nil, err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	api = module.New(cfg.API.BasePath, mux)
	api.Use(middleware.TrimSlash())
	api.Use(middleware.CORS(&cfg.API.CORS))
	api.Use(middleware.Logger(runtime.Logger))
	api.Use(middleware.Metrics(httpMetrics))

	fileMux := http.NewServeMux()
	fileMux.HandleFunc("GET /{key...}", h.mods.ServeFile)

	files = module.New(cfg.Storage.PublicPrefix, fileMux)
	files.Use(middleware.Logger(runtime.Logger))
	files.Use(middleware.Metrics(httpMetrics))

	return api, files, nil
}
