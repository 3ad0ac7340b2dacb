package api

import (
	"net/http"

	"github.com/JaimeStill/mod-depot/internal/auth"
	"github.com/JaimeStill/mod-depot/internal/config"
	"github.com/JaimeStill/mod-depot/internal/mods"
	"github.com/JaimeStill/mod-depot/pkg/openapi"
	"github.com/JaimeStill/mod-depot/pkg/routes"
)

type handlers struct {
	mods *mods.Handler
	auth *auth.Handler
}

func newHandlers(runtime *Runtime, domain *Domain) *handlers {
	guard := auth.RequireAdmin(domain.Tokens, runtime.Logger)

	return &handlers{
		mods: mods.NewHandler(domain.Mods, guard, runtime.Logger, runtime.MaxUploadSize),
		auth: auth.NewHandler(domain.Verifier, domain.Users, domain.Tokens, runtime.Logger),
	}
}

func registerRoutes(
	mux *http.ServeMux,
	spec *openapi.Spec,
	h *handlers,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		cfg.API.BasePath,
		spec,
		h.mods.Routes(),
		h.mods.CategoryRoutes(),
		h.auth.Routes(),
	)
}
