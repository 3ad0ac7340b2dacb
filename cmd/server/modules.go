package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/mod-depot/internal/api"
	"github.com/JaimeStill/mod-depot/internal/config"
	"github.com/JaimeStill/mod-depot/internal/infrastructure"
	"github.com/JaimeStill/mod-depot/pkg/database"
	"github.com/JaimeStill/mod-depot/pkg/lifecycle"
	"github.com/JaimeStill/mod-depot/pkg/module"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readyPingTimeout = 2 * time.Second

type Modules struct {
	API   *module.Module
	Files *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	runtime := api.NewRuntime(cfg, infra)

	domain, err := api.NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}

	apiModule, filesModule, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API:   apiModule,
		Files: filesModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.Files)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var pinger database.Pinger
	if infra.Database != nil {
		pinger = infra.Database
	}
	router.HandleNative("GET /readyz", readyHandler(infra.Lifecycle, pinger, infra.Logger))

	router.HandleNative("GET /metrics", promhttp.HandlerFor(infra.Metrics, promhttp.HandlerOpts{}).ServeHTTP)

	return router
}

// readyHandler reports READY once startup completed and, when db is set,
// the database answers a ping.
func readyHandler(lc lifecycle.ReadinessChecker, db database.Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !lc.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
			return
		}

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyPingTimeout)
			defer cancel()

			if err := db.Ping(ctx); err != nil {
				logger.Warn("readiness ping failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("DATABASE UNAVAILABLE"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}
