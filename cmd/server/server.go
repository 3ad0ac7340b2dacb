package main

import (
	"fmt"
	"time"

	"github.com/JaimeStill/mod-depot/internal/config"
	"github.com/JaimeStill/mod-depot/internal/infrastructure"
)

// Server coordinates the lifecycle of all subsystems.
type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

// NewServer creates and initializes the service with all subsystems.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	if err := infra.Start(); err != nil {
		return nil, fmt.Errorf("infrastructure start: %w", err)
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		if serr := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); serr != nil {
			infra.Logger.Error("cleanup after failed init", "error", serr)
		}
		return nil, fmt.Errorf("modules: %w", err)
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"records", cfg.Records.Backend,
		"storage", cfg.Storage.Backend,
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, router, infra.Logger, cfg.ShutdownTimeoutDuration()),
	}, nil
}

// Start begins serving and returns once the listener is running.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown gracefully stops all subsystems within timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
