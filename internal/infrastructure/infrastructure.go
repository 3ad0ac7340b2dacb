// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, storage, metrics, and the optional
// database) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/mod-depot/internal/config"
	"github.com/JaimeStill/mod-depot/pkg/database"
	"github.com/JaimeStill/mod-depot/pkg/lifecycle"
	"github.com/JaimeStill/mod-depot/pkg/logging"
	"github.com/JaimeStill/mod-depot/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil unless records are kept in PostgreSQL.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Storage   storage.System
	Database  database.System
	Metrics   *prometheus.Registry
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, err := storage.New(context.Background(), &cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Storage:   store,
		Metrics:   reg,
	}

	if cfg.Records.Backend == config.RecordsPostgres {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	return infra, nil
}

// Start registers infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	return nil
}
