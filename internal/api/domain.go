package api

import (
	"fmt"

	"github.com/JaimeStill/mod-depot/internal/auth"
	"github.com/JaimeStill/mod-depot/internal/config"
	"github.com/JaimeStill/mod-depot/internal/mods"
	"github.com/JaimeStill/mod-depot/internal/users"
	"github.com/JaimeStill/mod-depot/pkg/database"
	"github.com/JaimeStill/mod-depot/pkg/docstore"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Mods     mods.System
	Users    users.Repository
	Verifier auth.Verifier
	Tokens   *auth.Tokens
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	modRepo, err := newModRepository(cfg, runtime)
	if err != nil {
		return nil, err
	}

	modsSys := mods.New(
		modRepo,
		runtime.Storage,
		mods.NewMetrics(runtime.Metrics),
		runtime.Logger,
	)
	if err := modsSys.Start(runtime.Lifecycle); err != nil {
		return nil, fmt.Errorf("mods start failed: %w", err)
	}

	userStore, err := users.Open(cfg.Records.UsersFile(), users.Seed{
		Email:    cfg.Auth.AdminEmail,
		Name:     cfg.Auth.AdminName,
		Password: cfg.Auth.AdminPassword,
	}, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("users init failed: %w", err)
	}
	if err := userStore.Start(runtime.Lifecycle); err != nil {
		return nil, fmt.Errorf("users start failed: %w", err)
	}
	userRepo := users.NewJSONRepository(userStore)

	return &Domain{
		Mods:     modsSys,
		Users:    userRepo,
		Verifier: auth.NewVerifier(userRepo, runtime.Logger),
		Tokens:   auth.NewTokens(cfg.Auth.TokenSecret, cfg.Auth.TokenTTLDuration()),
	}, nil
}

func newModRepository(cfg *config.Config, runtime *Runtime) (mods.Repository, error) {
	switch cfg.Records.Backend {
	case config.RecordsPostgres:
		if err := database.Migrate(&cfg.Database, mods.Migrations, mods.MigrationsDir, runtime.Logger); err != nil {
			return nil, fmt.Errorf("mods migration failed: %w", err)
		}
		return mods.NewPostgresRepository(runtime.Database.Connection(), runtime.Logger), nil
	default:
		store, err := docstore.New[mods.Mod](cfg.Records.ModsFile(), nil, runtime.Logger)
		if err != nil {
			return nil, fmt.Errorf("mods store init failed: %w", err)
		}
		if err := store.Start(runtime.Lifecycle); err != nil {
			return nil, fmt.Errorf("mods store start failed: %w", err)
		}
		return mods.NewJSONRepository(store, runtime.Logger), nil
	}
}
