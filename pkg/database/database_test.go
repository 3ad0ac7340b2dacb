package database_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/JaimeStill/mod-depot/pkg/database"
)

func TestConfig_Finalize_Defaults(t *testing.T) {
	cfg := &database.Config{}

	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Host", cfg.Host, "localhost"},
		{"Port", cfg.Port, 5432},
		{"Name", cfg.Name, "moddepot"},
		{"User", cfg.User, "moddepot"},
		{"SSLMode", cfg.SSLMode, "disable"},
		{"MaxOpenConns", cfg.MaxOpenConns, 25},
		{"MaxIdleConns", cfg.MaxIdleConns, 5},
		{"ConnMaxLifetime", cfg.ConnMaxLifetime, "15m"},
		{"ConnTimeout", cfg.ConnTimeout, "5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestConfig_Finalize_Env(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("TEST_DB_PORT", "6543")
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	cfg := &database.Config{}
	err := cfg.Finalize(&database.Env{
		Host:     "TEST_DB_HOST",
		Port:     "TEST_DB_PORT",
		Password: "TEST_DB_PASSWORD",
	})
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Host != "db.internal" || cfg.Port != 6543 || cfg.Password != "s3cret" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestConfig_Finalize_InvalidDuration(t *testing.T) {
	cfg := &database.Config{ConnTimeout: "soon"}

	if err := cfg.Finalize(nil); err == nil {
		t.Error("Finalize() succeeded with invalid conn_timeout, want error")
	}
}

func TestConfig_URLs(t *testing.T) {
	cfg := &database.Config{Name: "mods", User: "admin", Password: "p@ss word"}
	cfg.Finalize(nil)

	dsn := cfg.Dsn()
	if !strings.Contains(dsn, "dbname=mods") || !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("Dsn() = %q", dsn)
	}

	url := cfg.MigrateURL()
	if !strings.HasPrefix(url, "pgx5://admin:") || !strings.Contains(url, "@localhost:5432/mods?sslmode=disable") {
		t.Errorf("MigrateURL() = %q", url)
	}
	if strings.Contains(url, "p@ss word") {
		t.Errorf("MigrateURL() did not escape the password: %q", url)
	}
}

func TestPing_NotReadyBeforeStart(t *testing.T) {
	cfg := &database.Config{}
	cfg.Finalize(nil)

	db, err := database.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Connection().Close()

	if err := db.Ping(context.Background()); !errors.Is(err, database.ErrNotReady) {
		t.Errorf("Ping() error = %v, want ErrNotReady", err)
	}
}
