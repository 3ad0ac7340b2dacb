package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/mod-depot/internal/config"
	"github.com/JaimeStill/mod-depot/pkg/storage"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"server addr", cfg.Server.Addr(), "0.0.0.0:8080"},
		{"api base path", cfg.API.BasePath, "/api"},
		{"storage backend", cfg.Storage.Backend, storage.BackendFilesystem},
		{"max upload", cfg.Storage.MaxUploadSizeBytes(), int64(104857600)},
		{"records backend", cfg.Records.Backend, config.RecordsJSON},
		{"mods file", cfg.Records.ModsFile(), filepath.Join(".data", "mods.json")},
		{"admin email", cfg.Auth.AdminEmail, "admin@beamng-mods.ru"},
		{"token ttl", cfg.Auth.TokenTTLDuration(), 24 * time.Hour},
		{"shutdown", cfg.ShutdownTimeoutDuration(), 30 * time.Second},
		{"openapi title", cfg.API.OpenAPI.Title, "Mod Depot API"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if len(cfg.Auth.TokenSecret) < 16 {
		t.Errorf("generated token secret too short: %q", cfg.Auth.TokenSecret)
	}
}

func TestLoadFrom_Overlay(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "config.toml")

	writeFile(t, base, `
shutdown_timeout = "10s"

[server]
port = 9000

[storage]
max_upload_size = "10MiB"

[records]
data_dir = "/var/lib/mods"
`)
	writeFile(t, filepath.Join(dir, "config.staging.toml"), `
[server]
host = "127.0.0.1"

[storage]
max_upload_size = "20MiB"
`)

	t.Setenv(config.EnvServiceEnv, "staging")

	cfg, err := config.LoadFrom(base)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:9000", cfg.Server.Addr())
	}
	if cfg.Storage.MaxUploadSizeBytes() != 20*1024*1024 {
		t.Errorf("MaxUploadSizeBytes() = %d, want overlay value", cfg.Storage.MaxUploadSizeBytes())
	}
	if cfg.Records.DataDir != "/var/lib/mods" {
		t.Errorf("DataDir = %q, want /var/lib/mods", cfg.Records.DataDir)
	}
	if cfg.ShutdownTimeoutDuration() != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeoutDuration())
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[server\nport = ")

	if _, err := config.LoadFrom(path); err == nil {
		t.Fatal("LoadFrom() succeeded with invalid TOML, want error")
	}
}

func TestFinalize_EnvOverrides(t *testing.T) {
	t.Setenv(config.EnvServerPort, "7070")
	t.Setenv(config.EnvRecordsBackend, "postgres")
	t.Setenv(config.EnvAuthTokenSecret, "0123456789abcdef0123")
	t.Setenv("STORAGE_MAX_UPLOAD_SIZE", "1GiB")
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg := &config.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Records.Backend != config.RecordsPostgres {
		t.Errorf("Records.Backend = %q, want postgres", cfg.Records.Backend)
	}
	if cfg.Auth.TokenSecret != "0123456789abcdef0123" {
		t.Errorf("TokenSecret = %q", cfg.Auth.TokenSecret)
	}
	if cfg.Storage.MaxUploadSizeBytes() != 1<<30 {
		t.Errorf("MaxUploadSizeBytes() = %d, want %d", cfg.Storage.MaxUploadSizeBytes(), 1<<30)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestFinalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"shutdown timeout", config.Config{ShutdownTimeout: "never"}},
		{"server port", config.Config{Server: config.ServerConfig{Port: 70000}}},
		{"records backend", config.Config{Records: config.RecordsConfig{Backend: "sqlite"}}},
		{"api base path", config.Config{API: config.APIConfig{BasePath: "api"}}},
		{"token ttl", config.Config{Auth: config.AuthConfig{TokenTTL: "-1h"}}},
		{"short secret", config.Config{Auth: config.AuthConfig{TokenSecret: "short"}}},
		{"admin email", config.Config{Auth: config.AuthConfig{AdminEmail: "admin"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(); err == nil {
				t.Error("Finalize() succeeded, want error")
			}
		})
	}
}

func TestServerConfig_Merge(t *testing.T) {
	base := &config.ServerConfig{Host: "localhost", Port: 8080, ReadTimeout: "30s", WriteTimeout: "30s"}
	base.Merge(&config.ServerConfig{Port: 9090, WriteTimeout: "60s"})

	if base.Host != "localhost" || base.ReadTimeout != "30s" {
		t.Errorf("unset overlay fields changed base: %+v", base)
	}
	if base.Port != 9090 || base.WriteTimeout != "60s" {
		t.Errorf("overlay fields not merged: %+v", base)
	}
}
