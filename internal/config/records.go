package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Record store backends.
const (
	RecordsJSON     = "json"
	RecordsPostgres = "postgres"
)

const (
	EnvRecordsBackend = "RECORDS_BACKEND"
	EnvRecordsDataDir = "RECORDS_DATA_DIR"
)

// RecordsConfig selects where mod metadata and users are kept.
type RecordsConfig struct {
	Backend string `toml:"backend"`
	DataDir string `toml:"data_dir"`
}

// ModsFile is the JSON document holding mod records.
func (c *RecordsConfig) ModsFile() string {
	return filepath.Join(c.DataDir, "mods.json")
}

// UsersFile is the JSON document holding user records.
func (c *RecordsConfig) UsersFile() string {
	return filepath.Join(c.DataDir, "users.json")
}

func (c *RecordsConfig) Finalize() error {
	if c.Backend == "" {
		c.Backend = RecordsJSON
	}
	if c.DataDir == "" {
		c.DataDir = ".data"
	}
	if v := os.Getenv(EnvRecordsBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvRecordsDataDir); v != "" {
		c.DataDir = v
	}

	switch c.Backend {
	case RecordsJSON, RecordsPostgres:
		return nil
	default:
		return fmt.Errorf("invalid backend: %s (must be %s or %s)", c.Backend, RecordsJSON, RecordsPostgres)
	}
}

func (c *RecordsConfig) Merge(overlay *RecordsConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.DataDir != "" {
		c.DataDir = overlay.DataDir
	}
}
