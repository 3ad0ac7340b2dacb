package logging

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Env names the environment variables read by Finalize.
type Env struct {
	Level     string
	Format    string
	AddSource string
}

// Config holds logging settings. Level and Format are case-insensitive.
type Config struct {
	Level     Level  `toml:"level"`
	Format    Format `toml:"format"`
	AddSource bool   `toml:"add_source"`
}

func (c *Config) Finalize(env *Env) error {
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	c.loadDefaults()

	c.Level = Level(strings.ToLower(string(c.Level)))
	c.Format = Format(strings.ToLower(string(c.Format)))

	if err := c.Level.Validate(); err != nil {
		return err
	}
	return c.Format.Validate()
}

// Merge applies the overlay's level and format when set. AddSource can
// only be switched on by an overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	c.AddSource = c.AddSource || overlay.AddSource
}

func (c *Config) loadDefaults() {
	if c.Level == "" {
		c.Level = LevelInfo
	}
	if c.Format == "" {
		c.Format = FormatText
	}
}

func (c *Config) loadEnv(env *Env) error {
	get := func(name string) string {
		if name == "" {
			return ""
		}
		return os.Getenv(name)
	}

	if v := get(env.Level); v != "" {
		c.Level = Level(v)
	}
	if v := get(env.Format); v != "" {
		c.Format = Format(v)
	}
	if v := get(env.AddSource); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env.AddSource, err)
		}
		c.AddSource = b
	}
	return nil
}
