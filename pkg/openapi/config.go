package openapi

import (
	"os"
	"strings"
)

// Config describes the generated document.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`

	// Servers are advertised base URLs. Empty means relative to the host
	// serving the document.
	Servers []string `toml:"servers"`
}

// ConfigEnv names the environment variables read by Finalize.
// Servers is a comma-separated list.
type ConfigEnv struct {
	Title       string
	Description string
	Servers     string
}

func (c *Config) Finalize(env *ConfigEnv) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return nil
}

func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
	if len(overlay.Servers) > 0 {
		c.Servers = overlay.Servers
	}
}

// Apply writes the configured description and servers into s.
func (c *Config) Apply(s *Spec) {
	s.SetDescription(c.Description)
	for _, url := range c.Servers {
		s.AddServer(url)
	}
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "Mod Depot API"
	}
	if c.Description == "" {
		c.Description = "Upload, browse, search, and download game mod archives."
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	lookup := func(name string) string {
		if name == "" {
			return ""
		}
		return os.Getenv(name)
	}

	if v := lookup(env.Title); v != "" {
		c.Title = v
	}
	if v := lookup(env.Description); v != "" {
		c.Description = v
	}
	if v := lookup(env.Servers); v != "" {
		c.Servers = c.Servers[:0]
		for url := range strings.SplitSeq(v, ",") {
			if url = strings.TrimSpace(url); url != "" {
				c.Servers = append(c.Servers, url)
			}
		}
	}
}
