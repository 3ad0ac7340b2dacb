package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	EnvAuthAdminEmail    = "AUTH_ADMIN_EMAIL"
	EnvAuthAdminName     = "AUTH_ADMIN_NAME"
	EnvAuthAdminPassword = "AUTH_ADMIN_PASSWORD"
	EnvAuthTokenSecret   = "AUTH_TOKEN_SECRET"
	EnvAuthTokenTTL      = "AUTH_TOKEN_TTL"
)

// AuthConfig holds the administrator seed and session token settings.
// The seed is applied only when the user document is first created.
type AuthConfig struct {
	AdminEmail    string `toml:"admin_email"`
	AdminName     string `toml:"admin_name"`
	AdminPassword string `toml:"admin_password"`

	// TokenSecret signs session tokens. When unset a random secret is
	// generated per process and sessions end on restart.
	TokenSecret string `toml:"token_secret"`
	TokenTTL    string `toml:"token_ttl"`
}

// TokenTTLDuration parses and returns the token lifetime as a time.Duration.
func (c *AuthConfig) TokenTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TokenTTL)
	return d
}

func (c *AuthConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *AuthConfig) Merge(overlay *AuthConfig) {
	if overlay.AdminEmail != "" {
		c.AdminEmail = overlay.AdminEmail
	}
	if overlay.AdminName != "" {
		c.AdminName = overlay.AdminName
	}
	if overlay.AdminPassword != "" {
		c.AdminPassword = overlay.AdminPassword
	}
	if overlay.TokenSecret != "" {
		c.TokenSecret = overlay.TokenSecret
	}
	if overlay.TokenTTL != "" {
		c.TokenTTL = overlay.TokenTTL
	}
}

func (c *AuthConfig) loadDefaults() {
	if c.AdminEmail == "" {
		c.AdminEmail = "admin@beamng-mods.ru"
	}
	if c.AdminName == "" {
		c.AdminName = "Administrator"
	}
	if c.AdminPassword == "" {
		c.AdminPassword = "admin123"
	}
	if c.TokenTTL == "" {
		c.TokenTTL = "24h"
	}
}

func (c *AuthConfig) loadEnv() {
	if v := os.Getenv(EnvAuthAdminEmail); v != "" {
		c.AdminEmail = v
	}
	if v := os.Getenv(EnvAuthAdminName); v != "" {
		c.AdminName = v
	}
	if v := os.Getenv(EnvAuthAdminPassword); v != "" {
		c.AdminPassword = v
	}
	if v := os.Getenv(EnvAuthTokenSecret); v != "" {
		c.TokenSecret = v
	}
	if v := os.Getenv(EnvAuthTokenTTL); v != "" {
		c.TokenTTL = v
	}

	if c.TokenSecret == "" {
		c.TokenSecret = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	}
}

func (c *AuthConfig) validate() error {
	if !strings.Contains(c.AdminEmail, "@") {
		return fmt.Errorf("invalid admin_email: %q", c.AdminEmail)
	}
	if c.AdminPassword == "" || len(c.AdminPassword) > 72 {
		return fmt.Errorf("admin_password must be 1 to 72 bytes")
	}
	if len(c.TokenSecret) < 16 {
		return fmt.Errorf("token_secret must be at least 16 characters")
	}
	ttl, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return fmt.Errorf("invalid token_ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	return nil
}
