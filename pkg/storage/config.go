package storage

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

// Storage backends.
const (
	BackendFilesystem = "filesystem"
	BackendS3         = "s3"
)

// Config contains blob storage configuration.
type Config struct {
	Backend string `toml:"backend"`

	// BasePath is the root directory for filesystem storage.
	// Default: ".data/uploads"
	BasePath string `toml:"base_path"`

	// PublicPrefix is the URL path blobs are served under.
	// Default: "/uploads"
	PublicPrefix string `toml:"public_prefix"`

	// MaxUploadSize accepts binary units ("100MiB", "512KiB").
	MaxUploadSize    string   `toml:"max_upload_size"`
	S3               S3Config `toml:"s3"`
	maxUploadSizeVal int64
}

// S3Config contains settings for the S3 backend.
type S3Config struct {
	Bucket       string `toml:"bucket"`
	Region       string `toml:"region"`
	Prefix       string `toml:"prefix"`
	Endpoint     string `toml:"endpoint"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	UsePathStyle bool   `toml:"use_path_style"`
}

// Env maps environment variable names for storage configuration.
type Env struct {
	Backend       string
	BasePath      string
	PublicPrefix  string
	MaxUploadSize string
	S3Bucket      string
	S3Region      string
	S3Prefix      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3PathStyle   string
}

// MaxUploadSizeBytes returns the parsed upload limit. Valid after Finalize.
func (c *Config) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.PublicPrefix != "" {
		c.PublicPrefix = overlay.PublicPrefix
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	c.S3.merge(&overlay.S3)
}

func (c *S3Config) merge(overlay *S3Config) {
	if overlay.Bucket != "" {
		c.Bucket = overlay.Bucket
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.AccessKey != "" {
		c.AccessKey = overlay.AccessKey
	}
	if overlay.SecretKey != "" {
		c.SecretKey = overlay.SecretKey
	}
	if overlay.UsePathStyle {
		c.UsePathStyle = true
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFilesystem
	}
	if c.BasePath == "" {
		c.BasePath = ".data/uploads"
	}
	if c.PublicPrefix == "" {
		c.PublicPrefix = "/uploads"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "100MiB"
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Backend, &c.Backend)
	set(env.BasePath, &c.BasePath)
	set(env.PublicPrefix, &c.PublicPrefix)
	set(env.MaxUploadSize, &c.MaxUploadSize)
	set(env.S3Bucket, &c.S3.Bucket)
	set(env.S3Region, &c.S3.Region)
	set(env.S3Prefix, &c.S3.Prefix)
	set(env.S3Endpoint, &c.S3.Endpoint)
	set(env.S3AccessKey, &c.S3.AccessKey)
	set(env.S3SecretKey, &c.S3.SecretKey)

	if env.S3PathStyle != "" {
		if v := os.Getenv(env.S3PathStyle); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.S3.UsePathStyle = b
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendFilesystem:
		if c.BasePath == "" {
			return fmt.Errorf("base_path required")
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket required")
		}
	default:
		return fmt.Errorf("invalid backend: %s (must be %s or %s)", c.Backend, BackendFilesystem, BackendS3)
	}

	if len(c.PublicPrefix) < 2 || c.PublicPrefix[0] != '/' || strings.Contains(c.PublicPrefix[1:], "/") {
		return fmt.Errorf("public_prefix must be a single path segment such as /uploads: %q", c.PublicPrefix)
	}

	size, err := units.RAMInBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	return nil
}
