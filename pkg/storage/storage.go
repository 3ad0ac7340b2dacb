// Package storage provides blob storage for uploaded payloads. It defines a
// System interface with a filesystem implementation for single-node deployments
// and an S3 implementation for object stores.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/mod-depot/pkg/lifecycle"
)

// System defines blob storage operations keyed by flat or nested names.
type System interface {
	// Store streams r to key and returns the number of bytes written.
	// An existing blob at key is overwritten. Partial writes are never visible.
	Store(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns a reader for the blob at key. Callers must close it.
	// Returns ErrNotFound if the key does not exist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob at key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Validate reports whether key exists and is accessible.
	Validate(ctx context.Context, key string) (bool, error)

	// Path returns the public path the blob is served from.
	Path(key string) string

	// Start registers lifecycle hooks with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// New creates the System selected by cfg.Backend.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Backend {
	case BackendFilesystem:
		return NewFilesystem(cfg.BasePath, cfg.PublicPrefix, logger)
	case BackendS3:
		return NewS3(ctx, &cfg.S3, cfg.PublicPrefix, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

func publicPath(prefix, key string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(key, "/")
}
