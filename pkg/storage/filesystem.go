package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/mod-depot/pkg/lifecycle"
	"github.com/docker/go-units"
)

// filesystem implements System with keys mapping to relative file paths
// under an absolute base directory.
type filesystem struct {
	basePath     string
	publicPrefix string
	logger       *slog.Logger
}

// NewFilesystem creates a filesystem storage system rooted at basePath.
// Directory creation is deferred to Start.
func NewFilesystem(basePath, publicPrefix string, logger *slog.Logger) (System, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base_path required")
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base_path: %w", err)
	}

	return &filesystem{
		basePath:     absPath,
		publicPrefix: publicPrefix,
		logger:       logger.With("system", "storage", "backend", BackendFilesystem),
	}, nil
}

func (f *filesystem) Start(lc *lifecycle.Coordinator) error {
	f.logger.Info("starting storage system", "base_path", f.basePath)

	if err := os.MkdirAll(f.basePath, 0755); err != nil {
		return fmt.Errorf("create base_path: %w", err)
	}

	lc.OnStartup(func() {
		f.logger.Info("storage directory initialized")
	})

	return nil
}

func (f *filesystem) Store(ctx context.Context, key string, r io.Reader) (int64, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return 0, classify(err, "create temp file")
	}

	size, err := io.Copy(file, contextReader{ctx: ctx, r: r})
	if err != nil {
		file.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("write temp file: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("sync temp file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("rename temp file: %w", err)
	}

	f.logger.Debug("blob stored", "key", key, "size", units.HumanSize(float64(size)))
	return size, nil
}

func (f *filesystem) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, classify(err, "open file")
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, classify(err, "stat file")
	}
	if info.IsDir() {
		file.Close()
		return nil, ErrNotFound
	}

	return file, nil
}

func (f *filesystem) Delete(ctx context.Context, key string) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return classify(err, "remove file")
	}

	if dir != f.basePath && strings.HasPrefix(dir, f.basePath) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			f.logger.Warn("failed to read directory for cleanup", "dir", dir, "error", err)
			return nil
		}

		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
				f.logger.Warn("failed to remove empty directory", "dir", dir, "error", err)
			}
		}
	}

	return nil
}

func (f *filesystem) Validate(ctx context.Context, key string) (bool, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, classify(err, "stat file")
	}

	return true, nil
}

func (f *filesystem) Path(key string) string {
	return publicPath(f.publicPrefix, key)
}

func (f *filesystem) fullPath(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	cleaned := filepath.Clean(key)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ErrInvalidKey
	}

	full := filepath.Join(f.basePath, cleaned)
	if !strings.HasPrefix(full, f.basePath+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}

	return full, nil
}

func classify(err error, op string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
