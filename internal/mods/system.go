package mods

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JaimeStill/mod-depot/pkg/lifecycle"
	"github.com/JaimeStill/mod-depot/pkg/storage"
	"github.com/docker/go-units"
)

// System coordinates mod records with their stored archives.
type System interface {
	List(ctx context.Context, filters Filters) ([]Mod, error)
	Find(ctx context.Context, id string) (*Mod, error)

	// Create validates the metadata, stores the payload, then records it.
	// A stored payload is removed again if the record cannot be created.
	Create(ctx context.Context, cmd UploadCommand) (*Mod, error)

	Update(ctx context.Context, id string, cmd UpdateCommand) (*Mod, error)

	// Delete removes the stored archive (best effort) and then the record.
	Delete(ctx context.Context, id string) error

	// RecordDownload counts one download. Unknown ids are ignored.
	RecordDownload(ctx context.Context, id string) error

	// Download opens the archive of id and counts the download.
	Download(ctx context.Context, id string) (*Mod, io.ReadCloser, error)

	Categories(ctx context.Context) ([]CategoryCount, error)

	// Open returns the stored archive for a blob key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// FilePath returns the public path the archive of m is served from.
	FilePath(m *Mod) string

	Start(lc *lifecycle.Coordinator) error
}

const keyAttempts = 3

type system struct {
	repo    Repository
	storage storage.System
	metrics *Metrics
	now     func() time.Time
	logger  *slog.Logger
}

// New creates the mods System.
func New(repo Repository, store storage.System, metrics *Metrics, logger *slog.Logger) System {
	return &system{
		repo:    repo,
		storage: store,
		metrics: metrics,
		now:     time.Now,
		logger:  logger.With("system", "mods"),
	}
}

func (s *system) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		records, err := s.repo.List(lc.Context(), Filters{})
		if err != nil {
			s.logger.Error("failed to count mods", "error", err)
			return
		}
		s.metrics.Mods.Set(float64(len(records)))
		s.logger.Info("mod catalog loaded", "mods", len(records))
	})
	return nil
}

func (s *system) List(ctx context.Context, filters Filters) ([]Mod, error) {
	return s.repo.List(ctx, filters)
}

func (s *system) Find(ctx context.Context, id string) (*Mod, error) {
	return s.repo.Find(ctx, id)
}

func (s *system) Create(ctx context.Context, cmd UploadCommand) (*Mod, error) {
	meta := cmd.Metadata()
	meta.FileName = "pending"
	if err := meta.Normalize(); err != nil {
		return nil, err
	}
	if cmd.Body == nil {
		return nil, fmt.Errorf("%w: file required", ErrInvalidFile)
	}

	key, err := s.freeKey(ctx, cmd.OriginalName)
	if err != nil {
		return nil, err
	}

	size, err := s.storage.Store(ctx, key, cmd.Body)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	meta.FileName = key
	meta.FileSize = size

	m, err := s.repo.Create(ctx, meta)
	if err != nil {
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.Error("cleanup failed after record error", "file", key, "error", delErr)
		}
		return nil, err
	}

	s.metrics.Mods.Inc()
	s.metrics.UploadBytes.Add(float64(size))
	s.logger.Info("mod uploaded", "id", m.ID, "file", key, "size", units.HumanSize(float64(size)))

	return m, nil
}

// freeKey generates a blob key that is not in use so Store never
// overwrites the archive of another record.
func (s *system) freeKey(ctx context.Context, original string) (string, error) {
	for range keyAttempts {
		key := NewFileName(s.now(), original)
		exists, err := s.storage.Validate(ctx, key)
		if err != nil {
			return "", fmt.Errorf("check file name: %w", err)
		}
		if !exists {
			return key, nil
		}
		s.logger.Warn("file name collision", "file", key)
	}
	return "", fmt.Errorf("%w: no free file name after %d attempts", ErrDuplicate, keyAttempts)
}

func (s *system) Update(ctx context.Context, id string, cmd UpdateCommand) (*Mod, error) {
	return s.repo.Update(ctx, id, cmd)
}

func (s *system) Delete(ctx context.Context, id string) error {
	m, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, m.FileName); err != nil {
		s.logger.Error("file delete failed", "id", id, "file", m.FileName, "error", err)
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}

	s.metrics.Mods.Dec()
	return nil
}

func (s *system) RecordDownload(ctx context.Context, id string) error {
	found, err := s.repo.IncrementDownloads(ctx, id)
	if err != nil {
		return err
	}
	if found {
		s.metrics.Downloads.Inc()
	}
	return nil
}

func (s *system) Download(ctx context.Context, id string) (*Mod, io.ReadCloser, error) {
	m, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.storage.Open(ctx, m.FileName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrFileMissing
		}
		return nil, nil, err
	}

	if err := s.RecordDownload(ctx, id); err != nil {
		s.logger.Error("failed to record download", "id", id, "error", err)
	}

	return m, rc, nil
}

func (s *system) FilePath(m *Mod) string {
	return s.storage.Path(m.FileName)
}

func (s *system) Categories(ctx context.Context) ([]CategoryCount, error) {
	records, err := s.repo.List(ctx, Filters{})
	if err != nil {
		return nil, err
	}
	return countCategories(records), nil
}

func (s *system) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.storage.Open(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrFileMissing
	}
	return rc, err
}
