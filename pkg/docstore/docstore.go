// Package docstore persists a collection of records as one JSON array file.
//
// A single goroutine owns the in-memory collection. Reads and mutations are
// sent to it over a channel and applied one at a time, so concurrent callers
// never lose updates. Every successful mutation rewrites the file atomically
// (temp file, fsync, rename).
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/JaimeStill/mod-depot/pkg/lifecycle"
)

// ErrClosed is returned for requests made after the store stopped.
var ErrClosed = errors.New("docstore: closed")

// MutateFunc receives a copy of the collection and returns its replacement.
// Returning an error discards the change.
type MutateFunc[T any] func(items []T) ([]T, error)

// SeedFunc returns the initial records of a new document.
type SeedFunc[T any] func() ([]T, error)

type request[T any] struct {
	mutate MutateFunc[T]
	reply  chan result[T]
}

type result[T any] struct {
	items []T
	err   error
}

// Store is a JSON array file of T owned by a single writer goroutine.
type Store[T any] struct {
	path     string
	items    []T
	requests chan request[T]
	done     chan struct{}
	logger   *slog.Logger
}

// New loads the collection at path. When the file does not exist it is
// created from seed; a seed error leaves no file behind. An empty file is
// read as an empty collection.
func New[T any](path string, seed SeedFunc[T], logger *slog.Logger) (*Store[T], error) {
	if path == "" {
		return nil, fmt.Errorf("path required")
	}

	s := &Store[T]{
		path:     path,
		requests: make(chan request[T]),
		done:     make(chan struct{}),
		logger:   logger.With("system", "docstore", "file", filepath.Base(path)),
	}

	if err := s.load(seed); err != nil {
		return nil, err
	}

	return s, nil
}

// Start runs the writer goroutine until the coordinator has drained, so
// requests still in flight during shutdown are served.
func (s *Store[T]) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting document store", "path", s.path, "records", len(s.items))

	go s.run(lc.Drained())

	lc.OnShutdown(func() {
		<-s.done
		s.logger.Info("document store stopped")
	})

	return nil
}

// Read returns a snapshot of the collection.
func (s *Store[T]) Read(ctx context.Context) ([]T, error) {
	res, err := s.send(ctx, nil)
	if err != nil {
		return nil, err
	}
	return res.items, res.err
}

// Mutate applies fn to the collection and persists the result. The stored
// collection is unchanged when fn or the write fails.
func (s *Store[T]) Mutate(ctx context.Context, fn MutateFunc[T]) error {
	res, err := s.send(ctx, fn)
	if err != nil {
		return err
	}
	return res.err
}

func (s *Store[T]) send(ctx context.Context, fn MutateFunc[T]) (result[T], error) {
	req := request[T]{
		mutate: fn,
		reply:  make(chan result[T], 1),
	}

	select {
	case s.requests <- req:
	case <-ctx.Done():
		return result[T]{}, ctx.Err()
	case <-s.done:
		return result[T]{}, ErrClosed
	}

	return <-req.reply, nil
}

func (s *Store[T]) run(stop <-chan struct{}) {
	defer close(s.done)

	for {
		select {
		case <-stop:
			return
		case req := <-s.requests:
			req.reply <- s.apply(req.mutate)
		}
	}
}

func (s *Store[T]) apply(fn MutateFunc[T]) result[T] {
	if fn == nil {
		return result[T]{items: slices.Clone(s.items)}
	}

	next, err := fn(slices.Clone(s.items))
	if err != nil {
		return result[T]{err: err}
	}
	if next == nil {
		next = []T{}
	}

	if err := s.write(next); err != nil {
		s.logger.Error("write failed", "error", err)
		return result[T]{err: err}
	}

	s.items = next
	return result[T]{items: slices.Clone(next)}
}

func (s *Store[T]) load(seed SeedFunc[T]) error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		items := []T{}
		if seed != nil {
			seeded, err := seed()
			if err != nil {
				return fmt.Errorf("seed %s: %w", s.path, err)
			}
			if seeded != nil {
				items = seeded
			}
		}
		if err := s.write(items); err != nil {
			return fmt.Errorf("seed %s: %w", s.path, err)
		}
		s.items = items
		s.logger.Info("document created", "records", len(items))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	if len(data) == 0 {
		s.items = []T{}
		return nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	if items == nil {
		items = []T{}
	}

	s.items = items
	return nil
}

func (s *Store[T]) write(items []T) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
