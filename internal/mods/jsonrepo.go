package mods

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/JaimeStill/mod-depot/pkg/docstore"
)

type jsonRepo struct {
	store  *docstore.Store[Mod]
	now    func() time.Time
	logger *slog.Logger
}

// NewJSONRepository creates a Repository over a JSON document store.
func NewJSONRepository(store *docstore.Store[Mod], logger *slog.Logger) Repository {
	return &jsonRepo{
		store:  store,
		now:    time.Now,
		logger: logger.With("system", "mods", "backend", "json"),
	}
}

func (r *jsonRepo) List(ctx context.Context, filters Filters) ([]Mod, error) {
	records, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Mod, 0, len(records))
	for _, m := range records {
		if filters.Matches(m) {
			result = append(result, m)
		}
	}

	slices.SortStableFunc(result, func(a, b Mod) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return result, nil
}

func (r *jsonRepo) Find(ctx context.Context, id string) (*Mod, error) {
	records, err := r.store.Read(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(records, func(m Mod) bool { return m.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}

	return &records[i], nil
}

func (r *jsonRepo) Create(ctx context.Context, cmd CreateCommand) (*Mod, error) {
	if err := cmd.Normalize(); err != nil {
		return nil, err
	}

	var created Mod
	err := r.store.Mutate(ctx, func(records []Mod) ([]Mod, error) {
		now := stamp(r.now())
		created = Mod{
			ID:          NewID(now),
			Title:       cmd.Title,
			Description: cmd.Description,
			Author:      cmd.Author,
			Version:     cmd.Version,
			Category:    cmd.Category,
			FileName:    cmd.FileName,
			FileSize:    cmd.FileSize,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		for _, m := range records {
			if m.ID == created.ID || m.FileName == created.FileName {
				return nil, ErrDuplicate
			}
		}

		return slices.Insert(records, 0, created), nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("mod created", "id", created.ID, "title", created.Title, "file", created.FileName)
	return &created, nil
}

func (r *jsonRepo) Update(ctx context.Context, id string, cmd UpdateCommand) (*Mod, error) {
	var updated Mod
	err := r.store.Mutate(ctx, func(records []Mod) ([]Mod, error) {
		i := slices.IndexFunc(records, func(m Mod) bool { return m.ID == id })
		if i < 0 {
			return nil, ErrNotFound
		}

		m := records[i]
		if err := cmd.Apply(&m); err != nil {
			return nil, err
		}
		m.UpdatedAt = touch(m.UpdatedAt, r.now())

		records[i] = m
		updated = m
		return records, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("mod updated", "id", id)
	return &updated, nil
}

func (r *jsonRepo) Delete(ctx context.Context, id string) (bool, error) {
	err := r.store.Mutate(ctx, func(records []Mod) ([]Mod, error) {
		i := slices.IndexFunc(records, func(m Mod) bool { return m.ID == id })
		if i < 0 {
			return nil, ErrNotFound
		}
		return slices.Delete(records, i, i+1), nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	r.logger.Info("mod deleted", "id", id)
	return true, nil
}

func (r *jsonRepo) IncrementDownloads(ctx context.Context, id string) (bool, error) {
	err := r.store.Mutate(ctx, func(records []Mod) ([]Mod, error) {
		i := slices.IndexFunc(records, func(m Mod) bool { return m.ID == id })
		if i < 0 {
			return nil, ErrNotFound
		}
		records[i].DownloadCount++
		records[i].UpdatedAt = touch(records[i].UpdatedAt, r.now())
		return records, nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// stamp normalizes t to UTC millisecond precision.
func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// touch returns a modification time strictly after prev.
func touch(prev, now time.Time) time.Time {
	t := stamp(now)
	if !t.After(prev) {
		t = prev.Add(time.Millisecond)
	}
	return t
}
