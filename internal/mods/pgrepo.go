package mods

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"log/slog"
	"time"

	"github.com/JaimeStill/mod-depot/pkg/query"
	"github.com/JaimeStill/mod-depot/pkg/repository"
)

// Migrations holds the PostgreSQL schema for the mods table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory within Migrations holding the SQL files.
const MigrationsDir = "migrations"

var projection = query.NewProjectionMap("public", "mods", "m").
	Project("id", "Id").
	Project("title", "Title").
	Project("description", "Description").
	Project("author", "Author").
	Project("version", "Version").
	Project("category", "Category").
	Project("file_name", "FileName").
	Project("file_size", "FileSize").
	Project("download_count", "DownloadCount").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Project("seq", "Seq")

var defaultSort = []query.SortField{
	{Field: "CreatedAt", Descending: true},
	{Field: "Seq", Descending: true},
}

const returning = `RETURNING id, title, description, author, version, category,
	file_name, file_size, download_count, created_at, updated_at, seq`

type pgRepo struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// NewPostgresRepository creates a Repository over the mods table.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) Repository {
	return &pgRepo{
		db:     db,
		now:    time.Now,
		logger: logger.With("system", "mods", "backend", "postgres"),
	}
}

func (r *pgRepo) List(ctx context.Context, filters Filters) ([]Mod, error) {
	qb := filters.Apply(query.NewBuilder(projection, defaultSort...))

	q, args := qb.BuildList()
	return repository.QueryMany(ctx, r.db, q, args, scanMod)
}

func (r *pgRepo) Find(ctx context.Context, id string) (*Mod, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Id", id)

	m, err := repository.QueryOne(ctx, r.db, q, args, scanMod)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &m, nil
}

func (r *pgRepo) Create(ctx context.Context, cmd CreateCommand) (*Mod, error) {
	if err := cmd.Normalize(); err != nil {
		return nil, err
	}

	now := stamp(r.now())
	q := `INSERT INTO mods(id, title, description, author, version, category, file_name, file_size, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) ` + returning

	m, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Mod, error) {
		return repository.QueryOne(ctx, tx, q, []any{
			NewID(now), cmd.Title, cmd.Description, cmd.Author, cmd.Version,
			cmd.Category, cmd.FileName, cmd.FileSize, now,
		}, scanMod)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("mod created", "id", m.ID, "title", m.Title, "file", m.FileName)
	return &m, nil
}

func (r *pgRepo) Update(ctx context.Context, id string, cmd UpdateCommand) (*Mod, error) {
	sel, args := query.NewBuilder(projection).BuildSingle("Id", id)
	sel += " FOR UPDATE"

	upd := `UPDATE mods SET title = $1, description = $2, author = $3, version = $4, category = $5, updated_at = $6
		WHERE id = $7 ` + returning

	m, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Mod, error) {
		current, err := repository.QueryOne(ctx, tx, sel, args, scanMod)
		if err != nil {
			return Mod{}, err
		}

		if err := cmd.Apply(&current); err != nil {
			return Mod{}, err
		}

		return repository.QueryOne(ctx, tx, upd, []any{
			current.Title, current.Description, current.Author, current.Version,
			current.Category, touch(current.UpdatedAt, r.now()), id,
		}, scanMod)
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("mod updated", "id", id)
	return &m, nil
}

func (r *pgRepo) Delete(ctx context.Context, id string) (bool, error) {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM mods WHERE id = $1", id)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	r.logger.Info("mod deleted", "id", id)
	return true, nil
}

func (r *pgRepo) IncrementDownloads(ctx context.Context, id string) (bool, error) {
	q := `UPDATE mods
		SET download_count = download_count + 1,
			updated_at = GREATEST($1, updated_at + INTERVAL '1 millisecond')
		WHERE id = $2`

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (bool, error) {
		res, err := tx.ExecContext(ctx, q, stamp(r.now()), id)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	})
}

func scanMod(s repository.Scanner) (Mod, error) {
	var (
		m   Mod
		seq int64
	)
	err := s.Scan(
		&m.ID,
		&m.Title,
		&m.Description,
		&m.Author,
		&m.Version,
		&m.Category,
		&m.FileName,
		&m.FileSize,
		&m.DownloadCount,
		&m.CreatedAt,
		&m.UpdatedAt,
		&seq,
	)
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return m, err
}
