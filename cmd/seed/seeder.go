// Package main provides the seed command for preparing a data directory:
// it creates the record documents with the administrator account and
// imports mod archives listed in a catalog manifest.
package main

import (
	"context"
	"fmt"

	"github.com/JaimeStill/mod-depot/internal/mods"
	"github.com/JaimeStill/mod-depot/internal/users"
)

// Target is what seeders write to. MaxUploadSize caps imported archives
// the same way the upload endpoint does; zero disables the cap.
type Target struct {
	Mods          mods.System
	Users         users.Repository
	AdminEmail    string
	MaxUploadSize int64
}

// Seeder defines the interface for data seeders.
type Seeder interface {
	// Name returns the unique identifier for this seeder.
	Name() string

	// Description returns a human-readable description of what this seeder does.
	Description() string

	// Seed populates the target. Running it twice must not duplicate data.
	Seed(ctx context.Context, t *Target) error
}

var (
	seeders = map[string]Seeder{}
	order   []string
)

// registerSeeder adds a seeder to the registry. Seeders run in
// registration order.
func registerSeeder(s Seeder) {
	seeders[s.Name()] = s
	order = append(order, s.Name())
}

func getSeeder(name string) (Seeder, bool) {
	s, ok := seeders[name]
	return s, ok
}

func listSeeders() []Seeder {
	result := make([]Seeder, 0, len(order))
	for _, name := range order {
		result = append(result, seeders[name])
	}
	return result
}

func runSeeder(ctx context.Context, t *Target, name string) error {
	seeder, ok := getSeeder(name)
	if !ok {
		return fmt.Errorf("seeder not found: %s", name)
	}

	if err := seeder.Seed(ctx, t); err != nil {
		return fmt.Errorf("seed %s: %w", name, err)
	}

	return nil
}

// runAllSeeders runs every registered seeder and stops at the first failure.
func runAllSeeders(ctx context.Context, t *Target) error {
	for _, name := range order {
		if err := runSeeder(ctx, t, name); err != nil {
			return err
		}
	}
	return nil
}
