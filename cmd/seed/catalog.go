package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/mod-depot/internal/mods"
	"github.com/pelletier/go-toml/v2"
)

func init() {
	registerSeeder(&CatalogSeeder{})
}

// CatalogManifest lists archives to import. File paths are relative to
// the manifest.
//
//	[[mods]]
//	title    = "Canyon Run"
//	author   = "beam"
//	category = "maps"
//	file     = "archives/canyon.zip"
type CatalogManifest struct {
	Mods []CatalogEntry `toml:"mods"`
}

type CatalogEntry struct {
	Title       string `toml:"title"`
	Author      string `toml:"author"`
	Category    string `toml:"category"`
	Version     string `toml:"version"`
	Description string `toml:"description"`
	File        string `toml:"file"`
}

// CatalogSeeder uploads the archives of a manifest. Entries whose title
// and author already exist are skipped.
type CatalogSeeder struct {
	file string
}

func (s *CatalogSeeder) Name() string {
	return "catalog"
}

func (s *CatalogSeeder) Description() string {
	return "Imports mod archives listed in a TOML manifest (-file)"
}

// SetFile sets the manifest path.
func (s *CatalogSeeder) SetFile(path string) {
	s.file = path
}

func (s *CatalogSeeder) Seed(ctx context.Context, t *Target) error {
	if s.file == "" {
		fmt.Println("catalog: no manifest given, skipping")
		return nil
	}

	manifest, err := loadManifest(s.file)
	if err != nil {
		return err
	}

	existing, err := t.Mods.List(ctx, mods.Filters{})
	if err != nil {
		return fmt.Errorf("list mods: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, m := range existing {
		seen[catalogKey(m.Title, m.Author)] = true
	}

	base := filepath.Dir(s.file)
	imported := 0

	for _, entry := range manifest.Mods {
		key := catalogKey(entry.Title, entry.Author)
		if seen[key] {
			continue
		}

		m, err := importEntry(ctx, t, base, entry)
		if err != nil {
			return fmt.Errorf("import %q: %w", entry.Title, err)
		}

		seen[key] = true
		imported++
		fmt.Printf("imported %s (%s, %d bytes)\n", m.Title, m.FileName, m.FileSize)
	}

	fmt.Printf("catalog: %d imported, %d already present\n", imported, len(manifest.Mods)-imported)
	return nil
}

func loadManifest(path string) (*CatalogManifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest CatalogManifest
	if err := toml.Unmarshal(content, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	for i, entry := range manifest.Mods {
		if strings.TrimSpace(entry.File) == "" {
			return nil, fmt.Errorf("manifest entry %d (%q): file required", i, entry.Title)
		}
	}

	return &manifest, nil
}

func importEntry(ctx context.Context, t *Target, base string, entry CatalogEntry) (*mods.Mod, error) {
	path := entry.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if t.MaxUploadSize > 0 && info.Size() > t.MaxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", mods.ErrFileTooLarge, info.Size(), t.MaxUploadSize)
	}

	cmd := mods.UploadCommand{
		Title:        entry.Title,
		Author:       entry.Author,
		Category:     entry.Category,
		Version:      entry.Version,
		OriginalName: filepath.Base(path),
		Body:         f,
	}
	if entry.Description != "" {
		cmd.Description = &entry.Description
	}

	return t.Mods.Create(ctx, cmd)
}

func catalogKey(title, author string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "\x00" + strings.ToLower(strings.TrimSpace(author))
}
