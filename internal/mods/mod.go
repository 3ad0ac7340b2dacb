// Package mods manages uploaded mod archives: their metadata records, the
// stored payload blobs, and the HTTP endpoints to browse, upload, and
// download them.
package mods

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

// DefaultVersion is assigned when an upload omits a version.
const DefaultVersion = "1.0"

// KnownCategories lists the categories offered to uploaders.
// Records may carry other values.
var KnownCategories = []string{"vehicles", "maps", "parts", "skins", "sounds", "other"}

// Mod is the metadata record of one uploaded archive.
type Mod struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	Author        string    `json:"author"`
	Version       string    `json:"version"`
	Category      string    `json:"category"`
	FileName      string    `json:"fileName"`
	FileSize      int64     `json:"fileSize"`
	DownloadCount int64     `json:"downloadCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CategoryCount reports how many records carry a category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CreateCommand contains the data for a new record. FileName and FileSize
// describe a blob that has already been stored.
type CreateCommand struct {
	Title       string
	Description *string
	Author      string
	Version     string
	Category    string
	FileName    string
	FileSize    int64
}

// UpdateCommand holds the mutable fields of a record. Nil fields are left
// unchanged. An empty description clears it.
type UpdateCommand struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Author      *string `json:"author,omitempty"`
	Version     *string `json:"version,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// UploadCommand is an upload request: metadata plus the payload stream.
type UploadCommand struct {
	Title        string
	Description  *string
	Author       string
	Version      string
	Category     string
	OriginalName string
	Body         io.Reader
}

// Normalize trims metadata, applies the default version, and validates
// required fields.
func (c *CreateCommand) Normalize() error {
	c.Title = strings.TrimSpace(c.Title)
	c.Author = strings.TrimSpace(c.Author)
	c.Category = strings.TrimSpace(c.Category)
	c.Version = strings.TrimSpace(c.Version)
	c.Description = normalizeDescription(c.Description)

	if c.Version == "" {
		c.Version = DefaultVersion
	}

	missing := missingFields(map[string]string{
		"title":    c.Title,
		"author":   c.Author,
		"category": c.Category,
		"fileName": c.FileName,
	})
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	if c.FileSize < 0 {
		return fmt.Errorf("%w: fileSize must not be negative", ErrValidation)
	}

	return nil
}

// Metadata returns the upload metadata as a CreateCommand without file details.
func (c UploadCommand) Metadata() CreateCommand {
	return CreateCommand{
		Title:       c.Title,
		Description: c.Description,
		Author:      c.Author,
		Version:     c.Version,
		Category:    c.Category,
	}
}

// Apply writes the set fields onto m. m is untouched when validation fails.
func (c UpdateCommand) Apply(m *Mod) error {
	next := *m

	if c.Title != nil {
		next.Title = strings.TrimSpace(*c.Title)
	}
	if c.Author != nil {
		next.Author = strings.TrimSpace(*c.Author)
	}
	if c.Category != nil {
		next.Category = strings.TrimSpace(*c.Category)
	}
	if c.Version != nil {
		next.Version = strings.TrimSpace(*c.Version)
		if next.Version == "" {
			next.Version = DefaultVersion
		}
	}
	if c.Description != nil {
		next.Description = normalizeDescription(c.Description)
	}

	missing := missingFields(map[string]string{
		"title":    next.Title,
		"author":   next.Author,
		"category": next.Category,
	})
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s must not be blank", ErrValidation, strings.Join(missing, ", "))
	}

	*m = next
	return nil
}

func normalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func missingFields(fields map[string]string) []string {
	var missing []string
	for _, name := range []string{"title", "author", "category", "fileName"} {
		if v, ok := fields[name]; ok && v == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// countCategories tallies records per category. Known categories are always
// listed first in their declared order, followed by any others alphabetically.
func countCategories(records []Mod) []CategoryCount {
	counts := make(map[string]int)
	for _, m := range records {
		counts[m.Category]++
	}

	result := make([]CategoryCount, 0, len(KnownCategories))
	for _, c := range KnownCategories {
		result = append(result, CategoryCount{Category: c, Count: counts[c]})
		delete(counts, c)
	}

	extra := make([]string, 0, len(counts))
	for c := range counts {
		extra = append(extra, c)
	}
	slices.Sort(extra)

	for _, c := range extra {
		result = append(result, CategoryCount{Category: c, Count: counts[c]})
	}

	return result
}
