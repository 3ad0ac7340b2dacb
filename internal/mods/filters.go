package mods

import (
	"net/url"
	"strings"

	"github.com/JaimeStill/mod-depot/pkg/query"
)

// CategoryAll is accepted as a category filter meaning no filter.
const CategoryAll = "all"

// Filters contains optional criteria for listing records.
type Filters struct {
	// Search matches title, author, or description, case-insensitively.
	Search   *string
	Category *string
}

// FiltersFromQuery extracts filters from the search and category query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := strings.TrimSpace(values.Get("search")); s != "" {
		f.Search = &s
	}

	if c := strings.TrimSpace(values.Get("category")); c != "" && c != CategoryAll {
		f.Category = &c
	}

	return f
}

// Matches reports whether m satisfies every set filter.
func (f Filters) Matches(m Mod) bool {
	if f.Category != nil && m.Category != *f.Category {
		return false
	}

	if f.Search != nil {
		needle := strings.ToLower(*f.Search)
		haystack := []string{m.Title, m.Author}
		if m.Description != nil {
			haystack = append(haystack, *m.Description)
		}

		for _, h := range haystack {
			if strings.Contains(strings.ToLower(h), needle) {
				return true
			}
		}
		return false
	}

	return true
}

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereSearch(f.Search, "Title", "Author", "Description").
		WhereEquals("Category", f.Category)
}
