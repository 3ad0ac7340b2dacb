package mods

import "context"

// Repository persists mod records. Implementations never touch blobs.
type Repository interface {
	// List returns matching records, newest first.
	List(ctx context.Context, filters Filters) ([]Mod, error)

	// Find returns ErrNotFound when id is unknown.
	Find(ctx context.Context, id string) (*Mod, error)

	// Create validates cmd, assigns an id and timestamps, and stores the record.
	// The collection is unchanged when validation fails.
	Create(ctx context.Context, cmd CreateCommand) (*Mod, error)

	// Update applies the set fields of cmd and refreshes updatedAt.
	Update(ctx context.Context, id string, cmd UpdateCommand) (*Mod, error)

	// Delete removes the record and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// IncrementDownloads adds one to the download count and reports whether
	// the record existed. Unknown ids are not an error.
	IncrementDownloads(ctx context.Context, id string) (bool, error)
}
