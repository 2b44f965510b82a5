package storage

import (
	"context"

	"github.com/poiesic/tickerdex/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the repository and releases resources.
	Close() error
}

// CatalogReader is the query surface the search core consumes.
// Every method returns at most limit rows ordered by case-folded symbol, then ID.
type CatalogReader interface {
	// ExactMatch returns rows whose symbol OR name equals query, case-insensitively.
	ExactMatch(ctx context.Context, query string, limit int) ([]*core.Security, error)

	// PartialMatch returns rows whose symbol OR name contains query, case-insensitively.
	PartialMatch(ctx context.Context, query string, limit int) ([]*core.Security, error)

	// FilteredMatch returns rows satisfying every predicate of filter.
	// Returns ErrInvalidQuery for an empty filter.
	FilteredMatch(ctx context.Context, filter Filter, limit int) ([]*core.Security, error)
}

// CatalogRepository provides operations for managing securities.
type CatalogRepository interface {
	Repository
	CatalogReader

	// AddSecurities inserts or replaces securities.
	// IDs are derived from content when zero, so re-adding a listing replaces it.
	// Sets InsertedAt on first insert and UpdatedAt on every write.
	// Returns the securities with IDs and timestamps populated.
	AddSecurities(ctx context.Context, securities ...*core.Security) ([]*core.Security, error)

	// DeleteSecurities removes securities by their IDs, including index entries.
	// Returns ErrNotFound if any security doesn't exist.
	DeleteSecurities(ctx context.Context, ids ...core.ID) error

	// GetSecurity retrieves a single security by ID.
	// Returns ErrNotFound if the security doesn't exist.
	GetSecurity(ctx context.Context, id core.ID) (*core.Security, error)

	// GetSecurities retrieves multiple securities by their IDs.
	// Returns only the securities that exist (no error for missing ones).
	GetSecurities(ctx context.Context, ids ...core.ID) ([]*core.Security, error)

	// CountSecurities returns the number of securities in the catalog.
	CountSecurities(ctx context.Context) (int, error)

	// ListSecurities pages through stored records in storage order, returning
	// at most limit securities that follow the record with ID after.
	// Pass 0 to start from the beginning. An empty page means the end.
	ListSecurities(ctx context.Context, after core.ID, limit int) ([]*core.Security, error)
}

// ReferenceRepository provides lookups over the read-mostly reference tables.
type ReferenceRepository interface {
	Repository

	// PutReferences inserts or replaces reference entries.
	// IDs are derived from kind and code.
	PutReferences(ctx context.Context, entries ...*core.ReferenceEntry) ([]*core.ReferenceEntry, error)

	// GetReference finds an entry by kind and code (case-insensitive).
	// Returns ErrNotFound if no entry exists.
	GetReference(ctx context.Context, kind core.ReferenceKind, code string) (*core.ReferenceEntry, error)

	// GetReferenceByID finds an entry by ID.
	// Returns ErrNotFound if no entry exists.
	GetReferenceByID(ctx context.Context, id core.ID) (*core.ReferenceEntry, error)

	// ListReferences returns all entries of a kind ordered by code.
	ListReferences(ctx context.Context, kind core.ReferenceKind) ([]*core.ReferenceEntry, error)
}

// CheckpointRepository persists ingestion progress.
type CheckpointRepository interface {
	// SaveCheckpoint persists the checkpoint for its source.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a source.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, source string) (*core.Checkpoint, error)
}
