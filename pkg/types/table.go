package types

import (
	"context"
	"errors"
)

// Query selects rows from a table: filter state, an optional advanced
// expression, and a zero-based page window.
type Query struct {
	Filters map[string]string `json:"filters,omitempty"`
	Where   string            `json:"where,omitempty"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// Page is one window of a filtered table. Total is the length of the whole
// filtered sequence, not of Data.
type Page struct {
	Data    []any `json:"data" msgpack:"data"`
	Total   int   `json:"total" msgpack:"total"`
	Page    int   `json:"page" msgpack:"page"`
	PerPage int   `json:"per_page" msgpack:"per_page"`
}

// Table provides uniform CRUD operations for a single entity type.
// Get, Create and the rows in Page.Data are pointers to the concrete entity
// struct; callers type-assert when they need fields.
type Table interface {
	// Name returns the standard table name.
	Name() string

	// Fetch returns the active rows matching q, filtered, sorted where the
	// table defines a sort order, and paginated.
	Fetch(ctx context.Context, q Query) (Page, error)

	// FetchRecycled is Fetch over the recycle bin.
	FetchRecycled(ctx context.Context, q Query) (Page, error)

	// Get retrieves the row with the given ID, recycled or not.
	// Returns ErrNotFound if no row exists with that ID.
	Get(ctx context.Context, id string) (any, error)

	// Create decodes payload into a new row, assigns its ID and number,
	// validates it, and stores it. Client-supplied IDs, numbers and
	// timestamps are ignored.
	Create(ctx context.Context, payload map[string]any) (any, error)

	// Update merges patch into the row with the given ID. Only the keys
	// present in patch change.
	Update(ctx context.Context, id string, patch map[string]any) error

	// Delete permanently removes the row with the given ID.
	Delete(ctx context.Context, id string) error

	// BatchDelete permanently removes every listed row. Unknown IDs are
	// skipped.
	BatchDelete(ctx context.Context, ids []string) error

	// Recycle moves active rows to the recycle bin.
	Recycle(ctx context.Context, ids []string) error

	// Restore moves recycled rows back to the active set.
	Restore(ctx context.Context, ids []string) error

	// Purge permanently removes recycled rows. Active rows are left alone.
	Purge(ctx context.Context, ids []string) error

	// Filters returns the filter keys Fetch understands, range fields
	// expanded to their _from/_to pair.
	Filters() []string

	// Count returns the number of active rows.
	Count(ctx context.Context) (int, error)
}

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter")
	ErrInvalidStatus = errors.New("invalid status value")
)
