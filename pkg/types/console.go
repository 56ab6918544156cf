package types

import "errors"

// Console is the attached set of admin tables over one storage backend.
// Callers attach with a Config, access tables by name, and detach when done.
type Console interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// TableNames lists the registered tables in alphabetical order.
	TableNames() []string

	// Attach opens the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	// After Detach, GetTable returns ErrConsoleDetached.
	Detach() error
}

// Console lifecycle errors.
var (
	ErrConsoleDetached = errors.New("console is detached")
	ErrAlreadyAttached = errors.New("console is already attached")
	ErrTableNotFound   = errors.New("table not found")
)
