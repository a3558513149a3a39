// Package store persists task rows in a single relational table and turns
// that table into live update streams.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no row has the requested id.
var ErrNotFound = errors.New("not found")

// Row is one record of the tasks table.
type Row struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Completed   bool   `json:"completed" yaml:"completed"`
}

// Store is the contract for task row persistence.
type Store interface {
	// All returns every row ordered by id.
	All(ctx context.Context) ([]Row, error)

	// Get returns the row with id, or an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (*Row, error)

	// Upsert inserts r, replacing any existing row with the same id.
	Upsert(ctx context.Context, r Row) error

	// Update changes the title and description of an existing row. It fails
	// with an error wrapping ErrNotFound, writing nothing, when id is unknown.
	Update(ctx context.Context, id, title, description string) error

	// SetCompleted updates the completion flag. Unknown ids are a no-op.
	SetCompleted(ctx context.Context, id string, completed bool) error

	// Delete removes one row and reports how many were removed.
	Delete(ctx context.Context, id string) (int, error)

	// DeleteAll removes every row.
	DeleteAll(ctx context.Context) error

	// DeleteCompleted removes completed rows and reports how many were removed.
	DeleteCompleted(ctx context.Context) (int, error)

	// EnsureTable creates the tasks table if it doesn't exist.
	EnsureTable(ctx context.Context) error
}
