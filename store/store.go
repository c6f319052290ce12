package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a table does not exist
	ErrNotFound = errors.New("table not found")

	// ErrWrite is returned when a table cannot be persisted
	ErrWrite = errors.New("table write failed")
)

// Store loads and persists whole tables by name.
type Store interface {
	// Load returns every row of the named table in storage order.
	Load(ctx context.Context, name string) (Table, error)

	// Save replaces the contents of the named table.
	Save(ctx context.Context, name string, table Table) error
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

func writeFailed(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrWrite, name, err)
}
