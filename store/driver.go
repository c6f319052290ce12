package store

import (
	"context"
	"io"
)

// Driver gives access to the objects that hold encoded tables.
//
// Get must return an error matching ErrNotFound when the object does not
// exist.
type Driver interface {
	Get(ctx context.Context, objectPath string) (io.ReadCloser, error)
	Put(ctx context.Context, objectPath string, payload io.Reader) error
	Delete(ctx context.Context, objectPath string) error
	Exists(ctx context.Context, objectPath string) (bool, error)
	IsReady(ctx context.Context) error
}
