package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

type FileStoreOption func(*FileStore)

// WithLogger sets the logger used for load and save records.
func WithLogger(logger *slog.Logger) FileStoreOption {
	return func(s *FileStore) {
		s.logger = logger
	}
}

// FileStore keeps each table as one encoded object named after the table.
type FileStore struct {
	driver Driver
	codec  Codec
	logger *slog.Logger
}

// NewFileStore creates a store reading and writing objects through driver,
// encoded with codec.
func NewFileStore(driver Driver, codec Codec, options ...FileStoreOption) *FileStore {
	s := &FileStore{
		driver: driver,
		codec:  codec,
		logger: slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// ObjectPath returns the object that holds the named table.
func (s *FileStore) ObjectPath(name string) string {
	if strings.HasSuffix(name, s.codec.Extension()) {
		return name
	}
	return name + s.codec.Extension()
}

func (s *FileStore) Load(ctx context.Context, name string) (Table, error) {
	objectPath := s.ObjectPath(name)

	body, err := s.driver.Get(ctx, objectPath)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Table{}, notFound(name)
		}
		return Table{}, fmt.Errorf("failed to read table %s: %w", name, err)
	}
	defer func() { _ = body.Close() }()

	table, err := s.codec.Decode(body)
	if err != nil {
		return Table{}, fmt.Errorf("failed to decode table %s: %w", name, err)
	}

	s.logger.DebugContext(ctx, "table loaded",
		slog.String("table", name),
		slog.String("object", objectPath),
		slog.Int("rows", len(table.Rows)),
	)

	return table, nil
}

func (s *FileStore) Save(ctx context.Context, name string, table Table) error {
	objectPath := s.ObjectPath(name)

	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, table); err != nil {
		return writeFailed(name, err)
	}

	if err := s.driver.Put(ctx, objectPath, &buf); err != nil {
		return writeFailed(name, err)
	}

	s.logger.DebugContext(ctx, "table saved",
		slog.String("table", name),
		slog.String("object", objectPath),
		slog.Int("rows", len(table.Rows)),
	)

	return nil
}
