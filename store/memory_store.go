package store

import (
	"context"
	"sync"
)

// MemoryStore keeps tables in process memory.
type MemoryStore struct {
	mutex  sync.Mutex
	tables map[string]Table
}

func NewMemoryStore(tables map[string]Table) *MemoryStore {
	s := &MemoryStore{
		tables: make(map[string]Table, len(tables)),
	}
	for name, table := range tables {
		s.tables[name] = table.Clone()
	}
	return s
}

func (s *MemoryStore) Load(ctx context.Context, name string) (Table, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	table, found := s.tables[name]
	if !found {
		return Table{}, notFound(name)
	}

	return table.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, name string, table Table) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tables[name] = table.Clone()

	return nil
}
