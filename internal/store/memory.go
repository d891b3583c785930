package store

import "sync"

// MemoryStore is a map-backed Store used in tests and as an ephemeral
// backing store. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[Table]map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	tables := make(map[Table]map[string][]byte, len(Tables))
	for _, table := range Tables {
		tables[table] = make(map[string][]byte)
	}
	return &MemoryStore{tables: tables}
}

// Get returns the value stored under key in table, or ErrNotFound.
func (s *MemoryStore) Get(table Table, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.tables[table][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), val...), nil
}

// Put stores value under key in table, overwriting any prior value.
func (s *MemoryStore) Put(table Table, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tables[table] == nil {
		s.tables[table] = make(map[string][]byte)
	}
	s.tables[table][key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key from table.
func (s *MemoryStore) Delete(table Table, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables[table], key)
	return nil
}

// ForEach calls fn for every key/value pair in table.
func (s *MemoryStore) ForEach(table Table, fn func(key string, value []byte) error) error {
	s.mu.RLock()
	snapshot := make(map[string][]byte, len(s.tables[table]))
	for k, v := range s.tables[table] {
		snapshot[k] = v
	}
	s.mu.RUnlock()

	for k, v := range snapshot {
		if err := fn(k, append([]byte(nil), v...)); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
