package store

import (
	"context"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps encoded values in process memory. It is used when
// persistence is disabled and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[Key][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Key][]byte)}
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key Key, value any) error {
	data, err := Encode(key, value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = data
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key Key, dst any) error {
	s.mu.RLock()
	data, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return NewStoreError(key, "get", ErrNotFound)
	}
	return Decode(key, data, dst)
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
