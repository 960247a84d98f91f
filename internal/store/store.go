package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Key names one of the logical slots the client persists.
type Key string

// The three persisted slots. Values are stable across releases because they
// name rows in existing databases.
const (
	KeyCurrentUser   Key = "words_current_user"
	KeyDueWordsCache Key = "words_due_cache"
	KeyLastSync      Key = "words_last_sync"
)

// Valid reports whether k is one of the known keys.
func (k Key) Valid() bool {
	switch k {
	case KeyCurrentUser, KeyDueWordsCache, KeyLastSync:
		return true
	}
	return false
}

// Store is a durable key/value store for structured values. Implementations
// serialize values losslessly: Get after Set reproduces the value, and Get
// returns ErrNotFound for keys never set or cleared. There is no expiry;
// staleness decisions belong to callers.
type Store interface {
	// Set encodes value and stores it under key, replacing any previous value.
	Set(ctx context.Context, key Key, value any) error

	// Get decodes the value stored under key into dst, which must be a pointer.
	Get(ctx context.Context, key Key, dst any) error

	// Clear removes the value under key. Clearing an absent key is not an error.
	Clear(ctx context.Context, key Key) error
}

// Batcher is implemented by stores that can write several keys atomically.
type Batcher interface {
	SetBatch(ctx context.Context, values map[Key]any) error
}

// Encode serializes a value the way every Store implementation stores it.
func Encode(key Key, value any) ([]byte, error) {
	if !key.Valid() {
		return nil, NewStoreError(key, "set", ErrUnknownKey)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, NewStoreError(key, "set", fmt.Errorf("%w: %w", ErrInvalidValue, err))
	}
	return data, nil
}

// Decode deserializes data produced by Encode into dst.
func Decode(key Key, data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return NewStoreError(key, "get", fmt.Errorf("%w: %w", ErrInvalidValue, err))
	}
	return nil
}

// KeyedMutex serializes writers per key. The zero value is ready to use.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[Key]*sync.Mutex
}

// Lock acquires the lock for key and returns its release function.
func (m *KeyedMutex) Lock(key Key) func() {
	m.mu.Lock()
	if m.locks == nil {
		m.locks = make(map[Key]*sync.Mutex)
	}
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}
