package mocks

import (
	"context"

	"github.com/phrazzld/scry-words/internal/store"
)

// FailingStore wraps a store.Store and fails the operations whose error
// field is set.
type FailingStore struct {
	store.Store

	SetErr   error
	GetErr   error
	ClearErr error
}

// Set implements store.Store
func (s *FailingStore) Set(ctx context.Context, key store.Key, value any) error {
	if s.SetErr != nil {
		return store.NewStoreError(key, "set", s.SetErr)
	}
	return s.Store.Set(ctx, key, value)
}

// Get implements store.Store
func (s *FailingStore) Get(ctx context.Context, key store.Key, dst any) error {
	if s.GetErr != nil {
		return store.NewStoreError(key, "get", s.GetErr)
	}
	return s.Store.Get(ctx, key, dst)
}

// Clear implements store.Store
func (s *FailingStore) Clear(ctx context.Context, key store.Key) error {
	if s.ClearErr != nil {
		return store.NewStoreError(key, "clear", s.ClearErr)
	}
	return s.Store.Clear(ctx, key)
}
