package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
)

// Cache gives typed access to the three persisted slots on top of a Store.
type Cache struct {
	store Store
	now   func() time.Time
}

// NewCache wraps s.
func NewCache(s Store) *Cache {
	return &Cache{store: s, now: time.Now}
}

// SetCurrentUser persists the identity the client is logged in as.
func (c *Cache) SetCurrentUser(ctx context.Context, id domain.Identity) error {
	return c.store.Set(ctx, KeyCurrentUser, id)
}

// CurrentUser returns the persisted identity, or ErrNotFound.
func (c *Cache) CurrentUser(ctx context.Context) (domain.Identity, error) {
	var id domain.Identity
	if err := c.store.Get(ctx, KeyCurrentUser, &id); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

// ClearCurrentUser removes the persisted identity.
func (c *Cache) ClearCurrentUser(ctx context.Context) error {
	return c.store.Clear(ctx, KeyCurrentUser)
}

// CacheDueWords stores a snapshot of the due queue and stamps the sync time.
func (c *Cache) CacheDueWords(ctx context.Context, words []domain.DueItem) error {
	if words == nil {
		words = []domain.DueItem{}
	}
	stamp := c.now().UTC().Format(time.RFC3339Nano)
	if b, ok := c.store.(Batcher); ok {
		return b.SetBatch(ctx, map[Key]any{KeyDueWordsCache: words, KeyLastSync: stamp})
	}
	if err := c.store.Set(ctx, KeyDueWordsCache, words); err != nil {
		return err
	}
	return c.store.Set(ctx, KeyLastSync, stamp)
}

// CachedDueWords returns the last due snapshot, or ErrNotFound.
func (c *Cache) CachedDueWords(ctx context.Context) (domain.CacheSnapshot, error) {
	var words []domain.DueItem
	if err := c.store.Get(ctx, KeyDueWordsCache, &words); err != nil {
		return domain.CacheSnapshot{}, err
	}
	synced, err := c.LastSync(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return domain.CacheSnapshot{}, err
	}
	return domain.CacheSnapshot{Words: words, SyncedAt: synced}, nil
}

// LastSync returns when the due snapshot was last written, or ErrNotFound.
func (c *Cache) LastSync(ctx context.Context) (time.Time, error) {
	var raw string
	if err := c.store.Get(ctx, KeyLastSync, &raw); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, NewStoreError(KeyLastSync, "get", fmt.Errorf("%w: %w", ErrInvalidValue, err))
	}
	return t, nil
}

// ClearDueWords removes the due snapshot and its sync time.
func (c *Cache) ClearDueWords(ctx context.Context) error {
	return errors.Join(
		c.store.Clear(ctx, KeyDueWordsCache),
		c.store.Clear(ctx, KeyLastSync),
	)
}
