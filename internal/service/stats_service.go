package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/events"
)

// StatsAPI is the subset of the API client RefreshCoordinator needs.
type StatsAPI interface {
	GetUserStats(ctx context.Context, username string) (domain.Stats, error)
}

// RefreshCoordinator holds the latest Stats for the current user.
//
// Every refresh takes a sequence number when it is issued. A response is
// applied only if no later-issued refresh has been applied already, so a slow
// early response can never overwrite a newer one. Refreshes may overlap.
type RefreshCoordinator struct {
	api    StatsAPI
	logger *slog.Logger

	mu       sync.Mutex
	issued   uint64
	applied  uint64
	username string
	stats    domain.Stats
	have     bool
}

var _ events.EventHandler = (*RefreshCoordinator)(nil)

// NewRefreshCoordinator creates a coordinator with no stats.
func NewRefreshCoordinator(api StatsAPI, logger *slog.Logger) *RefreshCoordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshCoordinator{
		api:    api,
		logger: logger.With("component", "refresh_coordinator"),
	}
}

// Refresh fetches stats for username. It returns the stats the coordinator
// holds once the fetch is settled, which are the fetched ones unless a later
// refresh already landed. Refreshing a different user than the one held drops
// the held stats first.
func (c *RefreshCoordinator) Refresh(ctx context.Context, username string) (domain.Stats, error) {
	if username == "" {
		return domain.Stats{}, ErrNoUser
	}

	c.mu.Lock()
	if username != c.username {
		c.username = username
		c.stats = domain.Stats{}
		c.have = false
		c.applied = c.issued
	}
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	stats, err := c.api.GetUserStats(ctx, username)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		return c.stats, fmt.Errorf("failed to refresh stats: %w", err)
	}
	if seq <= c.applied || username != c.username {
		c.logger.Debug("discarding stale stats", "seq", seq, "applied", c.applied)
		return c.stats, nil
	}
	c.applied = seq
	c.stats = stats
	c.have = true
	return c.stats, nil
}

// Stats returns the held stats and whether any have been fetched.
func (c *RefreshCoordinator) Stats() (domain.Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats, c.have
}

// Reset drops the held stats. Refreshes already in flight are discarded.
func (c *RefreshCoordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username = ""
	c.stats = domain.Stats{}
	c.have = false
	c.applied = c.issued
}

// HandleEvent refreshes on session start, word add and review completion, and
// resets on session end. A failed background refresh is logged, not returned.
func (c *RefreshCoordinator) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.Type {
	case events.SessionEnded:
		c.Reset()
	case events.SessionStarted, events.WordAdded, events.ReviewCompleted:
		if _, err := c.Refresh(ctx, event.Username); err != nil {
			c.logger.Warn("background stats refresh failed",
				"error", err,
				"event_type", event.Type,
				"username", event.Username)
		}
	}
	return nil
}
