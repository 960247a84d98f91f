package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/store"
)

// State is the session lifecycle state.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

var (
	// ErrNoSession is returned by Restore when nothing is persisted.
	ErrNoSession = errors.New("no saved session")

	// ErrSessionInvalid is returned by Restore when the server rejected the
	// persisted identity. The identity has been cleared.
	ErrSessionInvalid = errors.New("saved session is no longer valid")
)

// UserAPI is the subset of the API client the manager needs.
type UserAPI interface {
	GetUser(ctx context.Context, username string) (domain.Identity, error)
	CreateUser(ctx context.Context, username string) (domain.Identity, error)
	EndSession(ctx context.Context, username string) error
}

// Step names one half of the get-or-create login sequence.
type Step string

const (
	StepGetUser    Step = "get_user"
	StepCreateUser Step = "create_user"
)

// Attempt is the outcome of one login step. Err is nil on success.
type Attempt struct {
	Step Step
	Err  error
}

// LoginResult describes how a login resolved.
type LoginResult struct {
	Identity domain.Identity
	// Created is true when the user did not exist and was created.
	Created  bool
	Attempts []Attempt
}

// Manager is the session lifecycle manager. It is safe for concurrent use.
type Manager struct {
	api     UserAPI
	cache   *store.Cache
	emitter events.EventEmitter
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	current domain.Identity
}

// NewManager creates a Manager in the Unauthenticated state. emitter may be nil.
func NewManager(api UserAPI, cache *store.Cache, emitter events.EventEmitter, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		api:     api,
		cache:   cache,
		emitter: emitter,
		logger:  logger.With("component", "session_manager"),
	}
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns the authenticated identity, if any.
func (m *Manager) Current() (domain.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.state == Authenticated
}

// Restore validates the persisted identity against the server. With nothing
// persisted it returns ErrNoSession without any network call. Any failure to
// resolve the identity clears it from the store and leaves the manager
// Unauthenticated.
func (m *Manager) Restore(ctx context.Context) (domain.Identity, error) {
	cached, err := m.cache.CurrentUser(ctx)
	if errors.Is(err, store.ErrNotFound) {
		m.setUnauthenticated()
		return domain.Identity{}, ErrNoSession
	}
	if err != nil {
		m.logger.Warn("discarding unreadable saved session", "error", err)
		m.forget(ctx)
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}

	resolved, err := m.api.GetUser(ctx, cached.Username)
	if err != nil {
		m.logger.Info("saved session rejected by server",
			"username", cached.Username,
			"error", err)
		m.forget(ctx)
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}

	if err := m.cache.SetCurrentUser(ctx, resolved); err != nil {
		m.logger.Warn("failed to refresh saved session", "error", err, "username", resolved.Username)
	}
	m.setAuthenticated(resolved)
	m.emit(ctx, events.SessionStarted, resolved.Username)
	m.logger.Debug("session restored", "username", resolved.Username)
	return resolved, nil
}

// forget clears the persisted identity and drops to Unauthenticated.
func (m *Manager) forget(ctx context.Context) {
	if err := m.cache.ClearCurrentUser(ctx); err != nil {
		m.logger.Warn("failed to clear saved session", "error", err)
	}
	m.setUnauthenticated()
}

// Login resolves username on the server, creating it if the lookup fails.
// The client never creates unconditionally: an existing user is returned as
// is. Both steps are recorded in the result whatever the outcome.
func (m *Manager) Login(ctx context.Context, username string) (LoginResult, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return LoginResult{}, err
	}

	var result LoginResult
	id, err := m.api.GetUser(ctx, name)
	result.Attempts = append(result.Attempts, Attempt{Step: StepGetUser, Err: err})
	if err != nil {
		m.logger.Debug("user lookup failed, creating", "username", name, "error", err)

		id, err = m.api.CreateUser(ctx, name)
		result.Attempts = append(result.Attempts, Attempt{Step: StepCreateUser, Err: err})
		if err != nil {
			m.logger.Info("login failed", "username", name, "error", err)
			return result, fmt.Errorf("login as %q: %w", name, err)
		}
		result.Created = true
	}
	result.Identity = id

	if prev, ok := m.Current(); ok && prev.Username != id.Username {
		if err := m.cache.ClearDueWords(ctx); err != nil {
			m.logger.Warn("failed to clear previous user's due snapshot", "error", err)
		}
	}
	if err := m.cache.SetCurrentUser(ctx, id); err != nil {
		return result, fmt.Errorf("failed to save session: %w", err)
	}
	m.setAuthenticated(id)
	m.emit(ctx, events.SessionStarted, id.Username)

	m.logger.Info("logged in", "username", id.Username, "created", result.Created)
	return result, nil
}

// Logout ends the session. The server-side end-session call is best effort
// and only logged; the persisted identity and due snapshot are cleared and
// the manager is Unauthenticated afterwards regardless. The returned error
// reports only local store failures.
func (m *Manager) Logout(ctx context.Context) error {
	id, ok := m.Current()
	if !ok {
		if cached, err := m.cache.CurrentUser(ctx); err == nil {
			id, ok = cached, true
		}
	}

	if ok {
		if err := m.api.EndSession(ctx, id.Username); err != nil {
			m.logger.Info("server logout failed, continuing", "username", id.Username, "error", err)
		}
	}

	err := errors.Join(m.cache.ClearCurrentUser(ctx), m.cache.ClearDueWords(ctx))
	m.setUnauthenticated()
	if ok {
		m.emit(ctx, events.SessionEnded, id.Username)
	}
	if err != nil {
		m.logger.Error("failed to clear local session", "error", err)
		return fmt.Errorf("failed to clear local session: %w", err)
	}
	m.logger.Info("logged out", "username", id.Username)
	return nil
}

func (m *Manager) setAuthenticated(id domain.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Authenticated
	m.current = id
}

func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Unauthenticated
	m.current = domain.Identity{}
}

func (m *Manager) emit(ctx context.Context, t events.Type, username string) {
	if m.emitter == nil {
		return
	}
	event, err := events.NewEvent(t, username, nil)
	if err != nil {
		m.logger.Error("failed to build event", "error", err, "event_type", t)
		return
	}
	if err := m.emitter.EmitEvent(ctx, event); err != nil {
		m.logger.Warn("event handler failed", "error", err, "event_type", t)
	}
}
