package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/store"
)

// API is the subset of the API client the engine needs.
type API interface {
	GetDueWords(ctx context.Context, username string) ([]domain.DueItem, error)
	GetWord(ctx context.Context, word string) (domain.WordDetail, error)
	SubmitReview(ctx context.Context, username, word string, grade domain.Grade) error
}

// View is a snapshot of the engine for rendering.
type View struct {
	State State
	// Cursor is the 0-based position of the current card; equal to Total
	// once Completed.
	Cursor int
	Total  int
	// Word is the current card, empty outside Presenting/Revealing/Submitting.
	Word string
	// Detail is only set in Revealing; the definition stays hidden while
	// Presenting.
	Detail *domain.WordDetail
	// DetailErr is the error of the last detail fetch for the current card.
	DetailErr error
	// Grade is the grade being submitted, valid in Submitting.
	Grade domain.Grade
	// Reviewed counts grades accepted by the server in this pass.
	Reviewed int
	// Err is the last failure: the due fetch in Failed, the submission
	// after a rejected grade.
	Err error
}

// Engine runs review passes for one user at a time. It is safe for
// concurrent use; actions are serialized and rejected with ErrBusy while a
// request is in flight.
type Engine struct {
	api     API
	cache   *store.Cache
	emitter events.EventEmitter
	logger  *slog.Logger

	mu        sync.Mutex
	inflight  bool
	state     State
	username  string
	queue     []domain.DueItem
	total     int
	cursor    int
	detail    *domain.WordDetail
	detailErr error
	grade     domain.Grade
	reviewed  int
	err       error
}

// NewEngine creates an Idle engine. cache and emitter may be nil.
func NewEngine(api API, cache *store.Cache, emitter events.EventEmitter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		api:     api,
		cache:   cache,
		emitter: emitter,
		logger:  logger.With("component", "review_engine"),
	}
}

// View returns the current snapshot.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Engine) viewLocked() View {
	v := View{
		State:     e.state,
		Cursor:    e.cursor,
		Total:     e.total,
		Reviewed:  e.reviewed,
		Err:       e.err,
		DetailErr: e.detailErr,
	}
	switch e.state {
	case Presenting, Revealing, Submitting:
		v.Word = e.queue[e.cursor].Word
	}
	if e.state == Revealing && e.detail != nil {
		d := *e.detail
		v.Detail = &d
	}
	if e.state == Submitting {
		v.Grade = e.grade
	}
	return v
}

// begin claims the engine for an action allowed in one of states.
func (e *Engine) begin(action string, states ...State) error {
	if e.inflight {
		return ErrBusy
	}
	for _, s := range states {
		if e.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, e.state)
}

// Start begins a pass for username: the due queue is fetched once and the
// first card's detail is loaded. It is legal only when no pass is active.
func (e *Engine) Start(ctx context.Context, username string) (View, error) {
	e.mu.Lock()
	if err := e.begin("start", Idle, Empty, Failed, Completed); err != nil {
		defer e.mu.Unlock()
		return e.viewLocked(), err
	}
	e.reset()
	e.username = username
	e.state = Loading
	e.inflight = true
	e.mu.Unlock()

	due, err := e.api.GetDueWords(ctx, username)
	if err != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.inflight = false
		e.state = Failed
		e.err = err
		e.logger.Error("failed to load due words", "username", username, "error", err)
		return e.viewLocked(), fmt.Errorf("failed to load due words: %w", err)
	}
	e.snapshot(ctx, due)

	if len(due) == 0 {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.inflight = false
		e.state = Empty
		e.logger.Debug("no words due", "username", username)
		return e.viewLocked(), nil
	}

	detail, detailErr := e.fetchDetail(ctx, due[0].Word)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inflight = false
	e.queue = append([]domain.DueItem(nil), due...)
	e.total = len(due)
	e.cursor = 0
	e.setDetail(detail, detailErr)
	e.state = Presenting
	e.logger.Debug("review pass started", "username", username, "due", e.total)
	return e.viewLocked(), nil
}

// Reveal shows the current card's detail.
func (e *Engine) Reveal() (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.begin("reveal", Presenting); err != nil {
		return e.viewLocked(), err
	}
	e.state = Revealing
	return e.viewLocked(), nil
}

// Submit sends grade for the current card. On success the engine moves to
// the next card, or to Completed after the last one. On failure it stays on
// the card in Revealing so the grade can be retried.
func (e *Engine) Submit(ctx context.Context, grade domain.Grade) (View, error) {
	e.mu.Lock()
	if err := e.begin("submit", Revealing); err != nil {
		defer e.mu.Unlock()
		return e.viewLocked(), err
	}
	if !grade.IsValid() {
		defer e.mu.Unlock()
		return e.viewLocked(), fmt.Errorf("%w: %w: got %d", domain.ErrValidation, domain.ErrInvalidGrade, int(grade))
	}
	word := e.queue[e.cursor].Word
	username := e.username
	e.state = Submitting
	e.grade = grade
	e.inflight = true
	e.mu.Unlock()

	if err := e.api.SubmitReview(ctx, username, word, grade); err != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.inflight = false
		e.state = Revealing
		e.err = err
		e.logger.Error("failed to submit review",
			"username", username,
			"word", word,
			"grade", int(grade),
			"error", err)
		return e.viewLocked(), fmt.Errorf("failed to submit review for %q: %w", word, err)
	}

	e.mu.Lock()
	e.reviewed++
	e.err = nil
	next := e.cursor + 1
	if next == e.total {
		e.inflight = false
		e.state = Completed
		e.cursor = next
		e.queue = nil
		e.detail, e.detailErr = nil, nil
		reviewed := e.reviewed
		v := e.viewLocked()
		e.mu.Unlock()

		e.logger.Info("review pass completed", "username", username, "reviewed", reviewed)
		e.snapshot(ctx, []domain.DueItem{})
		e.emitCompleted(ctx, username, reviewed)
		return v, nil
	}
	nextWord := e.queue[next].Word
	e.mu.Unlock()

	detail, detailErr := e.fetchDetail(ctx, nextWord)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inflight = false
	e.cursor = next
	e.setDetail(detail, detailErr)
	e.state = Presenting
	return e.viewLocked(), nil
}

// ReloadDetail re-fetches the current card's detail, typically after a
// failed fetch left DetailErr set.
func (e *Engine) ReloadDetail(ctx context.Context) (View, error) {
	e.mu.Lock()
	if err := e.begin("reload detail", Presenting, Revealing); err != nil {
		defer e.mu.Unlock()
		return e.viewLocked(), err
	}
	word := e.queue[e.cursor].Word
	e.inflight = true
	e.mu.Unlock()

	detail, detailErr := e.fetchDetail(ctx, word)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inflight = false
	e.setDetail(detail, detailErr)
	if detailErr != nil {
		return e.viewLocked(), fmt.Errorf("failed to load %q: %w", word, detailErr)
	}
	return e.viewLocked(), nil
}

// Reset abandons the current pass and returns to Idle.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight {
		return ErrBusy
	}
	e.reset()
	e.state = Idle
	return nil
}

func (e *Engine) reset() {
	e.username = ""
	e.queue = nil
	e.total = 0
	e.cursor = 0
	e.detail = nil
	e.detailErr = nil
	e.grade = 0
	e.reviewed = 0
	e.err = nil
}

func (e *Engine) setDetail(detail domain.WordDetail, err error) {
	if err != nil {
		e.detail = nil
		e.detailErr = err
		return
	}
	e.detail = &detail
	e.detailErr = nil
}

// fetchDetail loads a card's detail. A failure does not block the pass.
func (e *Engine) fetchDetail(ctx context.Context, word string) (domain.WordDetail, error) {
	detail, err := e.api.GetWord(ctx, word)
	if err != nil {
		e.logger.Warn("failed to load word detail", "word", word, "error", err)
		return domain.WordDetail{}, err
	}
	return detail, nil
}

// snapshot writes the due queue through to the local cache.
func (e *Engine) snapshot(ctx context.Context, due []domain.DueItem) {
	if e.cache == nil {
		return
	}
	if err := e.cache.CacheDueWords(ctx, due); err != nil {
		e.logger.Warn("failed to cache due words", "error", err)
	}
}

func (e *Engine) emitCompleted(ctx context.Context, username string, reviewed int) {
	if e.emitter == nil {
		return
	}
	event, err := events.NewEvent(events.ReviewCompleted, username, events.ReviewCompletedPayload{Reviewed: reviewed})
	if err != nil {
		e.logger.Error("failed to build event", "error", err)
		return
	}
	if err := e.emitter.EmitEvent(ctx, event); err != nil {
		e.logger.Warn("review completed handler failed", "error", err)
	}
}
