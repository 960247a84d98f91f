package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/events"
)

// WordAPI is the subset of the API client WordService needs.
type WordAPI interface {
	GetWord(ctx context.Context, word string) (domain.WordDetail, error)
	AddWordToList(ctx context.Context, username, word string) error
}

// WordService looks up words and adds them to a user's study list. Lookups are
// never cached; every call goes to the server.
type WordService struct {
	api     WordAPI
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewWordService creates a WordService. emitter may be nil.
func NewWordService(api WordAPI, emitter events.EventEmitter, logger *slog.Logger) *WordService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WordService{
		api:     api,
		emitter: emitter,
		logger:  logger.With("component", "word_service"),
	}
}

// Lookup fetches dictionary detail for word.
func (s *WordService) Lookup(ctx context.Context, word string) (domain.WordDetail, error) {
	detail, err := s.api.GetWord(ctx, word)
	if err != nil {
		return domain.WordDetail{}, fmt.Errorf("failed to look up %q: %w", word, err)
	}
	s.logger.Debug("looked up word", "word", detail.Word, "meanings", len(detail.Meanings))
	return detail, nil
}

// AddToList adds word to username's study list and emits WordAdded exactly
// once on success. A failing event handler does not fail the add.
func (s *WordService) AddToList(ctx context.Context, username, word string) error {
	if username == "" {
		return ErrNoUser
	}
	w, err := domain.NormalizeWord(word)
	if err != nil {
		return err
	}
	if err := s.api.AddWordToList(ctx, username, w); err != nil {
		return fmt.Errorf("failed to add %q: %w", w, err)
	}
	s.logger.Info("word added to list", "username", username, "word", w)

	if s.emitter == nil {
		return nil
	}
	event, err := events.NewEvent(events.WordAdded, username, events.WordAddedPayload{Word: w})
	if err != nil {
		s.logger.Error("failed to build event", "error", err)
		return nil
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("word added handler failed", "error", err, "word", w)
	}
	return nil
}
