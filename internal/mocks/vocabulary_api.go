package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-words/internal/domain"
)

// MockVocabularyAPI implements every consumer-side interface over the API
// client (session.UserAPI, service.WordAPI, service.StatsAPI, review.API).
// Unset functions return the zero value and DefaultError. Calls are counted
// per method name.
type MockVocabularyAPI struct {
	GetUserFn          func(ctx context.Context, username string) (domain.Identity, error)
	CreateUserFn       func(ctx context.Context, username string) (domain.Identity, error)
	EndSessionFn       func(ctx context.Context, username string) error
	GetUserStatsFn     func(ctx context.Context, username string) (domain.Stats, error)
	GetWordFn          func(ctx context.Context, word string) (domain.WordDetail, error)
	AddWordToListFn    func(ctx context.Context, username, word string) error
	GetDueWordsFn      func(ctx context.Context, username string) ([]domain.DueItem, error)
	SubmitReviewFn     func(ctx context.Context, username, word string, grade domain.Grade) error
	GetReviewHistoryFn func(ctx context.Context, username, word string) ([]domain.ReviewRecord, error)
	GetUserWordsFn     func(ctx context.Context, username string, status domain.WordStatus) ([]domain.UserWord, error)

	DefaultError error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockVocabularyAPI) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

// Calls returns how many times method name was called.
func (m *MockVocabularyAPI) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// GetUser implements the API client method
func (m *MockVocabularyAPI) GetUser(ctx context.Context, username string) (domain.Identity, error) {
	m.record("GetUser")
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, username)
	}
	return domain.Identity{}, m.DefaultError
}

// CreateUser implements the API client method
func (m *MockVocabularyAPI) CreateUser(ctx context.Context, username string) (domain.Identity, error) {
	m.record("CreateUser")
	if m.CreateUserFn != nil {
		return m.CreateUserFn(ctx, username)
	}
	return domain.Identity{}, m.DefaultError
}

// EndSession implements the API client method
func (m *MockVocabularyAPI) EndSession(ctx context.Context, username string) error {
	m.record("EndSession")
	if m.EndSessionFn != nil {
		return m.EndSessionFn(ctx, username)
	}
	return m.DefaultError
}

// GetUserStats implements the API client method
func (m *MockVocabularyAPI) GetUserStats(ctx context.Context, username string) (domain.Stats, error) {
	m.record("GetUserStats")
	if m.GetUserStatsFn != nil {
		return m.GetUserStatsFn(ctx, username)
	}
	return domain.Stats{}, m.DefaultError
}

// GetWord implements the API client method
func (m *MockVocabularyAPI) GetWord(ctx context.Context, word string) (domain.WordDetail, error) {
	m.record("GetWord")
	if m.GetWordFn != nil {
		return m.GetWordFn(ctx, word)
	}
	return domain.WordDetail{}, m.DefaultError
}

// AddWordToList implements the API client method
func (m *MockVocabularyAPI) AddWordToList(ctx context.Context, username, word string) error {
	m.record("AddWordToList")
	if m.AddWordToListFn != nil {
		return m.AddWordToListFn(ctx, username, word)
	}
	return m.DefaultError
}

// GetDueWords implements the API client method
func (m *MockVocabularyAPI) GetDueWords(ctx context.Context, username string) ([]domain.DueItem, error) {
	m.record("GetDueWords")
	if m.GetDueWordsFn != nil {
		return m.GetDueWordsFn(ctx, username)
	}
	return nil, m.DefaultError
}

// SubmitReview implements the API client method
func (m *MockVocabularyAPI) SubmitReview(ctx context.Context, username, word string, grade domain.Grade) error {
	m.record("SubmitReview")
	if m.SubmitReviewFn != nil {
		return m.SubmitReviewFn(ctx, username, word, grade)
	}
	return m.DefaultError
}

// GetReviewHistory implements the API client method
func (m *MockVocabularyAPI) GetReviewHistory(ctx context.Context, username, word string) ([]domain.ReviewRecord, error) {
	m.record("GetReviewHistory")
	if m.GetReviewHistoryFn != nil {
		return m.GetReviewHistoryFn(ctx, username, word)
	}
	return nil, m.DefaultError
}

// GetUserWords implements the API client method
func (m *MockVocabularyAPI) GetUserWords(ctx context.Context, username string, status domain.WordStatus) ([]domain.UserWord, error) {
	m.record("GetUserWords")
	if m.GetUserWordsFn != nil {
		return m.GetUserWordsFn(ctx, username, status)
	}
	return nil, m.DefaultError
}
