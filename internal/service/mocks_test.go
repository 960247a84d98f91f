package service

import (
	"context"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockStatsAPI mocks the StatsAPI interface
type MockStatsAPI struct {
	mock.Mock
}

func (m *MockStatsAPI) GetUserStats(ctx context.Context, username string) (domain.Stats, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(domain.Stats), args.Error(1)
}

// MockWordAPI mocks the WordAPI interface
type MockWordAPI struct {
	mock.Mock
}

func (m *MockWordAPI) GetWord(ctx context.Context, word string) (domain.WordDetail, error) {
	args := m.Called(ctx, word)
	return args.Get(0).(domain.WordDetail), args.Error(1)
}

func (m *MockWordAPI) AddWordToList(ctx context.Context, username, word string) error {
	args := m.Called(ctx, username, word)
	return args.Error(0)
}
