// Package mocks provides hand-written mocks shared across test packages.
//
// Each mock exposes a function field per method. Leaving a field nil falls
// back to a default result, so tests only set what they care about:
//
//	api := &mocks.MockVocabularyAPI{
//	    GetDueWordsFn: func(ctx context.Context, username string) ([]domain.DueItem, error) {
//	        return []domain.DueItem{{Word: "apple"}}, nil
//	    },
//	}
//
// FailingStore wraps a real store.Store and injects errors per operation.
package mocks
