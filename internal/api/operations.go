package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/phrazzld/scry-words/internal/api/shared"
	"github.com/phrazzld/scry-words/internal/domain"
)

// Operation names as they appear in logs and errors.
const (
	OpCreateUser       = "create_user"
	OpGetUser          = "get_user"
	OpGetUserStats     = "get_user_stats"
	OpGetWord          = "get_word"
	OpAddWordToList    = "add_word_to_list"
	OpGetUserWords     = "get_user_words"
	OpGetDueWords      = "get_due_words"
	OpSubmitReview     = "submit_review"
	OpGetReviewHistory = "get_review_history"
	OpEndSession       = "end_session"
)

// CreateUser registers username (POST /users).
func (c *Client) CreateUser(ctx context.Context, username string) (domain.Identity, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return domain.Identity{}, c.invalid(ctx, OpCreateUser, err)
	}
	var id domain.Identity
	err = c.do(ctx, call{
		op:      OpCreateUser,
		method:  http.MethodPost,
		segs:    []string{"users"},
		body:    shared.CreateUserRequest{Username: name},
		out:     &id,
	})
	if err != nil {
		return domain.Identity{}, err
	}
	return c.checkIdentity(ctx, OpCreateUser, id)
}

// GetUser fetches username (GET /users/{username}).
func (c *Client) GetUser(ctx context.Context, username string) (domain.Identity, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return domain.Identity{}, c.invalid(ctx, OpGetUser, err)
	}
	var id domain.Identity
	err = c.do(ctx, call{
		op:      OpGetUser,
		method:  http.MethodGet,
		segs:    []string{"users", name},
		subject: name,
		out:     &id,
	})
	if err != nil {
		return domain.Identity{}, err
	}
	return c.checkIdentity(ctx, OpGetUser, id)
}

// checkIdentity treats a success body without a usable username as
// unparsable.
func (c *Client) checkIdentity(ctx context.Context, op string, id domain.Identity) (domain.Identity, error) {
	if err := id.Validate(); err != nil {
		return domain.Identity{}, c.fail(ctx, call{op: op}, &Error{
			Op:      op,
			Status:  http.StatusOK,
			Message: MessageCommunication,
			Kind:    ErrCommunication,
			Err:     fmt.Errorf("malformed user object: %w", err),
		})
	}
	return id, nil
}

// GetUserStats fetches aggregate counts (GET /users/{username}/stats).
func (c *Client) GetUserStats(ctx context.Context, username string) (domain.Stats, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return domain.Stats{}, c.invalid(ctx, OpGetUserStats, err)
	}
	var stats domain.Stats
	err = c.do(ctx, call{
		op:      OpGetUserStats,
		method:  http.MethodGet,
		segs:    []string{"users", name, "stats"},
		subject: name,
		out:     &stats,
	})
	return stats, err
}

// GetWord fetches dictionary detail for word (GET /words/{word}).
func (c *Client) GetWord(ctx context.Context, word string) (domain.WordDetail, error) {
	w, err := domain.NormalizeWord(word)
	if err != nil {
		return domain.WordDetail{}, c.invalid(ctx, OpGetWord, err)
	}
	var detail domain.WordDetail
	err = c.do(ctx, call{
		op:     OpGetWord,
		method: http.MethodGet,
		segs:   []string{"words", w},
		out:    &detail,
	})
	return detail, err
}

// AddWordToList adds word to username's study list
// (POST /users/{username}/words/{word}).
func (c *Client) AddWordToList(ctx context.Context, username, word string) error {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return c.invalid(ctx, OpAddWordToList, err)
	}
	w, err := domain.NormalizeWord(word)
	if err != nil {
		return c.invalid(ctx, OpAddWordToList, err)
	}
	return c.do(ctx, call{
		op:      OpAddWordToList,
		method:  http.MethodPost,
		segs:    []string{"users", name, "words", w},
		subject: name,
	})
}

// GetUserWords lists username's words, optionally filtered by status
// (GET /users/{username}/words?status=).
func (c *Client) GetUserWords(ctx context.Context, username string, status domain.WordStatus) ([]domain.UserWord, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return nil, c.invalid(ctx, OpGetUserWords, err)
	}
	st, err := domain.ParseWordStatus(string(status))
	if err != nil {
		return nil, c.invalid(ctx, OpGetUserWords, err)
	}
	var query url.Values
	if st != domain.StatusAll {
		query = url.Values{"status": []string{string(st)}}
	}
	var resp shared.UserWordsResponse
	err = c.do(ctx, call{
		op:      OpGetUserWords,
		method:  http.MethodGet,
		segs:    []string{"users", name, "words"},
		query:   query,
		subject: name,
		out:     &resp,
	})
	if err != nil {
		return nil, err
	}
	if resp.Words == nil {
		resp.Words = []domain.UserWord{}
	}
	return resp.Words, nil
}

// GetDueWords fetches the ordered due queue (GET /users/{username}/review).
func (c *Client) GetDueWords(ctx context.Context, username string) ([]domain.DueItem, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return nil, c.invalid(ctx, OpGetDueWords, err)
	}
	var resp shared.DueWordsResponse
	err = c.do(ctx, call{
		op:      OpGetDueWords,
		method:  http.MethodGet,
		segs:    []string{"users", name, "review"},
		subject: name,
		out:     &resp,
	})
	if err != nil {
		return nil, err
	}
	if resp.Words == nil {
		resp.Words = []domain.DueItem{}
	}
	return resp.Words, nil
}

// SubmitReview records grade for word (POST /users/{username}/review/{word}).
// Grades outside [0,5] are rejected without a request.
func (c *Client) SubmitReview(ctx context.Context, username, word string, grade domain.Grade) error {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return c.invalid(ctx, OpSubmitReview, err)
	}
	w, err := domain.NormalizeWord(word)
	if err != nil {
		return c.invalid(ctx, OpSubmitReview, err)
	}
	if !grade.IsValid() {
		return c.invalid(ctx, OpSubmitReview,
			fmt.Errorf("%w: %w: got %d", domain.ErrValidation, domain.ErrInvalidGrade, int(grade)))
	}
	return c.do(ctx, call{
		op:      OpSubmitReview,
		method:  http.MethodPost,
		segs:    []string{"users", name, "review", w},
		subject: name,
		body:    shared.NewSubmitReviewRequest(grade),
	})
}

// GetReviewHistory lists past reviews of word
// (GET /users/{username}/review/{word}/history).
func (c *Client) GetReviewHistory(ctx context.Context, username, word string) ([]domain.ReviewRecord, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return nil, c.invalid(ctx, OpGetReviewHistory, err)
	}
	w, err := domain.NormalizeWord(word)
	if err != nil {
		return nil, c.invalid(ctx, OpGetReviewHistory, err)
	}
	var resp shared.HistoryResponse
	err = c.do(ctx, call{
		op:      OpGetReviewHistory,
		method:  http.MethodGet,
		segs:    []string{"users", name, "review", w, "history"},
		subject: name,
		out:     &resp,
	})
	if err != nil {
		return nil, err
	}
	if resp.History == nil {
		resp.History = []domain.ReviewRecord{}
	}
	return resp.History, nil
}

// EndSession asks the server to drop any session it holds for this client
// (POST /auth/logout). Servers on the username-scoped contract may answer 404.
func (c *Client) EndSession(ctx context.Context, username string) error {
	return c.do(ctx, call{
		op:      OpEndSession,
		method:  http.MethodPost,
		segs:    []string{"auth", "logout"},
		subject: username,
	})
}
