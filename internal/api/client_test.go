package api_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/scry-words/internal/api"
	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/platform/logger"
	"github.com/phrazzld/scry-words/internal/service/auth"
	apitest "github.com/phrazzld/scry-words/internal/testutils/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newClient(t *testing.T, srv *apitest.Server, opts ...api.Option) *api.Client {
	t.Helper()
	opts = append([]api.Option{api.WithTransport(srv.Client().Transport)}, opts...)
	c, err := api.NewClient(srv.BaseURL(), opts...)
	require.NoError(t, err)
	return c
}

func serendipity() domain.WordDetail {
	return domain.WordDetail{
		Word:     "serendipity",
		Phonetic: "/ˌsɛr.ənˈdɪp.ɪ.ti/",
		Meanings: []domain.Meaning{{
			PartOfSpeech: "noun",
			Definitions: []domain.Definition{
				{Definition: "The occurrence of events by chance in a happy way."},
				{Definition: "A fortunate discovery.", Example: "a fortunate stroke of serendipity"},
			},
		}},
	}
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	_, err := api.NewClient("ftp://example.com")
	assert.Error(t, err)

	_, err = api.NewClient("://nope")
	assert.Error(t, err)
}

func TestUserOperations(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer(t)
	c := newClient(t, srv)

	_, err := c.GetUser(ctx, "mia_01")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.Equal(t, "user not found", api.Message(err))
	assert.Equal(t, 404, api.StatusOf(err))

	created, err := c.CreateUser(ctx, "  mia_01 ")
	require.NoError(t, err)
	assert.Equal(t, "mia_01", created.Username)
	assert.NotZero(t, created.ID)

	got, err := c.GetUser(ctx, "mia_01")
	require.NoError(t, err)
	assert.Equal(t, created.Username, got.Username)

	_, err = c.CreateUser(ctx, "mia_01")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Equal(t, "username already exists", api.Message(err))
}

func TestValidationHappensBeforeSending(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer(t)
	c := newClient(t, srv)

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{"short username", func() error { _, err := c.CreateUser(ctx, "ab"); return err }, domain.ErrInvalidUsername},
		{"bad characters", func() error { _, err := c.GetUser(ctx, "mia-01"); return err }, domain.ErrInvalidUsername},
		{"empty word", func() error { _, err := c.GetWord(ctx, "   "); return err }, domain.ErrEmptyWord},
		{"grade above range", func() error { return c.SubmitReview(ctx, "mia_01", "dog", domain.Grade(6)) }, domain.ErrInvalidGrade},
		{"grade below range", func() error { return c.SubmitReview(ctx, "mia_01", "dog", domain.Grade(-1)) }, domain.ErrInvalidGrade},
		{"unknown status", func() error { _, err := c.GetUserWords(ctx, "mia_01", "forgotten"); return err }, domain.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, api.ErrValidation)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Zero(t, srv.TotalCalls(), "invalid input must never reach the server")
}

func TestWordAndReviewOperations(t *testing.T) {
	ctx := context.Background()
	srv := apitest.NewServer(t)
	srv.AddUser("mia_01")
	srv.AddDictionaryWord(serendipity())
	srv.AddDictionaryWord(domain.WordDetail{Word: "ice cream", Meanings: []domain.Meaning{}})
	c := newClient(t, srv)

	detail, err := c.GetWord(ctx, "Serendipity")
	require.NoError(t, err)
	assert.Equal(t, serendipity(), detail)

	spaced, err := c.GetWord(ctx, "ice cream")
	require.NoError(t, err)
	assert.Equal(t, "ice cream", spaced.Word)

	_, err = c.GetWord(ctx, "zzzz")
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.Equal(t, "word not found", api.Message(err))

	require.NoError(t, c.AddWordToList(ctx, "mia_01", "serendipity"))

	due, err := c.GetDueWords(ctx, "mia_01")
	require.NoError(t, err)
	assert.Equal(t, []domain.DueItem{{Word: "serendipity"}}, due)

	require.NoError(t, c.SubmitReview(ctx, "mia_01", "serendipity", domain.GradeBlackout))
	assert.Equal(t, []apitest.Submission{{Username: "mia_01", Word: "serendipity", Quality: 0}}, srv.Submissions(),
		"grade zero must be sent, not dropped as empty")

	due, err = c.GetDueWords(ctx, "mia_01")
	require.NoError(t, err)
	assert.NotNil(t, due)
	assert.Empty(t, due)

	history, err := c.GetReviewHistory(ctx, "mia_01", "serendipity")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.GradeBlackout, history[0].Quality)

	learning, err := c.GetUserWords(ctx, "mia_01", domain.StatusLearning)
	require.NoError(t, err)
	assert.Len(t, learning, 1)
	mastered, err := c.GetUserWords(ctx, "mia_01", domain.StatusMastered)
	require.NoError(t, err)
	assert.Empty(t, mastered)

	stats, err := c.GetUserStats(ctx, "mia_01")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalWords)
	assert.Equal(t, 1, stats.TotalReviews)
	assert.Equal(t, 0, stats.DueToday)
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name        string
		fault       apitest.Fault
		wantKind    error
		wantMessage string
	}{
		{
			name:        "server message surfaces",
			fault:       apitest.Fault{Status: 500, Message: "failed to retrieve due words"},
			wantKind:    api.ErrServer,
			wantMessage: "failed to retrieve due words",
		},
		{
			name:        "unparsable error body falls back",
			fault:       apitest.Fault{Status: 502, Body: "<html>bad gateway</html>"},
			wantKind:    api.ErrServer,
			wantMessage: api.MessageRequestFailed,
		},
		{
			name:        "error body without message falls back",
			fault:       apitest.Fault{Status: 500, Body: `{"detail":"x"}`},
			wantKind:    api.ErrServer,
			wantMessage: api.MessageRequestFailed,
		},
		{
			name:        "not found keeps server message",
			fault:       apitest.Fault{Status: 404, Message: "user not found"},
			wantKind:    api.ErrNotFound,
			wantMessage: "user not found",
		},
		{
			name:        "success with unparsable body",
			fault:       apitest.Fault{Status: 200, Body: "not json"},
			wantKind:    api.ErrCommunication,
			wantMessage: "failed to communicate with server",
		},
		{
			name:        "connection dropped",
			fault:       apitest.Fault{Drop: true},
			wantKind:    api.ErrCommunication,
			wantMessage: "failed to communicate with server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			srv.AddUser("mia_01")
			srv.Fail(apitest.RouteGetDueWords, tt.fault)
			c := newClient(t, srv)

			_, err := c.GetDueWords(context.Background(), "mia_01")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantKind, api.KindOf(err))
			assert.Equal(t, tt.wantMessage, api.Message(err))

			var apiErr *api.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, api.OpGetDueWords, apiErr.Op)
		})
	}
}

func TestTimeoutIsCommunicationError(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddUser("mia_01")
	srv.Fail(apitest.RouteGetUserStats, apitest.Fault{Delay: 2 * time.Second})
	c := newClient(t, srv, api.WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := c.GetUserStats(context.Background(), "mia_01")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrCommunication)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFailuresAreLoggedWithOperation(t *testing.T) {
	log, buf := logger.GetTestLogger(t)
	srv := apitest.NewServer(t)
	srv.AddUser("mia_01")
	srv.Fail(apitest.RouteSubmitReview, apitest.Fault{Status: 500, Message: "database unavailable"})
	c := newClient(t, srv, api.WithLogger(log))

	err := c.SubmitReview(context.Background(), "mia_01", "dog", domain.GradeGood)
	require.Error(t, err)

	logger.AssertLogField(t, buf, "op", api.OpSubmitReview)
	logger.AssertLogField(t, buf, "component", "api_client")
	logger.AssertLogField(t, buf, "level", "ERROR")
}

func TestRequestsCarryTraceAndCredentials(t *testing.T) {
	tokens, err := auth.NewTokenService(config.APIConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 15})
	require.NoError(t, err)

	srv := apitest.NewServer(t, apitest.WithTokens(tokens))
	srv.AddUser("mia_01")
	srv.AddDictionaryWord(serendipity())
	c := newClient(t, srv, api.WithTokenIssuer(tokens))

	ctx := logger.WithRequestID(context.Background(), "req-abc")
	_, err = c.GetUser(ctx, "mia_01")
	require.NoError(t, err)
	_, err = c.GetWord(context.Background(), "serendipity")
	require.NoError(t, err)

	ids := srv.RequestIDs()
	require.Len(t, ids, 2)
	assert.Equal(t, "req-abc", ids[0])
	assert.NotEmpty(t, ids[1])

	headers := srv.AuthHeaders()
	assert.True(t, strings.HasPrefix(headers[0], "Bearer "), "username-scoped calls are signed")
	assert.Empty(t, headers[1], "public lookups are not signed")
}

func TestCreateUserIsUnsigned(t *testing.T) {
	tokens, err := auth.NewTokenService(config.APIConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 15})
	require.NoError(t, err)

	srv := apitest.NewServer(t, apitest.WithTokens(tokens))
	c := newClient(t, srv, api.WithTokenIssuer(tokens))

	_, err = c.CreateUser(context.Background(), "mia_01")
	require.NoError(t, err)
	_, err = c.GetUser(context.Background(), "mia_01")
	require.NoError(t, err)

	headers := srv.AuthHeaders()
	require.Len(t, headers, 2)
	assert.Empty(t, headers[0], "registration carries no credentials")
	assert.True(t, strings.HasPrefix(headers[1], "Bearer "))
}

func TestSignedServerRejectsUnsignedClient(t *testing.T) {
	tokens, err := auth.NewTokenService(config.APIConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 15})
	require.NoError(t, err)

	srv := apitest.NewServer(t, apitest.WithTokens(tokens))
	srv.AddUser("mia_01")
	c := newClient(t, srv)

	_, err = c.GetUser(context.Background(), "mia_01")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Equal(t, 401, api.StatusOf(err))
	assert.Equal(t, "Authorization header required", api.Message(err))
}

func TestEndSession(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)

	require.NoError(t, c.EndSession(context.Background(), "mia_01"))
	assert.Equal(t, 1, srv.Calls(apitest.RouteEndSession))

	srv.Fail(apitest.RouteEndSession, apitest.Fault{Status: 404, Message: "not found"})
	assert.ErrorIs(t, c.EndSession(context.Background(), "mia_01"), api.ErrNotFound)
}

func TestMessageOfForeignError(t *testing.T) {
	assert.Equal(t, "", api.Message(nil))
	assert.Equal(t, "plain", api.Message(errors.New("plain")))
	assert.Nil(t, api.KindOf(errors.New("plain")))
}
