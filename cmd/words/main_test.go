package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/service/auth"
	apitest "github.com/phrazzld/scry-words/internal/testutils/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

type cli struct {
	t   *testing.T
	srv *apitest.Server
}

// newCLI points the command at a fresh fake server and a private store.
func newCLI(t *testing.T, opts ...apitest.Option) *cli {
	t.Helper()
	srv := apitest.NewServer(t, opts...)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("WORDS_API_BASE_URL", srv.BaseURL())
	t.Setenv("WORDS_STORE_PATH", filepath.Join(home, "data", "words.db"))
	t.Setenv("WORDS_LOG_LEVEL", "error")

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	return &cli{t: t, srv: srv}
}

func (c *cli) run(stdin string, args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (c *cli) mustRun(stdin string, args ...string) string {
	c.t.Helper()
	code, out, errOut := c.run(stdin, args...)
	require.Equal(c.t, exitOK, code, "words %v failed: %s", args, errOut)
	return out
}

func (c *cli) addWord(word string, defs ...string) {
	detail := domain.WordDetail{Word: word, Meanings: []domain.Meaning{{PartOfSpeech: "noun"}}}
	for _, d := range defs {
		detail.Meanings[0].Definitions = append(detail.Meanings[0].Definitions, domain.Definition{Definition: d})
	}
	c.srv.AddDictionaryWord(detail)
}

func TestLoginWhoamiLogout(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("", "login", "mia_01")
	assert.Contains(t, out, "Logged in as mia_01.")
	assert.Contains(t, out, "A new account was created.")

	out = c.mustRun("", "whoami")
	assert.Contains(t, out, "mia_01")
	assert.Contains(t, out, "Due words last synced: never")

	out = c.mustRun("", "login", "mia_01")
	assert.NotContains(t, out, "new account")
	assert.Equal(t, 1, c.srv.Calls(apitest.RouteCreateUser))

	out = c.mustRun("", "logout")
	assert.Contains(t, out, "Logged out.")

	code, _, errOut := c.run("", "whoami")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "Not logged in")
}

func TestCommandsNeedSession(t *testing.T) {
	c := newCLI(t)

	for _, cmd := range []string{"whoami", "stats", "words", "review"} {
		code, _, errOut := c.run("", cmd)
		assert.Equal(t, exitError, code, cmd)
		assert.Contains(t, errOut, "words login <username>", cmd)
	}
	assert.Zero(t, c.srv.TotalCalls(), "no saved identity means no network calls")
}

func TestInvalidSavedSession(t *testing.T) {
	c := newCLI(t)
	c.mustRun("", "login", "mia_01")

	c.srv.Fail(apitest.RouteGetUser, apitest.Fault{Status: 404, Message: "user not found", Times: 1})
	code, _, errOut := c.run("", "whoami")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "no longer valid (user not found)")

	code, _, errOut = c.run("", "whoami")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "Not logged in", "rejected identity is cleared")
}

func TestLoginRejectsInvalidUsername(t *testing.T) {
	c := newCLI(t)
	code, _, errOut := c.run("", "login", "no-dashes")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "letters, numbers, and underscores")
	assert.Zero(t, c.srv.TotalCalls())
}

func TestLookupShowsTwoDefinitions(t *testing.T) {
	c := newCLI(t)
	c.addWord("run", "to move quickly", "to operate", "to manage")
	c.mustRun("", "login", "mia_01")

	out := c.mustRun("", "lookup", "Run")
	assert.Contains(t, out, "1. to move quickly")
	assert.Contains(t, out, "2. to operate")
	assert.NotContains(t, out, "to manage")

	code, _, errOut := c.run("", "lookup", "zzzz")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "error: word not found")
}

func TestAddWordThenList(t *testing.T) {
	c := newCLI(t)
	c.addWord("serendipity", "a happy accident", "a fortunate discovery")
	c.mustRun("", "login", "mia_01")

	out := c.mustRun("", "add", "serendipity")
	assert.Contains(t, out, `Added "serendipity" to your study list.`)

	out = c.mustRun("", "words")
	assert.Contains(t, out, "serendipity")
	assert.Contains(t, out, "learning")

	out = c.mustRun("", "words", "-status", "mastered")
	assert.Contains(t, out, "No words on your list.")

	code, _, errOut := c.run("", "words", "-status", "forgotten")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "invalid word status")

	code, _, errOut = c.run("", "add", "serendipity")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "word already in list")
}

func TestStatsJSON(t *testing.T) {
	c := newCLI(t)
	c.mustRun("", "login", "mia_01")
	c.srv.SetStats("mia_01", domain.Stats{TotalWords: 4, DueToday: 2, Learning: 3, Mastered: 1, TotalReviews: 9})

	out := c.mustRun("", "-o", "json", "stats")
	var stats domain.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 4, stats.TotalWords)
	assert.Equal(t, 2, stats.DueToday)
	assert.Equal(t, 9, stats.TotalReviews)
}

func TestStatsText(t *testing.T) {
	c := newCLI(t)
	c.mustRun("", "login", "mia_01")
	c.srv.SetStats("mia_01", domain.Stats{TotalWords: 4, DueToday: 2, CurrentStreak: 3})

	out := c.mustRun("", "stats")
	assert.Contains(t, out, "Due today:")
	assert.Contains(t, out, "3 days")
}

func TestStatsFetchedOnlyWhenUsed(t *testing.T) {
	c := newCLI(t)
	c.addWord("dog", "a domesticated canine")
	c.mustRun("", "login", "mia_01")
	c.mustRun("", "add", "dog")
	before := c.srv.Calls(apitest.RouteGetUserStats)

	c.mustRun("", "whoami")
	c.mustRun("", "lookup", "dog")
	c.mustRun("", "words")
	c.mustRun("", "history", "dog")
	assert.Equal(t, before, c.srv.Calls(apitest.RouteGetUserStats), "read-only commands leave stats alone")

	c.mustRun("", "stats")
	assert.Equal(t, before+1, c.srv.Calls(apitest.RouteGetUserStats))
}

func TestWordsYAML(t *testing.T) {
	c := newCLI(t)
	c.addWord("dog", "a domesticated canine")
	c.mustRun("", "login", "mia_01")
	c.mustRun("", "add", "dog")

	out := c.mustRun("", "-o", "yaml", "words")
	var words []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &words))
	require.Len(t, words, 1)
	assert.Equal(t, "dog", words[0]["word"])
	assert.Equal(t, "learning", words[0]["status"])
}

func TestHistory(t *testing.T) {
	c := newCLI(t)
	c.addWord("dog", "a domesticated canine")
	c.mustRun("", "login", "mia_01")
	c.mustRun("", "add", "dog")

	out := c.mustRun("", "history", "dog")
	assert.Contains(t, out, `No reviews of "dog" yet.`)

	c.mustRun("\n4\n", "review")
	out = c.mustRun("", "history", "dog")
	assert.Contains(t, out, "4 Easy")
}

func TestReviewPass(t *testing.T) {
	c := newCLI(t)
	c.addWord("dog", "a domesticated canine")
	c.addWord("cat", "a small feline")
	c.mustRun("", "login", "mia_01")
	c.srv.SetDue("mia_01", "dog", "cat")

	out := c.mustRun("\n5\n\n2\n", "review")
	assert.Contains(t, out, "Card 1 of 2")
	assert.Contains(t, out, "Card 2 of 2")
	assert.Contains(t, out, "a small feline")
	assert.Contains(t, out, "Total blackout")
	assert.Contains(t, out, "Review complete! You reviewed 2 words.")
	assert.Equal(t, []apitest.Submission{
		{Username: "mia_01", Word: "dog", Quality: 5},
		{Username: "mia_01", Word: "cat", Quality: 2},
	}, c.srv.Submissions())

	out = c.mustRun("", "whoami")
	assert.NotContains(t, out, "never", "review writes the due snapshot")
}

func TestReviewRetriesFailedGrade(t *testing.T) {
	c := newCLI(t)
	c.addWord("dog", "a domesticated canine")
	c.mustRun("", "login", "mia_01")
	c.srv.SetDue("mia_01", "dog")
	c.srv.Fail(apitest.RouteSubmitReview, apitest.Fault{Status: 500, Message: "database unavailable", Times: 1})

	out := c.mustRun("\n7\n4\n4\n", "review")
	assert.Contains(t, out, "Enter a number from 0 to 5.")
	assert.Contains(t, out, "Could not save your grade: database unavailable. Try again.")
	assert.Contains(t, out, "Review complete! You reviewed 1 words.")
	assert.Len(t, c.srv.Submissions(), 1)
}

func TestReviewNothingDue(t *testing.T) {
	c := newCLI(t)
	c.mustRun("", "login", "mia_01")

	out := c.mustRun("", "review")
	assert.Contains(t, out, "No words are due for review.")
}

func TestReviewQuit(t *testing.T) {
	c := newCLI(t)
	c.addWord("dog", "a domesticated canine")
	c.mustRun("", "login", "mia_01")
	c.srv.SetDue("mia_01", "dog")

	out := c.mustRun("q\n", "review")
	assert.Contains(t, out, "Review paused after 0 of 1 words.")
	assert.Empty(t, c.srv.Submissions())

	out = c.mustRun("", "review")
	assert.Contains(t, out, "Review paused", "end of input pauses the pass")
}

func TestSignedRequests(t *testing.T) {
	tokens, err := auth.NewTokenService(config.APIConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 15})
	require.NoError(t, err)
	c := newCLI(t, apitest.WithTokens(tokens))
	t.Setenv("WORDS_API_JWT_SECRET", testSecret)

	c.mustRun("", "login", "mia_01")
	c.mustRun("", "stats")

	signed := 0
	for _, h := range c.srv.AuthHeaders() {
		if strings.HasPrefix(h, "Bearer ") {
			signed++
		}
	}
	assert.Positive(t, signed)
}

func TestUsageErrors(t *testing.T) {
	c := newCLI(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "usage: words"},
		{"unknown command", []string{"dance"}, `unknown command "dance"`},
		{"unknown format", []string{"-o", "xml", "stats"}, `unknown output format "xml"`},
		{"login without name", []string{"login"}, "usage: words login <username>"},
		{"lookup without word", []string{"lookup"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "lookup without word" {
				c.mustRun("", "login", "mia_01")
				tt.want = "usage: words lookup <word>"
			}
			code, _, errOut := c.run("", tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestConfigurationError(t *testing.T) {
	c := newCLI(t)
	t.Setenv("WORDS_LOG_LEVEL", "loud")

	code, _, errOut := c.run("", "whoami")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "validation failed")
}
