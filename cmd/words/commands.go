package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/scry-words/internal/api"
	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/service/review"
	"github.com/phrazzld/scry-words/internal/service/session"
)

type command struct {
	usage        string
	summary      string
	needsSession bool
	tracksStats  bool
	run          func(ctx context.Context, app *application, args []string) error
}

var commands = map[string]command{
	"login":   {usage: "login <username>", summary: "log in, creating the user if needed", tracksStats: true, run: runLogin},
	"logout":  {usage: "logout", summary: "log out and forget the saved session", run: runLogout},
	"whoami":  {usage: "whoami", summary: "show the logged in user", needsSession: true, run: runWhoami},
	"stats":   {usage: "stats", summary: "show learning statistics", needsSession: true, tracksStats: true, run: runStats},
	"lookup":  {usage: "lookup <word>", summary: "show a word's definitions", needsSession: true, run: runLookup},
	"add":     {usage: "add <word>", summary: "look a word up and add it to your list", needsSession: true, tracksStats: true, run: runAdd},
	"words":   {usage: "words [-status s]", summary: "list your words (learning, reviewing, mastered)", needsSession: true, run: runWords},
	"history": {usage: "history <word>", summary: "show past reviews of a word", needsSession: true, run: runHistory},
	"review":  {usage: "review", summary: "review the words that are due", needsSession: true, tracksStats: true, run: runReview},
}

var commandOrder = []string{"login", "logout", "whoami", "stats", "lookup", "add", "words", "history", "review"}

// usageError reports bad command arguments.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// notLoggedIn reports that a command needed a session and none could be
// restored.
type notLoggedIn struct{ cause error }

func (e notLoggedIn) Error() string { return "not logged in: " + e.cause.Error() }
func (e notLoggedIn) Unwrap() error { return e.cause }

// describe turns err into the line shown to the user.
func describe(err error) string {
	var nl notLoggedIn
	if errors.As(err, &nl) {
		if errors.Is(err, session.ErrSessionInvalid) {
			return fmt.Sprintf("Your saved session is no longer valid (%s).\nRun `words login <username>` to log in again.",
				api.Message(nl.cause))
		}
		return "Not logged in. Run `words login <username>` first."
	}
	return "error: " + api.Message(err)
}

func runLogin(ctx context.Context, app *application, args []string) error {
	if len(args) != 1 {
		return usageError{"login takes exactly one username"}
	}
	result, err := app.session.Login(ctx, args[0])
	if err != nil {
		return err
	}
	out := struct {
		domain.Identity
		Created bool `json:"created"`
	}{result.Identity, result.Created}
	return app.out.emit(out, func(w io.Writer) {
		fmt.Fprintf(w, "Logged in as %s.\n", result.Identity.Username)
		if result.Created {
			fmt.Fprintln(w, "A new account was created.")
		}
	})
}

func runLogout(ctx context.Context, app *application, args []string) error {
	if len(args) != 0 {
		return usageError{"logout takes no arguments"}
	}
	if err := app.session.Logout(ctx); err != nil {
		return err
	}
	return app.out.emit(map[string]bool{"logged_out": true}, func(w io.Writer) {
		fmt.Fprintln(w, "Logged out.")
	})
}

func runWhoami(ctx context.Context, app *application, _ []string) error {
	id, _ := app.session.Current()
	synced := app.lastSync(ctx)
	out := struct {
		domain.Identity
		LastSync string `json:"last_sync"`
	}{id, synced}
	return app.out.emit(out, func(w io.Writer) {
		fmt.Fprintln(w, id.Username)
		fmt.Fprintf(w, "Due words last synced: %s\n", synced)
	})
}

func runStats(ctx context.Context, app *application, _ []string) error {
	stats, ok := app.stats.Stats()
	if !ok {
		var err error
		if stats, err = app.stats.Refresh(ctx, app.username()); err != nil {
			return err
		}
	}
	return app.out.emit(stats, func(w io.Writer) { writeStats(w, stats) })
}

func runLookup(ctx context.Context, app *application, args []string) error {
	if len(args) == 0 {
		return usageError{"lookup needs a word"}
	}
	detail, err := app.words.Lookup(ctx, joinWord(args))
	if err != nil {
		return err
	}
	shown := detail.Truncated(domain.MaxDefinitionsShown)
	return app.out.emit(shown, func(w io.Writer) { writeDetail(w, shown) })
}

func runAdd(ctx context.Context, app *application, args []string) error {
	if len(args) == 0 {
		return usageError{"add needs a word"}
	}
	detail, err := app.words.Lookup(ctx, joinWord(args))
	if err != nil {
		return err
	}
	if err := app.words.AddToList(ctx, app.username(), detail.Word); err != nil {
		return err
	}
	shown := detail.Truncated(domain.MaxDefinitionsShown)
	out := struct {
		Added  bool              `json:"added"`
		Detail domain.WordDetail `json:"detail"`
	}{true, shown}
	return app.out.emit(out, func(w io.Writer) {
		writeDetail(w, shown)
		fmt.Fprintf(w, "\nAdded %q to your study list.\n", detail.Word)
	})
}

func runWords(ctx context.Context, app *application, args []string) error {
	fset := flag.NewFlagSet("words", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	status := fset.String("status", "", "only words with this status")
	if err := fset.Parse(args); err != nil || fset.NArg() != 0 {
		return usageError{"words [-status learning|reviewing|mastered]"}
	}
	words, err := app.client.GetUserWords(ctx, app.username(), domain.WordStatus(*status))
	if err != nil {
		return err
	}
	return app.out.emit(words, func(w io.Writer) { writeWords(w, words) })
}

func runHistory(ctx context.Context, app *application, args []string) error {
	if len(args) == 0 {
		return usageError{"history needs a word"}
	}
	word := joinWord(args)
	records, err := app.client.GetReviewHistory(ctx, app.username(), word)
	if err != nil {
		return err
	}
	return app.out.emit(records, func(w io.Writer) { writeHistory(w, word, records) })
}

// runReview drives the review engine from line input: Enter reveals, 0-5
// grades, r reloads a missing definition, q quits.
func runReview(ctx context.Context, app *application, _ []string) error {
	v, err := app.review.Start(ctx, app.username())
	if err != nil {
		return err
	}
	if v.State == review.Empty {
		app.out.printf("No words are due for review. Nice work!\n")
		return nil
	}

	lines := bufio.NewScanner(app.in)
	read := func(prompt string) (string, bool) {
		app.out.printf("%s> ", prompt)
		if !lines.Scan() {
			app.out.printf("\n")
			return "", false
		}
		return strings.TrimSpace(lines.Text()), true
	}

	for {
		switch v.State {
		case review.Presenting:
			app.out.printf("\nCard %d of %d\n  %s\n", v.Cursor+1, v.Total, v.Word)
			line, ok := read("Press Enter to reveal (q to quit) ")
			if !ok || line == "q" {
				return quitReview(app, v)
			}
			if v, err = app.review.Reveal(); err != nil {
				return err
			}

		case review.Revealing:
			app.out.printf("\n")
			if v.Detail != nil {
				writeDetail(app.out.w, *v.Detail)
			} else {
				app.out.printf("%s\n  (definition unavailable: %s; r to retry)\n", v.Word, api.Message(v.DetailErr))
			}
			app.out.printf("\nHow well did you recall it?\n")
			writeGrades(app.out.w)
			v, err = promptGrade(ctx, app, read)
			if errors.Is(err, errQuit) {
				return quitReview(app, v)
			}
			if err != nil {
				return err
			}

		case review.Completed:
			app.out.printf("\nReview complete! You reviewed %d words.\n", v.Reviewed)
			if stats, ok := app.stats.Stats(); ok {
				app.out.printf("%d words still due today.\n", stats.DueToday)
			}
			return nil

		default:
			return fmt.Errorf("unexpected review state %s", v.State)
		}
	}
}

var errQuit = errors.New("quit")

// promptGrade reads lines until a grade is accepted by the server, the
// detail is reloaded, or the user quits. A rejected grade keeps the card.
func promptGrade(ctx context.Context, app *application, read func(string) (string, bool)) (review.View, error) {
	for {
		line, ok := read("Grade 0-5 (r to reload, q to quit) ")
		if !ok || line == "q" {
			return app.review.View(), errQuit
		}
		if line == "r" {
			v, err := app.review.ReloadDetail(ctx)
			if err != nil {
				app.out.printf("Still unavailable: %s\n", api.Message(err))
				continue
			}
			return v, nil
		}
		grade, err := domain.ParseGrade(line)
		if err != nil {
			app.out.printf("Enter a number from 0 to 5.\n")
			continue
		}
		v, err := app.review.Submit(ctx, grade)
		if err != nil {
			if errors.Is(err, review.ErrBusy) || errors.Is(err, review.ErrInvalidTransition) {
				return v, err
			}
			app.out.printf("Could not save your grade: %s. Try again.\n", api.Message(err))
			continue
		}
		return v, nil
	}
}

func quitReview(app *application, v review.View) error {
	app.out.printf("Review paused after %d of %d words.\n", v.Reviewed, v.Total)
	return app.review.Reset()
}
