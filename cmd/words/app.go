package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-words/internal/api"
	"github.com/phrazzld/scry-words/internal/config"
	"github.com/phrazzld/scry-words/internal/events"
	"github.com/phrazzld/scry-words/internal/platform/sqlite"
	"github.com/phrazzld/scry-words/internal/redact"
	"github.com/phrazzld/scry-words/internal/service"
	"github.com/phrazzld/scry-words/internal/service/auth"
	"github.com/phrazzld/scry-words/internal/service/review"
	"github.com/phrazzld/scry-words/internal/service/session"
	"github.com/phrazzld/scry-words/internal/store"
)

// application holds the wired client components for one command.
type application struct {
	config *config.Config
	logger *slog.Logger

	db      *sqlite.Store
	cache   *store.Cache
	client  *api.Client
	emitter *events.InMemoryEventEmitter

	session *session.Manager
	words   *service.WordService
	stats   *service.RefreshCoordinator
	review  *review.Engine

	in  io.Reader
	out *renderer
}

// newApplication opens the local store and wires the services around one API
// client.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	in io.Reader,
	out io.Writer,
	format string,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		in:     in,
		out:    newRenderer(out, format),
	}

	db, err := sqlite.Open(ctx, cfg.Store.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	app.db = db
	app.cache = store.NewCache(db)

	opts := []api.Option{
		api.WithTimeout(cfg.API.Timeout()),
		api.WithLogger(logger),
	}
	if cfg.API.JWTSecret != "" {
		tokens, err := auth.NewTokenService(cfg.API)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to initialize credentials: %w", err)
		}
		opts = append(opts, api.WithTokenIssuer(tokens))
		logger.Debug("request signing enabled",
			"token_lifetime_minutes", cfg.API.TokenLifetimeMinutes)
	}
	app.client, err = api.NewClient(cfg.API.BaseURL, opts...)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.stats = service.NewRefreshCoordinator(app.client, logger)

	app.session = session.NewManager(app.client, app.cache, app.emitter, logger)
	app.words = service.NewWordService(app.client, app.emitter, logger)
	app.review = review.NewEngine(app.client, app.cache, app.emitter, logger)

	logger.Debug("application initialized",
		"base_url", redact.String(cfg.API.BaseURL),
		"store_path", cfg.Store.Path,
		"timeout", cfg.API.Timeout().String())
	return app, nil
}

// cleanup releases the local store.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close local store", "error", err)
	}
	app.db = nil
}

// execute runs cmd, restoring the saved session first when it needs one.
// Stats follow session events only for commands that show or change them.
func (app *application) execute(ctx context.Context, cmd command, args []string) error {
	if cmd.tracksStats {
		app.emitter.RegisterHandler(app.stats)
	}
	if !cmd.needsSession {
		return cmd.run(ctx, app, args)
	}
	if _, err := app.session.Restore(ctx); err != nil {
		return notLoggedIn{cause: err}
	}
	return cmd.run(ctx, app, args)
}

// username is the authenticated user; execute guarantees there is one.
func (app *application) username() string {
	id, _ := app.session.Current()
	return id.Username
}

// lastSync formats the due snapshot time for display.
func (app *application) lastSync(ctx context.Context) string {
	t, err := app.cache.LastSync(ctx)
	if err != nil {
		return "never"
	}
	return t.Local().Format(time.RFC3339)
}
