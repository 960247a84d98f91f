package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/phrazzld/scry-words/internal/store"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const (
	busyRetries = 3
	busyBackoff = 50 * time.Millisecond
)

const upsertSQL = `
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at`

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store implements store.Store using a single kv table.
type Store struct {
	db     *sql.DB
	q      store.DBTX
	locks  store.KeyedMutex
	logger *slog.Logger
	now    func() time.Time
}

// Ensure Store implements store.Store interface
var (
	_ store.Store   = (*Store)(nil)
	_ store.Batcher = (*Store)(nil)
)

// Open opens (creating if needed) the database at path and applies pending
// migrations. Pass MemoryPath for a throwaway database.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "sqlite_store")

	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debug("store opened", "path", path)
	return &Store{db: db, q: db, logger: log, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		log.Debug("migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration_ms", r.Duration.Milliseconds())
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Set implements store.Store.
func (s *Store) Set(ctx context.Context, key store.Key, value any) error {
	data, err := store.Encode(key, value)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	err = s.exec(ctx, upsertSQL, string(key), string(data), s.now().Unix())
	if err != nil {
		return store.NewStoreError(key, "set", err)
	}
	return nil
}

// SetBatch implements store.Batcher. Either every value is written or none is.
func (s *Store) SetBatch(ctx context.Context, values map[store.Key]any) error {
	keys := make([]store.Key, 0, len(values))
	encoded := make(map[store.Key][]byte, len(values))
	for key, value := range values {
		data, err := store.Encode(key, value)
		if err != nil {
			return err
		}
		keys = append(keys, key)
		encoded[key] = data
	}
	// Fixed lock order.
	slices.Sort(keys)
	for _, key := range keys {
		unlock := s.locks.Lock(key)
		defer unlock()
	}

	now := s.now().Unix()
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, upsertSQL, string(key), string(encoded[key]), now); err != nil {
				return store.NewStoreError(key, "set", mapError(err))
			}
		}
		return nil
	})
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, key store.Key, dst any) error {
	var raw string
	err := s.q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, string(key)).Scan(&raw)
	if err != nil {
		return store.NewStoreError(key, "get", mapError(err))
	}
	return store.Decode(key, []byte(raw), dst)
}

// Clear implements store.Store.
func (s *Store) Clear(ctx context.Context, key store.Key) error {
	unlock := s.locks.Lock(key)
	defer unlock()

	if err := s.exec(ctx, `DELETE FROM kv WHERE key = ?`, string(key)); err != nil {
		return store.NewStoreError(key, "clear", err)
	}
	return nil
}

// exec runs a write, retrying briefly while another process holds the lock.
func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	var err error
	for attempt := 1; attempt <= busyRetries; attempt++ {
		_, err = s.q.ExecContext(ctx, query, args...)
		if err == nil || !isBusy(err) {
			return mapError(err)
		}
		s.logger.Debug("database busy, retrying", "attempt", attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * busyBackoff):
		}
	}
	return mapError(err)
}
