// Package storage provides SQLite-based persistence for coin balances,
// withdrawal requests and game scores.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	sqlite "modernc.org/sqlite" // Pure Go SQLite driver
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/vovakirdan/coin-snake/internal/wallet"
)

// Errors returned by the store.
var (
	ErrNotFound   = errors.New("storage: not found")
	ErrNotPending = errors.New("storage: withdrawal is not pending")
)

// busyRetries is how many times a write is retried when another process
// holds the database lock past the busy timeout.
const busyRetries = 3

// Store manages the SQLite database connection. All writes go through one
// connection and one mutex, so balance changes are applied and published
// in commit order.
type Store struct {
	db     *sql.DB
	logger *log.Logger

	writeMu sync.Mutex
	seq     uint64 // Commit sequence, guarded by writeMu
	hub     *balanceHub

	pollInterval time.Duration
	stop         chan struct{}
	watchDone    chan struct{}
	closeOnce    sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithPollInterval sets how often commits from other processes are looked
// for. Zero or less disables the check.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) {
		s.pollInterval = d
	}
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string, opts ...Option) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{
		db:           db,
		logger:       log.Default(),
		hub:          newBalanceHub(),
		pollInterval: DefaultPollInterval,
		stop:         make(chan struct{}),
		watchDone:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(store)
	}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	if store.pollInterval > 0 {
		version, err := store.dataVersion(context.Background())
		if err != nil {
			db.Close()
			return nil, err
		}
		go store.watchExternal(version, store.pollInterval)
	} else {
		close(store.watchDone)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			coins INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS withdrawals (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			payout_number TEXT NOT NULL,
			amount INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			timestamp INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_withdrawals_user ON withdrawals(user_id, timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_withdrawals_status ON withdrawals(status);

		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_user ON scores(user_id);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close stops watching for external commits and closes the database
// connection.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.watchDone
		err = s.db.Close()
	})
	return err
}

// withTx runs fn in an immediate transaction, retrying when the database
// stays locked by another process.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; attempt < busyRetries; attempt++ {
		err = s.runTx(ctx, fn)
		if !isBusy(err) {
			return err
		}
		s.logger.Warn("database busy, retrying", "attempt", attempt+1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
		}
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit: %w", err)
	}
	return nil
}

func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}

// parseTime reads a DATETIME column, which the driver may return as a
// time.Time or as text.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

var (
	_ wallet.Store               = (*Store)(nil)
	_ wallet.WithdrawalCommitter = (*Store)(nil)
)
