// Package storage persists keywords, the sent-news dedup ledger and alert
// history in SQLite (default) or PostgreSQL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/deusflow/newsalert/internal/logger"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	// similarityLookback bounds how many recent titles the fuzzy check scans.
	similarityLookback = 1000
)

var (
	// ErrNotFound is returned when a keyword or alert id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKeyword is returned when the keyword text already exists.
	ErrDuplicateKeyword = errors.New("keyword already exists")
)

// Store is the keyword, dedup and alert store.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used for created_at / sent_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New wraps an open connection. The schema is not touched; call Migrate.
func New(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// A single connection keeps writers from tripping over SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}

	s := New(db, opts...)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database connected", "driver", driver)
	return s, nil
}

// Migrate creates the tables and indexes if they don't exist.
func (s *Store) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.db.DriverName() == DriverPostgres {
		schema = postgresSchema
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// timestamp returns the store clock in UTC so stored values compare in order.
func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS keywords (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	keyword TEXT NOT NULL UNIQUE,
	enabled BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS sent_news (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	news_url TEXT NOT NULL,
	news_title TEXT,
	sent_at TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_sent_news_url ON sent_news(news_url);
CREATE INDEX IF NOT EXISTS idx_sent_news_sent_at ON sent_news(sent_at);

CREATE TABLE IF NOT EXISTS alerts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	matched_keywords TEXT NOT NULL,
	news_time TEXT NOT NULL DEFAULT '',
	news_source TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS keywords (
	id BIGSERIAL PRIMARY KEY,
	keyword TEXT NOT NULL UNIQUE,
	enabled BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sent_news (
	id BIGSERIAL PRIMARY KEY,
	news_url TEXT NOT NULL,
	news_title TEXT,
	sent_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_sent_news_url ON sent_news(news_url);
CREATE INDEX IF NOT EXISTS idx_sent_news_sent_at ON sent_news(sent_at);

CREATE TABLE IF NOT EXISTS alerts (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	matched_keywords TEXT NOT NULL,
	news_time TEXT NOT NULL DEFAULT '',
	news_source TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at);
`
