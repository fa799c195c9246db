// Package sqlstore persists bookmarks in SQLite (modernc, no CGO) or
// PostgreSQL (pgx) through sqlx and squirrel.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

const schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	url            TEXT NOT NULL,
	category       TEXT NOT NULL,
	subcategory    TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	tags           TEXT NOT NULL DEFAULT '[]',
	status_type    TEXT NOT NULL,
	is_locked      BOOLEAN NOT NULL DEFAULT FALSE,
	date_added     BIGINT NOT NULL,
	browser_source TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS bookmarks_date_added_idx ON bookmarks (date_added);
CREATE TABLE IF NOT EXISTS categories (
	name            TEXT NOT NULL,
	parent_category TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (parent_category, name)
);
`

// Store is a SQL-backed bookmark store.
type Store struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// New wraps an open database. The placeholder style follows the driver name.
func New(db *sqlx.DB) *Store {
	var ph squirrel.PlaceholderFormat = squirrel.Question
	if db.DriverName() == DriverPostgres {
		ph = squirrel.Dollar
	}
	return &Store{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(ph),
	}
}

// Open connects to driver/dsn, checks the connection and creates the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
