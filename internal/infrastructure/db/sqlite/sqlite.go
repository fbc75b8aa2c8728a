package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Config holds the settings for the SQLite store.
type Config struct {
	// Path is the database file, or ":memory:" for a throwaway database.
	Path string
}

var schema = []string{`
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT    UNIQUE NOT NULL,
	password_hash TEXT    NOT NULL,
	created_at    INTEGER NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id    TEXT    NOT NULL,
	title       TEXT    NOT NULL,
	description TEXT    NOT NULL DEFAULT '',
	due_date    TEXT,
	status      TEXT    NOT NULL DEFAULT 'pending',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_owner_created ON tasks (owner_id, created_at)`,
}

// Open connects to the database, applies pragmas and creates the schema if
// needed. The pool is limited to one connection: SQLite serialises writers
// and every ":memory:" connection would otherwise see its own database.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return db, nil
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
