// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect captures the few places Postgres and SQLite disagree
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Open connects to the database, verifies the connection and applies
// per-dialect pool settings. The caller owns the returned *sql.DB.
func Open(ctx context.Context, dialect Dialect, url string) (*sql.DB, error) {
	conn, err := sql.Open(string(dialect), url)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == SQLite {
		// One writer at a time; SQLite would otherwise answer SQLITE_BUSY
		// instead of queueing concurrent casts.
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	if dialect == SQLite {
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
			if _, err := conn.ExecContext(ctx, pragma); err != nil {
				conn.Close()
				return nil, fmt.Errorf("%s: %w", pragma, err)
			}
		}
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DropSchema removes every table CreateSchema makes. Tests only.
func DropSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		DROP TABLE IF EXISTS vote_marker;
		DROP TABLE IF EXISTS vote_counter;
	`)
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

// Both dialects accept this DDL as written.
const schema = `
-- Counters: one row per endorsed item
CREATE TABLE IF NOT EXISTS vote_counter (
    item_id TEXT PRIMARY KEY,
    count INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
    updated_at TIMESTAMP NOT NULL
);

-- Markers: one row per identity per item, tagged with the bucket it was cast in
CREATE TABLE IF NOT EXISTS vote_marker (
    item_id TEXT NOT NULL,
    user_hash TEXT NOT NULL,
    bucket BIGINT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (item_id, user_hash, bucket)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_vote_marker_item_user ON vote_marker(item_id, user_hash);
CREATE INDEX IF NOT EXISTS idx_vote_marker_user_bucket ON vote_marker(user_hash, bucket);
`
