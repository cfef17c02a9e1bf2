// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the vote database and creates its schema.

# Connecting

Open supports Postgres (github.com/lib/pq) and SQLite (modernc.org/sqlite):

	conn, err := db.Open(ctx, db.Postgres, "postgres://...")
	conn, err := db.Open(ctx, db.SQLite, "file:votes.db")

SQLite connections are limited to one open connection so concurrent casts
queue instead of failing with SQLITE_BUSY.

# Schema Creation

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - vote_counter: public tally per item (item_id, count, updated_at)
  - vote_marker: one row per (item_id, user_hash, bucket)

Rows are only ever inserted, plus counter increments. Nothing here deletes.

# Indexes

  - vote_marker primary key (item_id, user_hash, bucket)
  - vote_marker.(item_id, user_hash) unique: lifetime once-per-item
  - vote_marker.(user_hash, bucket): rate-limit counting
*/
package db
