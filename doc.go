// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the endorsement API server.

The server keeps a community "upvote" count per marketplace item. Each
visitor may endorse an item once, ever, and only a limited number of items
per rate-limit window.

# Starting the Server

With no database the server runs in memory (state is lost on restart):

	VOTE_HASH_SALT=... go run .

With Postgres or SQLite:

	DATABASE_URL=postgres://... go run .
	go run . -d "file:votes.db" -p 3318

A .env file in the working directory is loaded first; real environment
variables win over it.

# Configuration

  - PORT (-p): Server port (default: 3318)
  - DATABASE_URL (-d): Presence selects persistent storage
  - DATABASE_TYPE (-t): postgres or sqlite (inferred from the URL)
  - VOTE_WINDOW_HOURS (-window-hours): Rate-limit window (default: 24)
  - VOTE_MAX_PER_WINDOW (-max-per-window): Items per window (default: 1)
  - VOTE_HASH_SALT (-hash-salt): Secret for identity hashing
  - CATALOG_PATH (-catalog): Optional JSON list of known item IDs

# Architecture

  - handlers: HTTP handlers for batch reads and casts
  - votes: Store contract with SQL and in-memory backends
  - auth: Identity hashing
  - catalog: Optional known-item snapshot
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - db: Connection and schema
  - cliparse: Configuration parsing
  - prefetch: Client-side scheduler deciding which counts to fetch and when

See package documentation for each component.
*/
package main
