// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Postgres or SQLite connection string (optional)
  - DatabaseType: "postgres" or "sqlite" (inferred from the URL)
  - VoteWindowHours: Rate-limit window length (default: 24)
  - VoteMaxPerWindow: Endorsements per identity per window (default: 1)
  - VoteHashSalt: Secret for identity hashing
  - CatalogPath: Optional JSON snapshot of known item IDs

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	-catalog         Catalog snapshot path
	-window-hours    Rate-limit window length
	-max-per-window  Endorsements per window
	-hash-salt       Identity hash salt

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	CATALOG_PATH        → -catalog
	VOTE_WINDOW_HOURS   → -window-hours
	VOTE_MAX_PER_WINDOW → -max-per-window
	VOTE_HASH_SALT      → -hash-salt

CLI flags take precedence over environment variables, and real environment
variables take precedence over a .env file.

# Storage Mode

The presence of DATABASE_URL alone selects persistent storage. Without it the
server keeps votes in memory: correct within one process, lost on restart.
*/
package cliparse
