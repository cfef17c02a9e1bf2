// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package votes stores endorsement counts and the markers that deduplicate them.

Two Store implementations share one contract. SQLStore is the normal mode and
is safe across server instances. MemoryStore is the degraded mode used when no
DATABASE_URL is configured. Pick one at startup:

	var store votes.Store = votes.NewMemoryStore(cfg.VoteMaxPerWindow)
	if cfg.Persistent() {
		store = votes.NewSQLStore(conn, db.Dialect(cfg.DatabaseType), cfg.VoteMaxPerWindow)
	}

CastVote checks, in order: the identity's marker count for the bucket, whether
the identity ever endorsed the item (AlreadyVoted), and the per-window limit
(LimitReached). Only then is a marker inserted and the counter incremented.
Storage errors come back wrapped in ErrVoteFailed and are never retried.

Window turns wall-clock time into bucket numbers:

	w := votes.NewWindow(24 * time.Hour)
	bucket := w.Bucket(time.Now())
	resetAt := w.EndsAt(bucket)
*/
package votes
