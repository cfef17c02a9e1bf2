// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/danielhkuo/endorse/db"
)

// SQLStore keeps votes in Postgres or SQLite. Uniqueness and the counter
// increment are enforced by the database, so any number of server instances
// can share one SQLStore database.
type SQLStore struct {
	db           *sql.DB
	dialect      db.Dialect
	maxPerWindow int
	now          func() time.Time
}

func NewSQLStore(conn *sql.DB, dialect db.Dialect, maxPerWindow int) *SQLStore {
	return &SQLStore{
		db:           conn,
		dialect:      dialect,
		maxPerWindow: normalizeMax(maxPerWindow),
		now:          time.Now,
	}
}

func (s *SQLStore) Mode() Mode        { return ModeDB }
func (s *SQLStore) MaxPerWindow() int { return s.maxPerWindow }

func (s *SQLStore) GetCounts(ctx context.Context, itemIDs []string) (map[string]int, error) {
	ids := dedupe(itemIDs)
	out := make(map[string]int, len(ids))
	for _, id := range ids {
		out[id] = 0
	}
	if len(ids) == 0 {
		return out, nil
	}

	var (
		rows *sql.Rows
		err  error
	)
	if s.dialect == db.Postgres {
		rows, err = s.db.QueryContext(ctx, `
			SELECT item_id, count FROM vote_counter WHERE item_id = ANY($1)
		`, pq.Array(ids))
	} else {
		args := make([]any, len(ids))
		marks := make([]string, len(ids))
		for i, id := range ids {
			args[i] = id
			marks[i] = "$" + strconv.Itoa(i+1)
		}
		rows, err = s.db.QueryContext(ctx,
			`SELECT item_id, count FROM vote_counter WHERE item_id IN (`+strings.Join(marks, ", ")+`)`,
			args...)
	}
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read counts: %w", err)
	}
	return out, nil
}

func (s *SQLStore) GetCount(ctx context.Context, itemID string) (int, error) {
	count, err := currentCount(ctx, s.db, itemID)
	if err != nil {
		return 0, fmt.Errorf("query count: %w", err)
	}
	return count, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func currentCount(ctx context.Context, q queryRower, itemID string) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT count FROM vote_counter WHERE item_id = $1
	`, itemID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}

// CastVote records one endorsement inside a single transaction.
func (s *SQLStore) CastVote(ctx context.Context, itemID, userHash string, bucket int64) (CastResult, error) {
	fail := func(step string, err error) (CastResult, error) {
		return CastResult{}, fmt.Errorf("%w: %s: %w", ErrVoteFailed, step, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fail("begin", err)
	}
	defer tx.Rollback()

	if s.dialect == db.Postgres {
		// Serializes one identity's casts across connections and instances.
		// Other identities hash to other keys and never wait here.
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userHash); err != nil {
			return fail("lock identity", err)
		}
	}

	var used int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM vote_marker WHERE user_hash = $1 AND bucket = $2
	`, userHash, bucket).Scan(&used)
	if err != nil {
		return fail("count markers", err)
	}

	// Lifetime check comes first so a repeat click never reports the limit
	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote_marker WHERE item_id = $1 AND user_hash = $2
		)
	`, itemID, userHash).Scan(&exists)
	if err != nil {
		return fail("check marker", err)
	}

	alreadyVoted := func() (CastResult, error) {
		count, err := currentCount(ctx, tx, itemID)
		if err != nil {
			return fail("read count", err)
		}
		return CastResult{Count: count, AlreadyVoted: true, UsedCount: used}, nil
	}

	if exists {
		return alreadyVoted()
	}
	if used >= s.maxPerWindow {
		count, err := currentCount(ctx, tx, itemID)
		if err != nil {
			return fail("read count", err)
		}
		return CastResult{Count: count, LimitReached: true, UsedCount: used}, nil
	}

	now := s.now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO vote_marker (item_id, user_hash, bucket, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, itemID, userHash, bucket, now)
	if err != nil {
		return fail("insert marker", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fail("insert marker", err)
	}
	if inserted == 0 {
		// Lost the race to an identical request
		return alreadyVoted()
	}

	var count int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO vote_counter (item_id, count, updated_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (item_id) DO UPDATE
		SET count = vote_counter.count + 1, updated_at = excluded.updated_at
		RETURNING count
	`, itemID, now).Scan(&count)
	if err != nil {
		return fail("increment counter", err)
	}

	if err := tx.Commit(); err != nil {
		return fail("commit", err)
	}

	return CastResult{Count: count, UsedCount: used + 1}, nil
}

func (s *SQLStore) Stats(ctx context.Context, bucket int64) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(count), 0) FROM vote_counter
	`).Scan(&st.Items, &st.TotalVotes)
	if err != nil {
		return Stats{}, fmt.Errorf("counter stats: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN bucket = $1 THEN 1 ELSE 0 END), 0) FROM vote_marker
	`, bucket).Scan(&st.Markers, &st.MarkersInBucket)
	if err != nil {
		return Stats{}, fmt.Errorf("marker stats: %w", err)
	}
	return st, nil
}
