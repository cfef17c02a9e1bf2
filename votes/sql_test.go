// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes_test

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/endorse/testutil"
	"github.com/danielhkuo/endorse/votes"
)

func TestSQLStore_StorageFailure(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	store := votes.NewSQLStore(conn, testutil.TestDialect(), 1)
	conn.Close()

	_, err := store.CastVote(context.Background(), "item", "user", 1)
	if err == nil {
		t.Fatal("expected an error from a closed database")
	}
	if !errors.Is(err, votes.ErrVoteFailed) {
		t.Errorf("expected ErrVoteFailed, got %v", err)
	}

	if _, err := store.GetCounts(context.Background(), []string{"item"}); err == nil {
		t.Error("expected GetCounts to fail on a closed database")
	}
}

func TestSQLStore_RespectsExistingMarkers(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	ctx := context.Background()

	// Rows written by another server instance
	testutil.SeedVote(t, conn, "shared-item", "user-1", 3)

	store := votes.NewSQLStore(conn, testutil.TestDialect(), 1)

	res, err := store.CastVote(ctx, "shared-item", "user-1", 4)
	if err != nil {
		t.Fatal(err)
	}
	if !res.AlreadyVoted || res.Count != 1 {
		t.Errorf("expected alreadyVoted with count 1, got %+v", res)
	}

	res, err = store.CastVote(ctx, "shared-item", "user-2", 4)
	if err != nil {
		t.Fatal(err)
	}
	if res.AlreadyVoted || res.Count != 2 {
		t.Errorf("expected a fresh vote with count 2, got %+v", res)
	}

	if n := testutil.CountMarkers(t, conn, "shared-item"); n != 2 {
		t.Errorf("expected 2 markers, got %d", n)
	}
}

func TestSQLStore_LimitLeavesNoRows(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	ctx := context.Background()
	store := votes.NewSQLStore(conn, testutil.TestDialect(), 1)

	if _, err := store.CastVote(ctx, "first", "user", 8); err != nil {
		t.Fatal(err)
	}
	res, err := store.CastVote(ctx, "second", "user", 8)
	if err != nil {
		t.Fatal(err)
	}
	if !res.LimitReached {
		t.Fatalf("expected limitReached, got %+v", res)
	}

	if n := testutil.CountMarkers(t, conn, "second"); n != 0 {
		t.Errorf("rate-limited cast wrote %d markers", n)
	}
	var counters int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote_counter WHERE item_id = $1`, "second").Scan(&counters); err != nil {
		t.Fatal(err)
	}
	if counters != 0 {
		t.Errorf("rate-limited cast created a counter row")
	}
}
