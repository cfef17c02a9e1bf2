// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"context"
	"errors"
)

// ErrVoteFailed marks a storage failure during CastVote. The vote may or may
// not have been recorded; callers should re-read the count for display.
var ErrVoteFailed = errors.New("vote_failed")

// DefaultMaxPerWindow is how many distinct items one identity may endorse per bucket
const DefaultMaxPerWindow = 1

// Mode names the active backend in API responses
type Mode string

const (
	ModeDB     Mode = "db"
	ModeMemory Mode = "memory"
)

// CastResult is the outcome of one CastVote call. AlreadyVoted and
// LimitReached are policy outcomes, not errors.
type CastResult struct {
	Count        int
	AlreadyVoted bool
	LimitReached bool
	UsedCount    int
}

// Stats is a point-in-time summary for the debug endpoint
type Stats struct {
	Items           int
	Markers         int
	TotalVotes      int
	MarkersInBucket int
}

// Store owns endorsement counters and per-identity markers.
//
// Implementations guarantee, for concurrent callers:
//   - one identity increments an item's count at most once, ever
//   - one identity gets at most MaxPerWindow successful casts per bucket
//   - an already-endorsed item is reported as AlreadyVoted, never LimitReached
type Store interface {
	// GetCounts returns a count for every requested ID, 0 when unknown
	GetCounts(ctx context.Context, itemIDs []string) (map[string]int, error)
	GetCount(ctx context.Context, itemID string) (int, error)
	CastVote(ctx context.Context, itemID, userHash string, bucket int64) (CastResult, error)
	Stats(ctx context.Context, bucket int64) (Stats, error)
	Mode() Mode
	MaxPerWindow() int
}

func normalizeMax(maxPerWindow int) int {
	if maxPerWindow <= 0 {
		return DefaultMaxPerWindow
	}
	return maxPerWindow
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
