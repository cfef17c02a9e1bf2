// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"context"
	"sync"
)

type itemUser struct {
	itemID   string
	userHash string
}

type userBucket struct {
	userHash string
	bucket   int64
}

// MemoryStore keeps votes in process memory. It upholds the Store guarantees
// for callers in this process only, and everything is lost on restart.
type MemoryStore struct {
	maxPerWindow int

	mu     sync.Mutex
	counts map[string]int
	marked map[itemUser]int64 // bucket the vote was cast in
	used   map[userBucket]int
}

func NewMemoryStore(maxPerWindow int) *MemoryStore {
	return &MemoryStore{
		maxPerWindow: normalizeMax(maxPerWindow),
		counts:       make(map[string]int),
		marked:       make(map[itemUser]int64),
		used:         make(map[userBucket]int),
	}
}

func (s *MemoryStore) Mode() Mode        { return ModeMemory }
func (s *MemoryStore) MaxPerWindow() int { return s.maxPerWindow }

func (s *MemoryStore) GetCounts(ctx context.Context, itemIDs []string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(itemIDs))
	for _, id := range itemIDs {
		out[id] = s.counts[id]
	}
	return out, nil
}

func (s *MemoryStore) GetCount(ctx context.Context, itemID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[itemID], nil
}

// CastVote runs the whole check-then-insert sequence under one lock, which is
// what makes it race-free here.
func (s *MemoryStore) CastVote(ctx context.Context, itemID, userHash string, bucket int64) (CastResult, error) {
	if err := ctx.Err(); err != nil {
		return CastResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ub := userBucket{userHash: userHash, bucket: bucket}
	used := s.used[ub]

	if _, ok := s.marked[itemUser{itemID, userHash}]; ok {
		return CastResult{Count: s.counts[itemID], AlreadyVoted: true, UsedCount: used}, nil
	}
	if used >= s.maxPerWindow {
		return CastResult{Count: s.counts[itemID], LimitReached: true, UsedCount: used}, nil
	}

	s.marked[itemUser{itemID, userHash}] = bucket
	s.used[ub] = used + 1
	s.counts[itemID]++

	return CastResult{Count: s.counts[itemID], UsedCount: used + 1}, nil
}

func (s *MemoryStore) Stats(ctx context.Context, bucket int64) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Items: len(s.counts), Markers: len(s.marked)}
	for _, c := range s.counts {
		st.TotalVotes += c
	}
	for ub, n := range s.used {
		if ub.bucket == bucket {
			st.MarkersInBucket += n
		}
	}
	return st, nil
}
