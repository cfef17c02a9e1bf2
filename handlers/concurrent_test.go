// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/endorse/models"
	"github.com/danielhkuo/endorse/testutil"
	"github.com/danielhkuo/endorse/votes"
)

func concurrentStores(t *testing.T) map[string]votes.Store {
	conn := testutil.SetupTestDB(t)
	t.Cleanup(func() { conn.Close() })

	return map[string]votes.Store{
		"memory": votes.NewMemoryStore(1),
		"sql":    votes.NewSQLStore(conn, testutil.TestDialect(), 1),
	}
}

// TestConcurrentDuplicateClicks verifies that a visitor double-clicking (or
// replaying) a cast gets exactly one counted endorsement
func TestConcurrentDuplicateClicks(t *testing.T) {
	for name, store := range concurrentStores(t) {
		t.Run(name, func(t *testing.T) {
			h := newTestHandler(store, nil)

			numAttempts := 10
			var fresh, already atomic.Int32
			var wg sync.WaitGroup

			for i := 0; i < numAttempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()

					w := httptest.NewRecorder()
					h.Cast(w, castRequest("double-click", "same-client", "same-agent"))
					if w.Code != http.StatusOK {
						t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
						return
					}

					var resp models.CastVoteResponse
					if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
						t.Errorf("Failed to decode response: %v", err)
						return
					}
					if resp.AlreadyVoted {
						already.Add(1)
					} else {
						fresh.Add(1)
					}
				}()
			}

			wg.Wait()

			// Exactly one should count
			if fresh.Load() != 1 {
				t.Errorf("Expected exactly 1 counted vote, got %d", fresh.Load())
			}
			if int(already.Load()) != numAttempts-1 {
				t.Errorf("Expected %d alreadyVoted responses, got %d", numAttempts-1, already.Load())
			}

			count, err := store.GetCount(context.Background(), "double-click")
			if err != nil {
				t.Fatal(err)
			}
			if count != 1 {
				t.Errorf("Expected count 1, got %d", count)
			}
		})
	}
}

// TestConcurrentVisitors verifies that many visitors endorsing the same item
// at once are all counted
func TestConcurrentVisitors(t *testing.T) {
	for name, store := range concurrentStores(t) {
		t.Run(name, func(t *testing.T) {
			h := newTestHandler(store, nil)

			numVisitors := 15
			var successCount atomic.Int32
			var wg sync.WaitGroup

			for i := 0; i < numVisitors; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()

					w := httptest.NewRecorder()
					h.Cast(w, castRequest("hot-item", fmt.Sprintf("visitor-%d", i), "agent"))
					if w.Code != http.StatusOK {
						return
					}
					var resp models.CastVoteResponse
					if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
						t.Errorf("Failed to decode response: %v", err)
						return
					}
					if !resp.AlreadyVoted && !resp.LimitReached {
						successCount.Add(1)
					}
				}(i)
			}

			wg.Wait()

			if int(successCount.Load()) != numVisitors {
				t.Errorf("Expected %d counted votes, got %d", numVisitors, successCount.Load())
			}

			w := httptest.NewRecorder()
			h.GetCounts(w, httptest.NewRequest("GET", "/endorsements?ids=hot-item", nil))
			var counts models.CountsResponse
			testutil.AssertJSON(t, w, &counts)
			if counts.Votes["hot-item"] != numVisitors {
				t.Errorf("Expected count %d, got %d", numVisitors, counts.Votes["hot-item"])
			}
		})
	}
}
