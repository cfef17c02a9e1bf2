// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package prefetch

import (
	"sync"

	"github.com/danielhkuo/endorse/models"
)

// State is what an endorsement button should show
type State int

const (
	StateNormal          State = iota // can endorse
	StateAlreadyEndorsed              // disabled, confirmed
	StateRateLimited                  // disabled until the window rolls over
)

func (s State) String() string {
	switch s {
	case StateAlreadyEndorsed:
		return "already_endorsed"
	case StateRateLimited:
		return "rate_limited"
	default:
		return "normal"
	}
}

// View is a read-only projection of one cached item
type View struct {
	Count        int  // last authoritative count from the server
	Known        bool // a count has been received
	Pending      bool // an endorsement is in flight
	Endorsed     bool
	LimitReached bool
}

// Display is the count to render: the authoritative count plus the
// optimistic +1 while an endorsement is pending.
func (v View) Display() int {
	if v.Pending {
		return v.Count + 1
	}
	return v.Count
}

// State derives the button state from the server's flags only
func (v View) State() State {
	switch {
	case v.Endorsed:
		return StateAlreadyEndorsed
	case v.LimitReached:
		return StateRateLimited
	default:
		return StateNormal
	}
}

type entry struct {
	View
	seq uint64 // sequence of the request that last wrote Count
}

// Cache holds endorsement counts shared by every observer on the page.
//
// By default responses are applied in arrival order (last write wins). With
// WithOrderedResponses a response older than the one that last wrote an item
// is ignored for that item.
type Cache struct {
	ordered bool

	mu      sync.Mutex
	seq     uint64
	entries map[string]*entry
	bucket  int64
	hasBkt  bool
	subs    map[int]func(changed []string)
	nextSub int
}

type CacheOption func(*Cache)

// WithOrderedResponses drops out-of-order responses per item
func WithOrderedResponses() CacheOption {
	return func(c *Cache) { c.ordered = true }
}

func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		subs:    make(map[int]func([]string)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NextSeq returns a fresh, increasing request sequence number
func (c *Cache) NextSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

func (c *Cache) get(id string) *entry {
	e, ok := c.entries[id]
	if !ok {
		e = &entry{}
		c.entries[id] = e
	}
	return e
}

// stale reports whether a response with seq must not overwrite e
func (c *Cache) stale(e *entry, seq uint64) bool {
	return c.ordered && seq < e.seq
}

// observeBucket clears rate-limit flags once the server reports a new window
func (c *Cache) observeBucket(bucket int64, changed *[]string) {
	if !c.hasBkt {
		c.bucket, c.hasBkt = bucket, true
		return
	}
	if bucket <= c.bucket {
		return
	}
	c.bucket = bucket
	for id, e := range c.entries {
		if e.LimitReached {
			e.LimitReached = false
			*changed = append(*changed, id)
		}
	}
}

// Apply stores a batch of counts fetched by request seq and returns the IDs
// it changed.
func (c *Cache) Apply(seq uint64, b Batch) []string {
	c.mu.Lock()
	var changed []string
	c.observeBucket(b.WindowBucket, &changed)
	for id, count := range b.Votes {
		e := c.get(id)
		if c.stale(e, seq) {
			continue
		}
		e.seq = max(e.seq, seq)
		if e.Known && e.Count == count {
			continue
		}
		e.Count, e.Known = count, true
		changed = append(changed, id)
	}
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, changed)
	return changed
}

// MarkPending starts the optimistic +1 overlay. It returns false, and changes
// nothing, when the item is already pending or its button is disabled.
func (c *Cache) MarkPending(id string) bool {
	c.mu.Lock()
	e := c.get(id)
	if e.Pending || e.State() != StateNormal {
		c.mu.Unlock()
		return false
	}
	e.Pending = true
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, []string{id})
	return true
}

// Resolve replaces the overlay with the server's answer to a cast
func (c *Cache) Resolve(seq uint64, resp models.CastVoteResponse) {
	c.mu.Lock()
	changed := []string{resp.ItemID}
	c.observeBucket(resp.WindowBucket, &changed)

	e := c.get(resp.ItemID)
	e.Pending = false
	if !c.stale(e, seq) {
		e.seq = max(e.seq, seq)
		e.Count, e.Known = resp.Count, true
	}
	e.Endorsed = !resp.LimitReached
	e.LimitReached = resp.LimitReached
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, changed)
}

// ClearPending drops the overlay after a failed cast. When the failure carried
// a best-effort count it is stored like a fetched one.
func (c *Cache) ClearPending(id string, seq uint64, count int, haveCount bool) {
	c.mu.Lock()
	e := c.get(id)
	e.Pending = false
	if haveCount && !c.stale(e, seq) {
		e.seq = max(e.seq, seq)
		e.Count, e.Known = count, true
	}
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, []string{id})
}

// Get returns the current view of one item; unknown items have a zero View
func (c *Cache) Get(id string) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		return e.View
	}
	return View{}
}

// Counts returns display counts for ids, for sorting by endorsements
func (c *Cache) Counts(ids []string) map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(ids))
	for _, id := range ids {
		if e, ok := c.entries[id]; ok {
			out[id] = e.Display()
		} else {
			out[id] = 0
		}
	}
	return out
}

// Subscribe registers fn to be called with the IDs touched by every change.
// fn runs on the goroutine that made the change and must not block.
func (c *Cache) Subscribe(fn func(changed []string)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Cache) subscribers() []func([]string) {
	out := make([]func([]string), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func([]string), changed []string) {
	if len(changed) == 0 {
		return
	}
	for _, fn := range subs {
		fn(changed)
	}
}
