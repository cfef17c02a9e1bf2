// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package prefetch

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SortMode is the list order the page is currently showing
type SortMode string

const (
	SortDefault        SortMode = "default"
	SortByDate         SortMode = "date"
	SortByEndorsements SortMode = "endorsements"
)

const (
	DefaultViewportSize     = 120
	DefaultViewportDebounce = 40 * time.Millisecond
	DefaultDeferredDebounce = 600 * time.Millisecond
	DefaultFetchTimeout     = 10 * time.Second
)

// Batch is one answer from the counts endpoint
type Batch struct {
	Votes        map[string]int
	WindowBucket int64
}

// Fetcher reads counts for a set of item IDs
type Fetcher interface {
	FetchCounts(ctx context.Context, ids []string) (Batch, error)
}

// Timer is the part of *time.Timer the scheduler needs
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. Tests swap in a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// slot is a replaceable timer. gen invalidates callbacks of replaced timers
// that already started running.
type slot struct {
	timer Timer
	gen   uint64
	full  string // set signature of a pending full fetch, if that is what the timer runs
}

// Scheduler decides which item IDs to request counts for, and when. One
// Scheduler serves one page session.
//
// Update is called whenever the displayed list or its sort changes. It never
// blocks on the network: requests are issued from timer callbacks and run in
// their own goroutines, writing results into the shared Cache.
type Scheduler struct {
	fetcher      Fetcher
	cache        *Cache
	viewportSize int
	shortDelay   time.Duration
	longDelay    time.Duration
	fetchTimeout time.Duration
	afterFunc    AfterFunc
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu             sync.Mutex
	closed         bool
	ids            []string
	viewportSig    string
	fullSig        string // set signature of the last full fetch issued
	deferredSig    string
	issuedSig      string
	fullPrefetched bool
	short          slot
	long           slot
}

type Option func(*Scheduler)

func WithViewportSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.viewportSize = n
		}
	}
}

// WithDebounce sets the viewport and deferred debounce delays
func WithDebounce(short, long time.Duration) Option {
	return func(s *Scheduler) {
		s.shortDelay, s.longDelay = short, long
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.fetchTimeout = d }
}

func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) { s.afterFunc = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func NewScheduler(fetcher Fetcher, cache *Cache, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		fetcher:      fetcher,
		cache:        cache,
		viewportSize: DefaultViewportSize,
		shortDelay:   DefaultViewportDebounce,
		longDelay:    DefaultDeferredDebounce,
		fetchTimeout: DefaultFetchTimeout,
		afterFunc:    realAfterFunc,
		logger:       slog.Default(),
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update records the current ordered ID list and sort, and (re)arms the
// timers that will fetch counts for it.
func (s *Scheduler) Update(ids []string, sort SortMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ids = append([]string(nil), ids...)
	if len(s.ids) == 0 {
		s.stop(&s.short)
		s.stop(&s.long)
		return
	}

	if sort == SortByEndorsements {
		// Counts re-sort the list, so only a change of membership refetches
		sig := SetSignature(s.ids)
		if sig == s.fullSig || (s.short.timer != nil && sig == s.short.full) {
			return
		}
		s.stop(&s.long)
		all := s.ids
		s.schedule(&s.short, s.shortDelay, func() {
			s.fullSig = sig
			s.fullPrefetched = true
			s.stop(&s.long)
			s.issue(all)
		})
		s.short.full = sig
		return
	}

	viewport := s.ids[:min(len(s.ids), s.viewportSize)]
	if sig := Signature(viewport); sig != s.viewportSig {
		s.viewportSig = sig
		s.schedule(&s.short, s.shortDelay, func() { s.issue(viewport) })
	}

	if len(s.ids) > s.viewportSize && !s.fullPrefetched {
		sig := Signature(s.ids)
		if sig != s.deferredSig || s.long.timer == nil {
			s.deferredSig = sig
			s.schedule(&s.long, s.longDelay, s.deferred)
		}
	}
}

// deferred fetches the whole current list once per session
func (s *Scheduler) deferred() {
	if s.fullPrefetched {
		return
	}
	s.fullPrefetched = true
	s.fullSig = SetSignature(s.ids)
	s.issue(s.ids)
}

// schedule replaces the timer in sl. fn runs with s.mu held.
func (s *Scheduler) schedule(sl *slot, d time.Duration, fn func()) {
	s.stop(sl)
	sl.gen++
	gen := sl.gen
	sl.timer = s.afterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || sl.gen != gen {
			return
		}
		sl.timer = nil
		fn()
	})
}

func (s *Scheduler) stop(sl *slot) {
	sl.full = ""
	if sl.timer != nil {
		sl.timer.Stop()
		sl.timer = nil
	}
	sl.gen++
}

// issue starts a fetch for ids unless it repeats the last issued request.
// Caller holds s.mu.
func (s *Scheduler) issue(ids []string) {
	sig := Signature(ids)
	if sig == s.issuedSig {
		return
	}
	s.issuedSig = sig
	seq := s.cache.NextSeq()

	s.wg.Add(1)
	go s.fetch(seq, sig, ids)
}

func (s *Scheduler) fetch(seq uint64, sig string, ids []string) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.ctx, s.fetchTimeout)
	defer cancel()

	batch, err := s.fetcher.FetchCounts(ctx, ids)
	if err != nil {
		// Keep the cached values; allow the same request to be issued again later
		s.logger.Warn("prefetch failed", "error", err, "ids", len(ids), "seq", seq)
		s.mu.Lock()
		if s.issuedSig == sig {
			s.issuedSig = ""
		}
		s.mu.Unlock()
		return
	}

	changed := s.cache.Apply(seq, batch)
	s.logger.Debug("prefetch applied", "ids", len(ids), "changed", len(changed), "seq", seq)
}

// Wait blocks until in-flight fetches have finished
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close stops pending timers, cancels in-flight fetches and waits for them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stop(&s.short)
	s.stop(&s.long)
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
