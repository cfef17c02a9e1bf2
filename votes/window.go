// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import "time"

// DefaultWindow is the rate-limit bucket length
const DefaultWindow = 24 * time.Hour

// Window maps wall-clock time onto fixed rate-limit buckets. Buckets start at
// the Unix epoch, so every identity's limit resets at the same instant.
type Window struct {
	Duration time.Duration
}

func NewWindow(d time.Duration) Window {
	if d < time.Millisecond {
		d = DefaultWindow
	}
	return Window{Duration: d}
}

// millis is the bucket length; a zero or sub-millisecond Window uses DefaultWindow
func (w Window) millis() int64 {
	if ms := w.Duration.Milliseconds(); ms > 0 {
		return ms
	}
	return DefaultWindow.Milliseconds()
}

// Bucket returns floor(t / Duration) in milliseconds
func (w Window) Bucket(t time.Time) int64 {
	ms := w.millis()
	n := t.UnixMilli()
	b := n / ms
	if n%ms < 0 {
		b--
	}
	return b
}

// StartsAt returns the first instant of bucket
func (w Window) StartsAt(bucket int64) time.Time {
	return time.UnixMilli(bucket * w.millis()).UTC()
}

// EndsAt returns the first instant after bucket
func (w Window) EndsAt(bucket int64) time.Time {
	return w.StartsAt(bucket + 1)
}
