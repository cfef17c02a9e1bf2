// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package catalog holds an optional snapshot of item IDs the marketplace
// currently lists. Endorsements for IDs outside a loaded snapshot are rejected;
// without a snapshot every well-formed ID is accepted.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

var ErrEmpty = errors.New("catalog snapshot has no items")

// Snapshot is safe for concurrent use. The server reloads it on SIGHUP.
// The zero value and a nil *Snapshot both report "not loaded".
type Snapshot struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func New(ids []string) *Snapshot {
	s := &Snapshot{}
	s.Replace(ids)
	return s
}

// LoadFile reads a JSON array of IDs (["a","b"]) or of objects with an "id"
// field ([{"id":"a"}]).
func LoadFile(path string) (*Snapshot, error) {
	s := &Snapshot{}
	if err := s.ReloadFile(path); err != nil {
		return nil, err
	}
	return s, nil
}

// ReloadFile replaces the contents with the IDs listed in path. On any error
// the current contents are kept.
func (s *Snapshot) ReloadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	ids, err := parse(data)
	if err != nil {
		return fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(ids) == 0 {
		return ErrEmpty
	}
	s.Replace(ids)
	return nil
}

func parse(data []byte) ([]string, error) {
	data = bytes.TrimSpace(data)

	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil {
		return ids, nil
	}

	var items []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	ids = make([]string, 0, len(items))
	for _, it := range items {
		if it.ID != "" {
			ids = append(ids, it.ID)
		}
	}
	return ids, nil
}

// Replace swaps the snapshot contents
func (s *Snapshot) Replace(ids []string) {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	s.mu.Lock()
	s.ids = m
	s.mu.Unlock()
}

// Lookup reports whether id is listed. loaded is false when there is no
// snapshot to check against, in which case known is meaningless.
func (s *Snapshot) Lookup(id string) (known, loaded bool) {
	if s == nil {
		return false, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.ids) == 0 {
		return false, false
	}
	_, known = s.ids[id]
	return known, true
}

// Len returns the number of listed items
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
