// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"regexp"
	"strings"
)

const (
	// MaxBatchIDs bounds one batch read
	MaxBatchIDs = 5000
	// MaxClientIDLen bounds the client-generated cid
	MaxClientIDLen = 128
)

var itemIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidItemID reports whether id is an acceptable item identifier
func ValidItemID(id string) bool {
	return itemIDPattern.MatchString(id)
}

// ParseItemIDs splits a comma-separated list, drops malformed entries and
// duplicates, and keeps first-seen order. It stops after limit+1 valid IDs so
// callers can detect oversized requests without holding all of them.
func ParseItemIDs(raw string, limit int) []string {
	seen := make(map[string]struct{})
	var ids []string
	for part := range strings.SplitSeq(raw, ",") {
		id := strings.TrimSpace(part)
		if !ValidItemID(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if len(ids) > limit {
			break
		}
	}
	return ids
}
