// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package prefetch

import (
	"encoding/hex"
	"slices"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// maxJoinedSignature is the largest ID set whose signature is the plain joined list
const maxJoinedSignature = 200

// Signature summarizes an ordered ID list. Equal lists give equal signatures.
// Small lists are joined verbatim; large ones become
// "count:first:last:digest" so the string stays short.
func Signature(ids []string) string {
	if len(ids) <= maxJoinedSignature {
		return strings.Join(ids, ",")
	}
	sum := blake3.Sum256([]byte(strings.Join(ids, ",")))
	return strconv.Itoa(len(ids)) + ":" + ids[0] + ":" + ids[len(ids)-1] + ":" + hex.EncodeToString(sum[:16])
}

// SetSignature is Signature over a sorted copy of ids, so the same set in any
// order gives the same result.
func SetSignature(ids []string) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return Signature(sorted)
}
