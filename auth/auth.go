// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/google/uuid"
)

// identityHashBytes is how much of the HMAC sum is kept (128 bits)
const identityHashBytes = 16

// NewClientID returns a fresh opaque client ID for browsers or tools that
// don't already persist one.
func NewClientID() string {
	return uuid.NewString()
}

// HashIdentity derives the dedup key for one visitor from the client-supplied
// ID plus the network and agent signals the server observed. The salt keys the
// HMAC so nobody without it can recompute the mapping from a leaked client ID.
//
// Never fails; empty inputs are hashed as-is.
func HashIdentity(clientID, ip, userAgent, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	writeField(h, clientID)
	writeField(h, ip)
	writeField(h, userAgent)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:identityHashBytes])
}

// writeField length-prefixes s so ("ab","c") and ("a","bc") hash differently
func writeField(h hash.Hash, s string) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}

// HashIP creates a one-way hash of an IP address for request logs
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for log correlation
	return hex.EncodeToString(sum[:8])
}
