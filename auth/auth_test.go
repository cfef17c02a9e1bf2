// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

func TestNewClientID(t *testing.T) {
	cid := NewClientID()
	if _, err := uuid.Parse(cid); err != nil {
		t.Fatalf("NewClientID() = %q, not a UUID: %v", cid, err)
	}
	if cid == NewClientID() {
		t.Error("NewClientID() produced duplicate IDs")
	}
}

func TestHashIdentity(t *testing.T) {
	tests := []struct {
		name      string
		clientID  string
		ip        string
		userAgent string
		salt      string
	}{
		{"typical browser", "3f1c2e8a-client", "203.0.113.7", "Mozilla/5.0 (X11; Linux x86_64)", "vote-salt"},
		{"IPv6", "cid-2", "2001:db8::1", "curl/8.5.0", "vote-salt"},
		{"empty inputs", "", "", "", ""},
		{"empty salt", "cid-3", "10.0.0.1", "agent", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := HashIdentity(tt.clientID, tt.ip, tt.userAgent, tt.salt)

			if len(hash) != 32 {
				t.Errorf("HashIdentity() length = %d, want 32", len(hash))
			}
			if !isHex(hash) {
				t.Errorf("HashIdentity() = %q, not lowercase hex", hash)
			}
			if again := HashIdentity(tt.clientID, tt.ip, tt.userAgent, tt.salt); again != hash {
				t.Error("HashIdentity() is not deterministic")
			}
		})
	}
}

func TestHashIdentity_Sensitivity(t *testing.T) {
	base := HashIdentity("cid", "198.51.100.4", "agent", "salt")

	variants := map[string]string{
		"client id":  HashIdentity("cid2", "198.51.100.4", "agent", "salt"),
		"ip":         HashIdentity("cid", "198.51.100.5", "agent", "salt"),
		"user agent": HashIdentity("cid", "198.51.100.4", "agent2", "salt"),
		"salt":       HashIdentity("cid", "198.51.100.4", "agent", "salt2"),
	}
	for field, h := range variants {
		if h == base {
			t.Errorf("changing %s did not change the hash", field)
		}
	}
}

func TestHashIdentity_FieldBoundaries(t *testing.T) {
	// Shifting bytes between fields must not collide
	a := HashIdentity("ab", "c", "", "salt")
	b := HashIdentity("a", "bc", "", "salt")
	if a == b {
		t.Error("HashIdentity() collided across field boundaries")
	}
}

func TestHashIdentity_DoesNotLeakInputs(t *testing.T) {
	hash := HashIdentity("visible-client-id", "192.0.2.1", "agent", "salt")
	for _, input := range []string{"visible-client-id", "192.0.2.1"} {
		if strings.Contains(hash, input) {
			t.Errorf("hash %q contains raw input %q", hash, input)
		}
	}
}

func TestHashIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		salt string
	}{
		{"IPv4", "192.168.1.1", "ip-salt"},
		{"IPv6", "2001:0db8:85a3::8a2e:0370:7334", "ip-salt"},
		{"localhost", "127.0.0.1", "ip-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := HashIP(tt.ip, tt.salt)

			if len(hash) != 16 {
				t.Errorf("HashIP() length = %d, want 16", len(hash))
			}
			if !isHex(hash) {
				t.Errorf("HashIP() = %q, not lowercase hex", hash)
			}
			if hash != HashIP(tt.ip, tt.salt) {
				t.Error("HashIP() is not deterministic")
			}
		})
	}

	if HashIP("192.168.1.1", "salt1") == HashIP("192.168.1.1", "salt2") {
		t.Error("HashIP() produced same hash for different salts")
	}
}

func BenchmarkHashIdentity(b *testing.B) {
	for i := 0; i < b.N; i++ {
		HashIdentity("3f1c2e8a-client", "203.0.113.7", "Mozilla/5.0", "vote-salt")
	}
}
