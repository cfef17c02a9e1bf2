// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/endorse/cliparse"
	"github.com/danielhkuo/endorse/db"
)

// TestDBEnv names the variable that points tests at a real Postgres.
// Unset, tests use a private in-memory SQLite database.
const TestDBEnv = "TEST_DATABASE_URL"

var dbSeq atomic.Int64

// TestDialect reports which database SetupTestDB connects to
func TestDialect() db.Dialect {
	if os.Getenv(TestDBEnv) != "" {
		return db.Postgres
	}
	return db.SQLite
}

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	url := os.Getenv(TestDBEnv)
	if url == "" {
		name := strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_", "&", "_").Replace(t.Name())
		url = fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	}

	conn, err := db.Open(ctx, TestDialect(), url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Clean up tables before each test
	if err := db.DropSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}
	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration (in-memory mode)
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		VoteWindowHours:  24,
		VoteMaxPerWindow: 1,
		VoteHashSalt:     "test-hash-salt",
	}
}

// SeedVote inserts a marker and bumps the counter directly, bypassing the store
func SeedVote(t *testing.T, conn *sql.DB, itemID, userHash string, bucket int64) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO vote_marker (item_id, user_hash, bucket, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
	`, itemID, userHash, bucket)
	if err != nil {
		t.Fatalf("Failed to seed marker: %v", err)
	}
	_, err = conn.Exec(`
		INSERT INTO vote_counter (item_id, count, updated_at)
		VALUES ($1, 1, CURRENT_TIMESTAMP)
		ON CONFLICT (item_id) DO UPDATE SET count = vote_counter.count + 1
	`, itemID)
	if err != nil {
		t.Fatalf("Failed to seed counter: %v", err)
	}
}

// CountMarkers returns how many markers exist for an item
func CountMarkers(t *testing.T, conn *sql.DB, itemID string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote_marker WHERE item_id = $1`, itemID).Scan(&n); err != nil {
		t.Fatalf("Failed to count markers: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
