// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/endorse/catalog"
	"github.com/danielhkuo/endorse/models"
	"github.com/danielhkuo/endorse/testutil"
	"github.com/danielhkuo/endorse/votes"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	cfg := testutil.GetTestConfig()
	return NewRouter(votes.NewMemoryStore(cfg.VoteMaxPerWindow), cfg, nil)
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "endorse API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	mux := newTestMux(t)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"DELETE endorsements", "DELETE", "/endorsements", http.StatusMethodNotAllowed},
		{"PUT endorsements", "PUT", "/endorsements", http.StatusMethodNotAllowed},
		{"unknown path", "GET", "/items", http.StatusNotFound},
		{"GET without ids reaches handler", "GET", "/endorsements", http.StatusBadRequest},
		{"POST without body reaches handler", "POST", "/endorsements", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}

// TestEndorsementRoundTrip drives the routes the way a storefront does:
// read, cast, read again
func TestEndorsementRoundTrip(t *testing.T) {
	cfg := testutil.GetTestConfig()
	mux := NewRouter(votes.NewMemoryStore(1), cfg, catalog.New([]string{"X1", "X9"}))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/endorsements?ids=X1,X9", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var before models.CountsResponse
	testutil.AssertJSON(t, w, &before)
	if before.Votes["X1"] != 0 || before.Votes["X9"] != 0 {
		t.Fatalf("Expected zero counts, got %v", before.Votes)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/endorsements",
		models.CastVoteRequest{ItemID: "X1", ClientID: "browser-1"}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.MakeRequest("POST", "/endorsements",
		models.CastVoteRequest{ItemID: "NOT_LISTED", ClientID: "browser-1"}, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/endorsements?ids=X1,X9", nil))
	var after models.CountsResponse
	testutil.AssertJSON(t, w, &after)
	if after.Votes["X1"] != 1 || after.Votes["X9"] != 0 {
		t.Errorf("Expected X1=1 X9=0, got %v", after.Votes)
	}
	if after.Mode != "memory" {
		t.Errorf("Expected memory mode, got %q", after.Mode)
	}
}

func TestResponsesAreJSON(t *testing.T) {
	mux := newTestMux(t)

	for _, path := range []string{"/endorsements?ids=a", "/endorsements?health", "/endorsements"} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("%s: expected JSON, got %q", path, ct)
		}
	}
}
