package models

import "time"

// Request types

type CastVoteRequest struct {
	ItemID   string `json:"itemId"`
	ClientID string `json:"cid"`
}

// Response types

// CountsResponse answers a batch read. WindowBucket lets clients notice a
// rate-limit rollover between polls.
type CountsResponse struct {
	Votes        map[string]int `json:"votes"`
	WindowBucket int64          `json:"windowBucket"`
	Mode         string         `json:"mode"`
	MaxPerWindow int            `json:"maxPerWindow"`
}

type CastVoteResponse struct {
	ItemID       string    `json:"itemId"`
	Count        int       `json:"count"`
	AlreadyVoted bool      `json:"alreadyVoted"`
	LimitReached bool      `json:"limitReached"`
	UsedCount    int       `json:"usedCount"`
	MaxPerWindow int       `json:"maxPerWindow"`
	WindowBucket int64     `json:"windowBucket"`
	WindowEndsAt time.Time `json:"windowEndsAt"`
	Mode         string    `json:"mode"`
}

// VoteFailedResponse is sent with 500 when storage failed mid-cast. Count is
// a best-effort re-read and may be stale.
type VoteFailedResponse struct {
	Error  string `json:"error"`
	ItemID string `json:"itemId"`
	Count  int    `json:"count"`
	Mode   string `json:"mode"`
}

// Operational types (not part of the stable contract)

type HealthResponse struct {
	OK            bool   `json:"ok"`
	Mode          string `json:"mode"`
	MaxPerWindow  int    `json:"maxPerWindow"`
	WindowHours   int    `json:"windowHours"`
	WindowBucket  int64  `json:"windowBucket"`
	CatalogLoaded bool   `json:"catalogLoaded"`
	CatalogItems  int    `json:"catalogItems"`
}

type DebugResponse struct {
	HealthResponse
	Items           int       `json:"items"`
	Markers         int       `json:"markers"`
	TotalVotes      int       `json:"totalVotes"`
	MarkersInBucket int       `json:"markersInBucket"`
	WindowEndsAt    time.Time `json:"windowEndsAt"`
	WindowEndsIn    string    `json:"windowEndsIn"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
