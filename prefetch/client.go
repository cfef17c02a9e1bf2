// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package prefetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/endorse/auth"
	"github.com/danielhkuo/endorse/models"
)

const (
	DefaultChunkSize   = 400
	DefaultMaxParallel = 4
)

// VoteFailedError is returned by Cast when the server reported a storage
// failure. Count is the server's best-effort re-read.
type VoteFailedError struct {
	ItemID string
	Count  int
}

func (e *VoteFailedError) Error() string {
	return "vote_failed: " + e.ItemID
}

// StatusError is any other non-200 answer
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the endorsements endpoint. It implements Fetcher and Caster.
type Client struct {
	endpoint    string
	clientID    string
	httpClient  *http.Client
	chunkSize   int
	maxParallel int
}

// NewClient returns a Client for the endorsements endpoint URL, for example
// "https://example.com/endorsements". The Client starts with a freshly minted
// client ID; use WithClientID to reuse one persisted elsewhere.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:    strings.TrimRight(endpoint, "/"),
		clientID:    auth.NewClientID(),
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		chunkSize:   DefaultChunkSize,
		maxParallel: DefaultMaxParallel,
	}
}

// WithHTTPClient replaces the underlying http.Client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithClientID sets the cid sent when Cast is called without one
func (c *Client) WithClientID(cid string) *Client {
	if cid != "" {
		c.clientID = cid
	}
	return c
}

// ClientID returns the default cid
func (c *Client) ClientID() string {
	return c.clientID
}

// WithChunking sets how many IDs go into one request and how many requests
// may run at once.
func (c *Client) WithChunking(size, parallel int) *Client {
	if size > 0 {
		c.chunkSize = size
	}
	if parallel > 0 {
		c.maxParallel = parallel
	}
	return c
}

// FetchCounts reads counts for ids. Large sets are split into chunks fetched
// concurrently; any failed chunk fails the whole batch.
func (c *Client) FetchCounts(ctx context.Context, ids []string) (Batch, error) {
	out := Batch{Votes: make(map[string]int, len(ids))}
	if len(ids) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxParallel)

	for start := 0; start < len(ids); start += c.chunkSize {
		chunk := ids[start:min(start+c.chunkSize, len(ids))]
		g.Go(func() error {
			resp, err := c.fetchChunk(ctx, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for id, n := range resp.Votes {
				out.Votes[id] = n
			}
			out.WindowBucket = max(out.WindowBucket, resp.WindowBucket)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Batch{}, err
	}
	return out, nil
}

func (c *Client) fetchChunk(ctx context.Context, ids []string) (models.CountsResponse, error) {
	var resp models.CountsResponse

	u := c.endpoint + "?ids=" + url.QueryEscape(strings.Join(ids, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return resp, fmt.Errorf("failed to build request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return resp, fmt.Errorf("failed to fetch counts: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return resp, statusError(res)
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return resp, fmt.Errorf("failed to decode counts: %w", err)
	}
	return resp, nil
}

// Cast endorses itemID on behalf of the browser identified by cid. An empty
// cid means the Client's own ID.
func (c *Client) Cast(ctx context.Context, itemID, cid string) (models.CastVoteResponse, error) {
	var resp models.CastVoteResponse
	if cid == "" {
		cid = c.clientID
	}

	body, err := json.Marshal(models.CastVoteRequest{ItemID: itemID, ClientID: cid})
	if err != nil {
		return resp, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return resp, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return resp, fmt.Errorf("failed to cast vote: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
			return resp, fmt.Errorf("failed to decode cast response: %w", err)
		}
		return resp, nil
	case http.StatusInternalServerError:
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		var failed models.VoteFailedResponse
		if json.Unmarshal(raw, &failed) == nil && failed.Error == "vote_failed" {
			return resp, &VoteFailedError{ItemID: itemID, Count: failed.Count}
		}
		return resp, decodeStatusError(res.StatusCode, raw)
	default:
		return resp, statusError(res)
	}
}

func statusError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	return decodeStatusError(res.StatusCode, raw)
}

func decodeStatusError(code int, raw []byte) error {
	var e models.ErrorResponse
	if err := json.Unmarshal(raw, &e); err == nil && e.Message != "" {
		return &StatusError{StatusCode: code, Message: e.Message}
	}
	return &StatusError{StatusCode: code}
}

// Caster casts one endorsement
type Caster interface {
	Cast(ctx context.Context, itemID, cid string) (models.CastVoteResponse, error)
}

// Endorse runs the optimistic flow for one click: show +1 at once, send the
// cast, then replace the overlay with the server's answer. A click on a
// pending or disabled item sends nothing.
func Endorse(ctx context.Context, caster Caster, cache *Cache, itemID, cid string) (View, error) {
	if !cache.MarkPending(itemID) {
		return cache.Get(itemID), nil
	}
	seq := cache.NextSeq()

	resp, err := caster.Cast(ctx, itemID, cid)
	if err != nil {
		var failed *VoteFailedError
		if errors.As(err, &failed) {
			cache.ClearPending(itemID, seq, failed.Count, true)
		} else {
			cache.ClearPending(itemID, seq, 0, false)
		}
		return cache.Get(itemID), err
	}

	cache.Resolve(seq, resp)
	return cache.Get(itemID), nil
}
