// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/endorse/auth"
	"github.com/danielhkuo/endorse/catalog"
	"github.com/danielhkuo/endorse/cliparse"
	"github.com/danielhkuo/endorse/middleware"
	"github.com/danielhkuo/endorse/models"
	"github.com/danielhkuo/endorse/votes"
)

type EndorsementHandler struct {
	store   votes.Store
	cfg     cliparse.Config
	catalog *catalog.Snapshot // nil when no snapshot is configured
	window  votes.Window
	now     func() time.Time
}

func NewEndorsementHandler(store votes.Store, cfg cliparse.Config, snap *catalog.Snapshot) *EndorsementHandler {
	return &EndorsementHandler{
		store:   store,
		cfg:     cfg,
		catalog: snap,
		window:  votes.NewWindow(cfg.WindowDuration()),
		now:     time.Now,
	}
}

// GetCounts handles GET /endorsements?ids=a,b,c
// Also serves the ?health and ?debug operational views
func (h *EndorsementHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	switch {
	case query.Has("health"):
		middleware.JSONResponse(w, http.StatusOK, h.health())
		return
	case query.Has("debug"):
		h.debug(w, r)
		return
	}

	raw := query.Get("ids")
	if raw == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ids is required")
		return
	}

	ids := ParseItemIDs(raw, MaxBatchIDs)
	if len(ids) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "no valid ids")
		return
	}
	if len(ids) > MaxBatchIDs {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at most "+strconv.Itoa(MaxBatchIDs)+" ids per request")
		return
	}

	counts, err := h.store.GetCounts(r.Context(), ids)
	if err != nil {
		slog.Error("failed to read counts", "error", err, "ids", len(ids))
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CountsResponse{
		Votes:        counts,
		WindowBucket: h.window.Bucket(h.now()),
		Mode:         string(h.store.Mode()),
		MaxPerWindow: h.store.MaxPerWindow(),
	})
}

// Cast handles POST /endorsements
func (h *EndorsementHandler) Cast(w http.ResponseWriter, r *http.Request) {
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !ValidItemID(req.ItemID) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "itemId must be 1-64 characters of A-Z, a-z, 0-9, _ or -")
		return
	}

	cid := strings.TrimSpace(req.ClientID)
	if cid == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "cid is required")
		return
	}
	if len(cid) > MaxClientIDLen {
		middleware.ErrorResponse(w, http.StatusBadRequest, "cid must be at most "+strconv.Itoa(MaxClientIDLen)+" characters")
		return
	}

	// Best-effort: without a snapshot every well-formed ID is accepted
	if known, loaded := h.catalog.Lookup(req.ItemID); loaded && !known {
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	}

	userHash := auth.HashIdentity(cid, middleware.GetClientIP(r), r.UserAgent(), h.cfg.VoteHashSalt)
	bucket := h.window.Bucket(h.now())
	mode := string(h.store.Mode())

	res, err := h.store.CastVote(r.Context(), req.ItemID, userHash, bucket)
	if err != nil {
		slog.Error("failed to cast vote", "error", err, "item_id", req.ItemID, "bucket", bucket)

		// Report whatever count we can still read; the vote's fate is unknown
		count, countErr := h.store.GetCount(r.Context(), req.ItemID)
		if countErr != nil {
			slog.Warn("failed to re-read count after vote failure", "error", countErr, "item_id", req.ItemID)
		}
		middleware.JSONResponse(w, http.StatusInternalServerError, models.VoteFailedResponse{
			Error:  votes.ErrVoteFailed.Error(),
			ItemID: req.ItemID,
			Count:  count,
			Mode:   mode,
		})
		return
	}

	switch {
	case res.AlreadyVoted:
		slog.Debug("vote repeated", "item_id", req.ItemID, "count", res.Count)
	case res.LimitReached:
		slog.Info("vote rate limited", "item_id", req.ItemID, "used", res.UsedCount, "bucket", bucket)
	default:
		slog.Info("vote cast", "item_id", req.ItemID, "count", res.Count, "used", res.UsedCount)
	}

	middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{
		ItemID:       req.ItemID,
		Count:        res.Count,
		AlreadyVoted: res.AlreadyVoted,
		LimitReached: res.LimitReached,
		UsedCount:    res.UsedCount,
		MaxPerWindow: h.store.MaxPerWindow(),
		WindowBucket: bucket,
		WindowEndsAt: h.window.EndsAt(bucket),
		Mode:         mode,
	})
}

func (h *EndorsementHandler) health() models.HealthResponse {
	return models.HealthResponse{
		OK:            true,
		Mode:          string(h.store.Mode()),
		MaxPerWindow:  h.store.MaxPerWindow(),
		WindowHours:   h.cfg.VoteWindowHours,
		WindowBucket:  h.window.Bucket(h.now()),
		CatalogLoaded: h.catalog.Len() > 0,
		CatalogItems:  h.catalog.Len(),
	}
}

func (h *EndorsementHandler) debug(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	bucket := h.window.Bucket(now)

	stats, err := h.store.Stats(r.Context(), bucket)
	if err != nil {
		slog.Error("failed to read vote stats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}

	endsAt := h.window.EndsAt(bucket)
	middleware.JSONResponse(w, http.StatusOK, models.DebugResponse{
		HealthResponse:  h.health(),
		Items:           stats.Items,
		Markers:         stats.Markers,
		TotalVotes:      stats.TotalVotes,
		MarkersInBucket: stats.MarkersInBucket,
		WindowEndsAt:    endsAt,
		WindowEndsIn:    humanize.RelTime(endsAt, now, "ago", "from now"),
	})
}
