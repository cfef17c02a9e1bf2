// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/endorse/catalog"
	"github.com/danielhkuo/endorse/cliparse"
	"github.com/danielhkuo/endorse/handlers"
	"github.com/danielhkuo/endorse/middleware"
	"github.com/danielhkuo/endorse/votes"
)

func NewRouter(store votes.Store, cfg cliparse.Config, snap *catalog.Snapshot) *http.ServeMux {
	mux := http.NewServeMux()

	endorsementHandler := handlers.NewEndorsementHandler(store, cfg, snap)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Endorsements (public)
	mux.HandleFunc("GET /endorsements", middleware.WithLogging(cfg.VoteHashSalt, endorsementHandler.GetCounts))
	mux.HandleFunc("POST /endorsements", middleware.WithLogging(cfg.VoteHashSalt, endorsementHandler.Cast))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("endorse API v1"))
	})

	return mux
}
