package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/endorse/catalog"
	"github.com/danielhkuo/endorse/cliparse"
	"github.com/danielhkuo/endorse/db"
	"github.com/danielhkuo/endorse/middleware"
	"github.com/danielhkuo/endorse/router"
	"github.com/danielhkuo/endorse/votes"
)

func main() {
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if cfg.VoteHashSalt == "" {
		slog.Warn("VOTE_HASH_SALT is empty; identity hashes can be recomputed by anyone")
	}

	ctx := context.Background()

	// Pick the vote backend once
	var store votes.Store
	if cfg.Persistent() {
		dbConn, err := db.Open(ctx, db.Dialect(cfg.DatabaseType), cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()

		if err := db.CreateSchema(ctx, dbConn); err != nil {
			slog.Error("schema creation failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Database schema ready", "type", cfg.DatabaseType)

		store = votes.NewSQLStore(dbConn, db.Dialect(cfg.DatabaseType), cfg.VoteMaxPerWindow)
	} else {
		slog.Warn("DATABASE_URL not set; endorsements are kept in memory and lost on restart")
		store = votes.NewMemoryStore(cfg.VoteMaxPerWindow)
	}

	// Catalog snapshot is optional; an empty snapshot accepts any well-formed ID
	var snap *catalog.Snapshot
	if cfg.CatalogPath != "" {
		snap = &catalog.Snapshot{}
		if err := snap.ReloadFile(cfg.CatalogPath); err != nil {
			slog.Warn("catalog snapshot unavailable; accepting any well-formed item ID", "error", err)
		} else {
			slog.Info("Catalog snapshot loaded", "items", snap.Len())
		}
		go reloadCatalogOnHUP(snap, cfg.CatalogPath)
	}

	// Create router
	mux := router.NewRouter(store, cfg, snap)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "mode", store.Mode(),
		"window_hours", cfg.VoteWindowHours, "max_per_window", cfg.VoteMaxPerWindow)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// reloadCatalogOnHUP re-reads the catalog file on every SIGHUP
func reloadCatalogOnHUP(snap *catalog.Snapshot, path string) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	for range hup {
		if err := snap.ReloadFile(path); err != nil {
			slog.Warn("catalog reload failed; keeping previous snapshot", "error", err)
			continue
		}
		slog.Info("Catalog snapshot reloaded", "items", snap.Len())
	}
}
