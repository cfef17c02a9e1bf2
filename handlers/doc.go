// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the endorsement API.

# Handler Types

EndorsementHandler wraps a votes.Store, the config and an optional catalog
snapshot:

	h := handlers.NewEndorsementHandler(store, cfg, snapshot)

The handler keeps no request state of its own; everything mutable lives in
the store.

# Batch Reads

	GET /endorsements?ids=X1,X9,abc → GetCounts

IDs must match [A-Za-z0-9_-]{1,64}. Malformed entries are dropped and
duplicates collapsed; 400 when nothing valid remains or more than MaxBatchIDs
IDs are sent. The response carries the current windowBucket so clients can
spot a rate-limit rollover.

GET /endorsements?health and ?debug expose backend mode and store counters for
operators. They are not a stable contract.

# Casting

	POST /endorsements {"itemId":"X1","cid":"..."} → Cast

The identity hash is derived from cid, the client IP and the User-Agent. The
bucket is floor(now / window). AlreadyVoted and LimitReached come back as 200
with the matching flag set. A storage failure returns 500 with
error "vote_failed" and a best-effort current count.

Unknown items get 404 only when a catalog snapshot is loaded.
*/
package handlers
