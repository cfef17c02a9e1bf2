// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the JSON request and response types for the API.

# Request Types

  - CastVoteRequest: itemId, cid

# Response Types

  - CountsResponse: votes, windowBucket, mode, maxPerWindow
  - CastVoteResponse: itemId, count, alreadyVoted, limitReached, usedCount,
    maxPerWindow, windowBucket, windowEndsAt, mode
  - VoteFailedResponse: error ("vote_failed"), itemId, count, mode
  - ErrorResponse: error, message

# Operational Types

HealthResponse and DebugResponse back the ?health and ?debug affordances.
Their fields may change without notice.
*/
package models
