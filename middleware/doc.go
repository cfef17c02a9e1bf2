// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /endorsements", middleware.WithLogging(cfg.VoteHashSalt, handler))

Logs one line per request with request_id, ip_hash, method, path, status and
duration_ms. 5xx responses log at error level. The request ID is taken from an
incoming X-Request-ID header when present, otherwise a new UUID, and is echoed
back in the response.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows GET, POST and OPTIONS with a Content-Type header. Preflights get 204.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For (first hop), then X-Real-IP, then RemoteAddr without
its port. The result feeds the identity hash; it is never stored.
*/
package middleware
