// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the endorsement API.

	mux := router.NewRouter(store, cfg, snapshot)

# Endpoints

	GET  /health        - Liveness ("OK")
	GET  /endorsements  - Batch counts (?ids=), ?health, ?debug
	POST /endorsements  - Cast an endorsement
	GET  /              - Version banner

Unknown paths get the ServeMux 404; wrong methods on /endorsements get 405.
*/
package router
