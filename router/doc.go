// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the daily-pick API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(svc, cfg)

# Endpoints

Health:

	GET /health

Voting (JSON):

	GET    /api/votes
	POST   /api/vote
	POST   /api/options
	POST   /api/options/delete
	DELETE /api/options/{option}
	GET    /api/votes/history
	GET    /api/voters

Live updates:

	GET /ws

# Static Files

When cfg.StaticDir is set, GET / serves the frontend build from that
directory. Paths that are not files fall back to index.html.
*/
package router
