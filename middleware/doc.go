// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# Voter Identity

WithVoter resolves the anonymous voter for every request and sets the
userId cookie for first-time visitors:

	handler := middleware.WithVoter(mux)

	func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
		voter := middleware.Voter(r)
		...
	}

# Origins

Only the serving host and the configured origins may act for a voter:

	handler := middleware.RequireOrigin(middleware.WithVoter(mux), cfg.AllowedOrigins)
	server := http.Server{
		Handler: middleware.CORS(handler, cfg.AllowedOrigins),
	}

CORS grants credentialed access to the listed origins only; with none
configured it adds no headers at all. RequireOrigin answers 403 to POST and
DELETE requests whose Origin header names any other site. OriginAllowed is
the shared rule, also used by the websocket handshake.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies (capped at MaxBodyBytes):

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
