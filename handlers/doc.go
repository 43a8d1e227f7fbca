// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the daily-pick API.

# Handler Types

Each handler is a struct over the shared poll service:

  - VoteHandler: Today's state and casting votes
  - OptionHandler: Adding and deleting options
  - HistoryHandler: Archived days and the voter directory

	voteHandler := handlers.NewVoteHandler(svc)

Handlers read the caller's anonymous voter from the request context
(see middleware.WithVoter).

# Endpoints

	GET    /api/votes                    → GetState
	POST   /api/vote                     → CastVote      {"option": "..."}
	POST   /api/options                  → AddOption     {"option": "..."}
	POST   /api/options/delete           → DeleteOption  {"option": "..."}
	DELETE /api/options/{option}         → RemoveOption
	GET    /api/votes/history            → History
	GET    /api/voters?page=&pageSize=&date= → Voters

Every successful mutation is also pushed to open websocket connections.

# Errors

Rejected requests (blank or duplicate options, unknown options, bad
directory queries) return 400 with the reason in the message field.
Storage failures return 500 with a generic "server error" message and
are logged with the underlying cause.
*/
package handlers
