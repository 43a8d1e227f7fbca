// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the daily-pick server.

daily-pick is a same-day voting tool. Everyone shares one list of options,
each browser gets one vote per day (changeable until midnight), tallies
update live over a websocket, and past days are kept in a read-only
archive.

# Starting the Server

With no configuration the server keeps its data as JSON files under ./data:

	go run .

Other stores:

	go run . -s sqlite
	go run . -s bolt -data /var/lib/daily-pick
	DATABASE_URL=postgres://... go run . -s postgres

# Configuration

Settings come from flags, environment variables or a .env file in the
working directory; see package cliparse for the full list. TIMEZONE decides
when the voting day rolls over.

# Architecture

  - models: Vote document and request/response types
  - votes: Vote engine and daily rotation rules
  - store: Persistence with rotation on every load (file, sqlite, postgres, bolt backends)
  - identity: Anonymous voter ids, client IP and user agent parsing
  - hub: Live connection set and fan-out
  - directory: Voter listing for audits
  - poll: The service that ties the above together
  - stream: Websocket protocol
  - handlers, router, middleware: HTTP API
  - cliparse, logging: Configuration and logging setup

See package documentation for each component.
*/
package main
