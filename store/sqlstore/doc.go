// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sqlstore keeps the vote documents in SQLite (modernc.org/sqlite) or
// PostgreSQL (lib/pq). Tables are created on open; see package db.
package sqlstore
