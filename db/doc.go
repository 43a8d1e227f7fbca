// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation for the SQL vote stores.

# Schema Creation

CreateSchema initializes all required tables for a dialect:

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables.

# Tables

  - current_vote: exactly one row (id = 1) holding today's document as JSON
  - vote_archive: one row per closed day, keyed by vote_date

PostgreSQL stores payloads as JSONB, SQLite as TEXT.
*/
package db
