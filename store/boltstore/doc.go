// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package boltstore keeps the vote documents in a single bbolt file, one
// bucket for the current document and one keyed by date for the archive.
package boltstore
