// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package filestore is the default store backend: current_vote.json plus one
// history/<date>.json file per archived day, written atomically via rename.
package filestore
