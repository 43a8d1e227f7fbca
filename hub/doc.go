// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package hub keeps the set of live streaming connections and fans out
// vote updates to them. Each recipient gets its own payload so that a
// voter's choice is only ever sent back to that voter.
package hub
