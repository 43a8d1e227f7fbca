// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists the day's vote document and the archive of closed days.

A Store wraps a Backend (flat JSON files, SQL or bbolt) and adds the two
things every backend shares: daily rotation on load and a bound on how long
any single backend call may take.

# Loading

	doc, err := st.Load(ctx)

Load returns a document dated today in the configured timezone. When the
persisted document belongs to an earlier day and holds anything, it is
written to the archive first and a fresh empty document is returned (and
saved) in its place. A missing document reads as an empty one for today.

# Saving

Save refuses a document dated before today with ErrStaleDocument. A caller
that loaded just before midnight must load again rather than write the
closed day back over the new one.

# Failures

Backend errors and timeouts are reported as ErrStorageUnavailable so callers
can map them to a generic server error without inspecting driver types.

	if errors.Is(err, store.ErrStorageUnavailable) {
		...
	}

# Archive

ListArchive returns every closed day, newest first. Only rotation writes to
the archive, once per closed day.
*/
package store
