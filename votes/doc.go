// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package votes implements the vote engine and the daily rotation policy.

Every function here is pure: it takes a document snapshot and returns a new
one, leaving the input untouched. Callers own the load → apply → save
sequence and must serialize it.

# Operations

	doc, err := votes.AddOption(doc, "tea")
	doc, outcome, err := votes.CastVote(doc, votes.Ballot{VoterID: id, Option: "tea"})
	doc, voided, err := votes.DeleteOption(doc, "tea")

# Errors

  - ErrInvalidInput: blank label or option
  - ErrDuplicateOption: label already present
  - ErrUnknownOption: referenced option absent

# Rotation

	current, archive := votes.Rotate(doc, votes.Today(time.Now(), loc))

archive is non-nil only when doc is from an earlier day and is not empty.
*/
package votes
