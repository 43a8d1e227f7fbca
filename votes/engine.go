// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/danielhkuo/daily-pick/models"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrDuplicateOption = errors.New("option already exists")
	ErrUnknownOption   = errors.New("option does not exist")
)

// Outcome describes what CastVote did with a ballot
type Outcome int

const (
	Voted Outcome = iota
	Unchanged
	Changed
)

func (o Outcome) String() string {
	switch o {
	case Voted:
		return "voted"
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Ballot is a single vote request from an identified voter
type Ballot struct {
	VoterID string
	Option  string
	Addr    string
	Meta    models.ClientMeta
	At      time.Time
}

// AddOption appends label to the document's options with a zero tally.
// The input document is never modified.
func AddOption(doc *models.VoteDocument, label string) (*models.VoteDocument, error) {
	if strings.TrimSpace(label) == "" {
		return nil, fmt.Errorf("%w: option cannot be empty", ErrInvalidInput)
	}
	if doc.HasOption(label) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateOption, label)
	}

	next := doc.Clone()
	next.Options = append(next.Options, label)
	next.Tally[label] = 0
	return next, nil
}

// CastVote records or changes a voter's choice for the day.
// Missing tally entries count as zero.
func CastVote(doc *models.VoteDocument, b Ballot) (*models.VoteDocument, Outcome, error) {
	if strings.TrimSpace(b.VoterID) == "" {
		return nil, Voted, fmt.Errorf("%w: voter id is required", ErrInvalidInput)
	}
	if b.Option == "" {
		return nil, Voted, fmt.Errorf("%w: choose an option", ErrInvalidInput)
	}
	if !doc.HasOption(b.Option) {
		return nil, Voted, fmt.Errorf("%w: %q", ErrUnknownOption, b.Option)
	}

	prev, hasVoted := doc.VoterRecords[b.VoterID]
	if hasVoted && prev.Option == b.Option {
		return doc.Clone(), Unchanged, nil
	}

	next := doc.Clone()
	outcome := Voted
	if hasVoted {
		outcome = Changed
		if n := next.Tally[prev.Option]; n > 0 {
			next.Tally[prev.Option] = n - 1
		}
	} else {
		next.VotedUserIDs = append(next.VotedUserIDs, b.VoterID)
	}
	next.Tally[b.Option]++

	at := b.At
	if at.IsZero() {
		at = time.Now()
	}
	next.VoterRecords[b.VoterID] = models.VoteRecord{
		Option:     b.Option,
		IP:         b.Addr,
		Timestamp:  at.UTC(),
		ClientMeta: b.Meta,
	}
	return next, outcome, nil
}

// DeleteOption removes label, its tally and every vote cast for it.
// Returns the number of voided votes; affected voters may vote again.
func DeleteOption(doc *models.VoteDocument, label string) (*models.VoteDocument, int, error) {
	if strings.TrimSpace(label) == "" {
		return nil, 0, fmt.Errorf("%w: specify an option to delete", ErrInvalidInput)
	}
	if !doc.HasOption(label) {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownOption, label)
	}

	next := doc.Clone()
	next.Options = slices.DeleteFunc(next.Options, func(o string) bool { return o == label })
	delete(next.Tally, label)

	voided := make(map[string]bool)
	for id, rec := range next.VoterRecords {
		if rec.Option == label {
			delete(next.VoterRecords, id)
			voided[id] = true
		}
	}
	next.VotedUserIDs = slices.DeleteFunc(next.VotedUserIDs, func(id string) bool { return voided[id] })
	return next, len(voided), nil
}

// Validate checks the document invariants and returns the first violation
func Validate(doc *models.VoteDocument) error {
	seen := make(map[string]bool, len(doc.Options))
	for _, o := range doc.Options {
		if seen[o] {
			return fmt.Errorf("duplicate option %q", o)
		}
		seen[o] = true
	}

	sum := 0
	for k, n := range doc.Tally {
		if !seen[k] {
			return fmt.Errorf("tally entry %q is not an option", k)
		}
		if n < 0 {
			return fmt.Errorf("negative tally for %q", k)
		}
		sum += n
	}

	counts := make(map[string]int)
	for id, rec := range doc.VoterRecords {
		if !seen[rec.Option] {
			return fmt.Errorf("voter %s references missing option %q", id, rec.Option)
		}
		counts[rec.Option]++
	}
	if sum != len(doc.VoterRecords) {
		return fmt.Errorf("tally sum %d != %d active votes", sum, len(doc.VoterRecords))
	}
	for k, n := range doc.Tally {
		if counts[k] != n {
			return fmt.Errorf("tally for %q is %d, records say %d", k, n, counts[k])
		}
	}

	if len(doc.VotedUserIDs) != len(doc.VoterRecords) {
		return fmt.Errorf("%d voted users but %d records", len(doc.VotedUserIDs), len(doc.VoterRecords))
	}
	voted := make(map[string]bool, len(doc.VotedUserIDs))
	for _, id := range doc.VotedUserIDs {
		if voted[id] {
			return fmt.Errorf("voter %s listed twice", id)
		}
		voted[id] = true
		if _, ok := doc.VoterRecords[id]; !ok {
			return fmt.Errorf("voter %s has no record", id)
		}
	}
	return nil
}
