// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"slices"
	"time"
)

// DateLayout is the calendar-day format used for document and archive keys
const DateLayout = "2006-01-02"

// Request types

type OptionRequest struct {
	Option string `json:"option"`
}

type VoteRequest struct {
	Option string `json:"option"`
}

// Response types

type StateResponse struct {
	Date     string         `json:"date"`
	Options  []string       `json:"options"`
	Votes    map[string]int `json:"votes"`
	HasVoted bool           `json:"hasVoted"`
	UserVote *VoteRecord    `json:"userVote"`
}

type OptionsResponse struct {
	Message string         `json:"message"`
	Options []string       `json:"options"`
	Votes   map[string]int `json:"votes"`
}

type VoteResponse struct {
	Message  string         `json:"message"`
	Options  []string       `json:"options"`
	Votes    map[string]int `json:"votes"`
	HasVoted bool           `json:"hasVoted"`
	UserVote string         `json:"userVote"`
}

type HistoryResponse struct {
	History []*VoteDocument `json:"history"`
}

type VotersResponse struct {
	Voters []VoterRow `json:"voters"`
	Total  int        `json:"total"`
}

// Domain types

// ClientMeta is best-effort information parsed from a user agent
type ClientMeta struct {
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
	Device  string `json:"device,omitempty"`
	UA      string `json:"ua,omitempty"`
}

type VoteRecord struct {
	Option    string    `json:"option"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
	ClientMeta
}

// VoteDocument is the day-scoped aggregate of options, tallies and voter
// records. Archive entries are VoteDocuments keyed by Date.
type VoteDocument struct {
	Date         string                `json:"date"`
	Options      []string              `json:"options"`
	Tally        map[string]int        `json:"votes"`
	VotedUserIDs []string              `json:"votedUsers"`
	VoterRecords map[string]VoteRecord `json:"userVotes"`
}

// NewVoteDocument returns an empty document for the given day
func NewVoteDocument(date string) *VoteDocument {
	return &VoteDocument{
		Date:         date,
		Options:      []string{},
		Tally:        map[string]int{},
		VotedUserIDs: []string{},
		VoterRecords: map[string]VoteRecord{},
	}
}

// IsEmpty reports whether the document has no options and no tally entries.
// Empty documents are not archived on rotation.
func (d *VoteDocument) IsEmpty() bool {
	return len(d.Options) == 0 && len(d.Tally) == 0
}

// HasOption reports whether label is one of the document's options
func (d *VoteDocument) HasOption(label string) bool {
	return slices.Contains(d.Options, label)
}

// Record returns the voter's record for the day, if any
func (d *VoteDocument) Record(voterID string) (VoteRecord, bool) {
	rec, ok := d.VoterRecords[voterID]
	return rec, ok
}

// Clone returns a deep copy. Nil maps and slices are normalized to empty
// ones so documents read from older files behave like fresh ones.
func (d *VoteDocument) Clone() *VoteDocument {
	c := NewVoteDocument(d.Date)
	c.Options = append(c.Options, d.Options...)
	for k, v := range d.Tally {
		c.Tally[k] = v
	}
	c.VotedUserIDs = append(c.VotedUserIDs, d.VotedUserIDs...)
	for k, v := range d.VoterRecords {
		c.VoterRecords[k] = v
	}
	return c
}

// State projects the document for a single voter. Other voters' records are
// never included.
func (d *VoteDocument) State(voterID string) StateResponse {
	resp := StateResponse{
		Date:    d.Date,
		Options: slices.Clone(d.Options),
		Votes:   make(map[string]int, len(d.Tally)),
	}
	for k, v := range d.Tally {
		resp.Votes[k] = v
	}
	if rec, ok := d.VoterRecords[voterID]; ok {
		resp.HasVoted = true
		resp.UserVote = &rec
	}
	return resp
}

// VoterRow is one (date, voter) pair in the voter directory
type VoterRow struct {
	UserID    string    `json:"userId"`
	Date      string    `json:"date"`
	Option    string    `json:"option"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
	UA        string    `json:"ua"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
