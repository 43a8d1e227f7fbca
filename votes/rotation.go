// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votes

import (
	"time"

	"github.com/danielhkuo/daily-pick/models"
)

// Today returns the calendar day of t in loc, formatted as models.DateLayout
func Today(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(models.DateLayout)
}

// Rotate decides whether doc belongs to a prior day.
//
// When doc is dated today it is returned as current with a nil archive.
// Otherwise current is a fresh empty document for today and archive is the
// stale document, or nil when it held nothing worth keeping.
func Rotate(doc *models.VoteDocument, today string) (current, archive *models.VoteDocument) {
	if doc == nil {
		return models.NewVoteDocument(today), nil
	}
	if doc.Date == today {
		return doc, nil
	}
	if !doc.IsEmpty() && doc.Date != "" {
		archive = doc
	}
	return models.NewVoteDocument(today), archive
}
