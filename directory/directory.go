// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package directory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/danielhkuo/daily-pick/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var ErrInvalidQuery = errors.New("invalid query")

// Query selects one page of the directory. Date, when set, is an exact
// calendar-day filter.
type Query struct {
	Page     int
	PageSize int
	Date     string
}

type Page struct {
	Voters []models.VoterRow
	Total  int
}

// Normalize clamps paging values and validates the date filter
func (q Query) Normalize() (Query, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	q.Date = strings.TrimSpace(q.Date)
	if q.Date != "" {
		if _, err := time.Parse(models.DateLayout, q.Date); err != nil {
			return q, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidQuery)
		}
	}
	return q, nil
}

// List flattens the current document and the archive into voter rows and
// returns the requested page. When an archived day has the same date as
// current, only current is used.
func List(current *models.VoteDocument, archive []*models.VoteDocument, q Query) (Page, error) {
	q, err := q.Normalize()
	if err != nil {
		return Page{}, err
	}

	seen := make(map[string]bool)
	var rows []models.VoterRow
	add := func(doc *models.VoteDocument) {
		if doc == nil || seen[doc.Date] {
			return
		}
		seen[doc.Date] = true
		if q.Date != "" && doc.Date != q.Date {
			return
		}
		rows = append(rows, Rows(doc)...)
	}
	add(current)
	for _, doc := range archive {
		add(doc)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		return a.UserID < b.UserID
	})

	page := Page{Total: len(rows), Voters: []models.VoterRow{}}
	offset := (q.Page - 1) * q.PageSize
	if offset >= len(rows) {
		return page, nil
	}
	end := min(offset+q.PageSize, len(rows))
	page.Voters = append(page.Voters, rows[offset:end]...)
	return page, nil
}

// Rows projects every voter record of doc
func Rows(doc *models.VoteDocument) []models.VoterRow {
	rows := make([]models.VoterRow, 0, len(doc.VoterRecords))
	for id, rec := range doc.VoterRecords {
		rows = append(rows, models.VoterRow{
			UserID:    id,
			Date:      doc.Date,
			Option:    rec.Option,
			IP:        rec.IP,
			Timestamp: rec.Timestamp,
			Browser:   rec.Browser,
			OS:        rec.OS,
			Device:    rec.Device,
			UA:        rec.UA,
		})
	}
	return rows
}
