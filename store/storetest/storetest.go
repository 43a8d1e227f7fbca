// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package storetest holds a conformance suite shared by the store backends.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/daily-pick/models"
	"github.com/danielhkuo/daily-pick/store"
)

// SampleDocument returns a document with two options and three voters
func SampleDocument(date string) *models.VoteDocument {
	at := time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC)
	doc := models.NewVoteDocument(date)
	doc.Options = []string{"A", "B"}
	doc.Tally = map[string]int{"A": 2, "B": 1}
	doc.VotedUserIDs = []string{"v1", "v2", "v3"}
	doc.VoterRecords = map[string]models.VoteRecord{
		"v1": {Option: "A", IP: "10.0.0.1", Timestamp: at},
		"v2": {Option: "A", IP: "10.0.0.2", Timestamp: at.Add(time.Minute), ClientMeta: models.ClientMeta{Browser: "Firefox", OS: "Linux", Device: "Desktop"}},
		"v3": {Option: "B", IP: "10.0.0.3", Timestamp: at.Add(2 * time.Minute)},
	}
	return doc
}

// RunBackendTests exercises the store.Backend contract. newBackend must
// return an empty backend; it is called once per subtest.
func RunBackendTests(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	ctx := context.Background()

	t.Run("read empty", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.ReadCurrent(ctx)
		assert.ErrorIs(t, err, store.ErrNoDocument)

		entries, err := b.ReadArchive(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("current round trip", func(t *testing.T) {
		b := newBackend(t)
		doc := SampleDocument("2025-03-13")
		require.NoError(t, b.WriteCurrent(ctx, doc))

		got, err := b.ReadCurrent(ctx)
		require.NoError(t, err)
		assert.Equal(t, doc, got)

		next := doc.Clone()
		next.Options = append(next.Options, "C")
		next.Tally["C"] = 0
		require.NoError(t, b.WriteCurrent(ctx, next))

		got, err = b.ReadCurrent(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, got.Options)
	})

	t.Run("archive", func(t *testing.T) {
		b := newBackend(t)
		for _, date := range []string{"2025-03-10", "2025-03-12", "2025-03-11"} {
			require.NoError(t, b.WriteArchive(ctx, SampleDocument(date)))
		}
		// rewriting identical content is allowed
		require.NoError(t, b.WriteArchive(ctx, SampleDocument("2025-03-12")))

		entries, err := b.ReadArchive(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		byDate := make(map[string]*models.VoteDocument)
		for _, e := range entries {
			require.NoError(t, e.Err)
			byDate[e.Date] = e.Doc
		}
		assert.Equal(t, SampleDocument("2025-03-11"), byDate["2025-03-11"])
	})

	t.Run("concurrent readers never see partial writes", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.WriteCurrent(ctx, SampleDocument("2025-03-13")))

		var wg sync.WaitGroup
		stop := make(chan struct{})
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
					}
					doc, err := b.ReadCurrent(ctx)
					if !assert.NoError(t, err) {
						return
					}
					assert.Equal(t, "2025-03-13", doc.Date)
				}
			}()
		}

		doc := SampleDocument("2025-03-13")
		for i := 0; i < 50; i++ {
			label := fmt.Sprintf("opt-%d", i)
			doc.Options = append(doc.Options, label)
			doc.Tally[label] = 0
			require.NoError(t, b.WriteCurrent(ctx, doc))
		}
		close(stop)
		wg.Wait()
	})

	t.Run("cancelled context", func(t *testing.T) {
		b := newBackend(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.Error(t, b.WriteCurrent(cctx, SampleDocument("2025-03-13")))
	})
}
