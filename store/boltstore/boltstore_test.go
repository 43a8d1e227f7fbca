// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/daily-pick/store"
	"github.com/danielhkuo/daily-pick/store/storetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "votes.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBackendContract(t *testing.T) {
	storetest.RunBackendTests(t, func(t *testing.T) store.Backend {
		return openTemp(t)
	})
}

func TestArchiveIsNewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	for _, d := range []string{"2025-01-31", "2025-02-01", "2024-12-31"} {
		require.NoError(t, s.WriteArchive(ctx, storetest.SampleDocument(d)))
	}

	entries, err := s.ReadArchive(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2025-02-01", entries[0].Date)
	assert.Equal(t, "2025-01-31", entries[1].Date)
	assert.Equal(t, "2024-12-31", entries[2].Date)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}
