// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/daily-pick/store"
	"github.com/danielhkuo/daily-pick/store/storetest"
)

func TestBackendContract(t *testing.T) {
	storetest.RunBackendTests(t, func(t *testing.T) store.Backend {
		s, err := Open(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.WriteCurrent(ctx, storetest.SampleDocument("2025-03-13")))
	require.NoError(t, s.WriteArchive(ctx, storetest.SampleDocument("2025-03-12")))

	assert.FileExists(t, filepath.Join(dir, "current_vote.json"))
	assert.FileExists(t, filepath.Join(dir, "history", "2025-03-12.json"))

	// no temp files left behind
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, f := range files {
		assert.NotContains(t, f.Name(), ".tmp")
	}
}

func TestReadsOriginalFormat(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	legacy := `{
  "date": "2025-03-13",
  "options": ["tea", "coffee"],
  "votes": {"tea": 1, "coffee": 0},
  "votedUsers": ["u1"],
  "userVotes": {"u1": {"option": "tea", "ip": "::1", "timestamp": "2025-03-13T01:02:03.000Z"}}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "current_vote.json"), []byte(legacy), 0o644))

	doc, err := s.ReadCurrent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tea", "coffee"}, doc.Options)
	assert.Equal(t, "tea", doc.VoterRecords["u1"].Option)
	assert.Equal(t, "::1", doc.VoterRecords["u1"].IP)
}

func TestMalformedArchiveIsReported(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.WriteArchive(ctx, storetest.SampleDocument("2025-03-12")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "history", "2025-03-11.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "history", "README.txt"), []byte("ignored"), 0o644))

	entries, err := s.ReadArchive(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var broken int
	for _, e := range entries {
		if e.Err != nil {
			broken++
			assert.Equal(t, "2025-03-11", e.Date)
		}
	}
	assert.Equal(t, 1, broken)

	// Store drops the broken entry with a warning
	st := store.New(s, store.Options{})
	docs, err := st.ListArchive(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2025-03-12", docs[0].Date)
}

func TestCorruptCurrentIsAnError(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "current_vote.json"), []byte("{"), 0o644))

	_, err = store.New(s, store.Options{}).Load(context.Background())
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)

	// the corrupt file is left for an operator to inspect
	data, err := os.ReadFile(filepath.Join(dir, "current_vote.json"))
	require.NoError(t, err)
	assert.Equal(t, "{", string(data))
}

func TestWriteArchiveRejectsBadDate(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	doc := storetest.SampleDocument("../../etc/passwd")
	assert.Error(t, s.WriteArchive(context.Background(), doc))
}

// cancelOnEncode cancels its context while being encoded, after the
// writer's entry checks have passed
type cancelOnEncode struct {
	cancel context.CancelFunc
}

func (c cancelOnEncode) MarshalJSON() ([]byte, error) {
	c.cancel()
	return json.Marshal(map[string]string{"date": "2025-03-13"})
}

func TestAbandonedWriteIsNotRenamed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "current_vote.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"date":"2025-03-12"}`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	err := writeJSONAtomic(ctx, path, cancelOnEncode{cancel: cancel})
	assert.ErrorIs(t, err, context.Canceled)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-03-12"}`, string(data), "previous document must stay in place")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, f := range files {
		assert.NotContains(t, f.Name(), ".tmp")
	}
}
