// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/daily-pick/cliparse"
	"github.com/danielhkuo/daily-pick/hub"
	"github.com/danielhkuo/daily-pick/identity"
	"github.com/danielhkuo/daily-pick/models"
	"github.com/danielhkuo/daily-pick/poll"
	"github.com/danielhkuo/daily-pick/store"
	"github.com/danielhkuo/daily-pick/store/filestore"
)

// TestDay is the calendar day a fresh Clock starts on
const TestDay = "2025-03-14"

// Clock is a settable time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock at noon UTC on TestDay
func NewClock() *Clock {
	return &Clock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// NewStore returns a Store backed by JSON files in a temporary directory
func NewStore(t *testing.T, clock *Clock) (*store.Store, string) {
	t.Helper()

	dir := t.TempDir()
	backend, err := filestore.Open(dir)
	if err != nil {
		t.Fatalf("Failed to open file store: %v", err)
	}
	st := store.New(backend, store.Options{
		Location: time.UTC,
		Timeout:  2 * time.Second,
		Now:      clock.Now,
	})
	t.Cleanup(func() { _ = st.Close() })
	return st, dir
}

// NewService returns a poll service over a temporary file store
func NewService(t *testing.T) (*poll.Service, *Clock) {
	t.Helper()

	clock := NewClock()
	st, _ := NewStore(t, clock)
	return poll.New(st, hub.New()), clock
}

// BackendFailure is the error text a failing FlakyBackend returns. It must
// never reach a client.
const BackendFailure = "open /var/lib/daily-pick/current_vote.json: input/output error"

// FlakyBackend wraps a backend and fails every call while failing is set
type FlakyBackend struct {
	store.Backend
	failing atomic.Bool
}

// Fail makes every following backend call return BackendFailure
func (b *FlakyBackend) Fail() {
	b.failing.Store(true)
}

func (b *FlakyBackend) err() error {
	if b.failing.Load() {
		return errors.New(BackendFailure)
	}
	return nil
}

func (b *FlakyBackend) ReadCurrent(ctx context.Context) (*models.VoteDocument, error) {
	if err := b.err(); err != nil {
		return nil, err
	}
	return b.Backend.ReadCurrent(ctx)
}

func (b *FlakyBackend) WriteCurrent(ctx context.Context, doc *models.VoteDocument) error {
	if err := b.err(); err != nil {
		return err
	}
	return b.Backend.WriteCurrent(ctx, doc)
}

func (b *FlakyBackend) WriteArchive(ctx context.Context, doc *models.VoteDocument) error {
	if err := b.err(); err != nil {
		return err
	}
	return b.Backend.WriteArchive(ctx, doc)
}

func (b *FlakyBackend) ReadArchive(ctx context.Context) ([]store.ArchiveEntry, error) {
	if err := b.err(); err != nil {
		return nil, err
	}
	return b.Backend.ReadArchive(ctx)
}

// NewFlakyService returns a poll service whose storage can be made to fail
func NewFlakyService(t *testing.T) (*poll.Service, *FlakyBackend) {
	t.Helper()

	fs, err := filestore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open file store: %v", err)
	}
	backend := &FlakyBackend{Backend: fs}
	st := store.New(backend, store.Options{
		Location: time.UTC,
		Timeout:  2 * time.Second,
		Now:      NewClock().Now,
	})
	t.Cleanup(func() { _ = st.Close() })
	return poll.New(st, hub.New()), backend
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		Store:          cliparse.StoreFile,
		DataDir:        "./data",
		Timezone:       "UTC",
		Location:       time.UTC,
		StorageTimeout: 2 * time.Second,
		WriteTimeout:   time.Second,
	}
}

// Voter returns a returning voter with a fixed address
func Voter(id string) identity.Voter {
	return identity.Voter{ID: id, Addr: "198.51.100.1"}
}

// CookieHeader returns request headers carrying the identity cookie for id
func CookieHeader(id string) map[string]string {
	return map[string]string{"Cookie": identity.CookieName + "=" + id}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
