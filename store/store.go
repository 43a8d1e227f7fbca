// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/danielhkuo/daily-pick/models"
	"github.com/danielhkuo/daily-pick/votes"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNoDocument         = errors.New("no current document")
	// ErrStaleDocument is returned by Save when the day rolled over after
	// the document was loaded
	ErrStaleDocument = errors.New("document is from an earlier day")
)

// DefaultTimeout bounds every backend call when Options.Timeout is unset
const DefaultTimeout = 5 * time.Second

// Backend persists the current document and the archive.
//
// WriteCurrent must replace the previous document atomically: a concurrent
// ReadCurrent sees either the old or the new document, never a mix.
type Backend interface {
	ReadCurrent(ctx context.Context) (*models.VoteDocument, error)
	WriteCurrent(ctx context.Context, doc *models.VoteDocument) error
	WriteArchive(ctx context.Context, doc *models.VoteDocument) error
	ReadArchive(ctx context.Context) ([]ArchiveEntry, error)
	Close() error
}

// ArchiveEntry is one archived day as read from a backend. Err is set when
// the entry could not be decoded.
type ArchiveEntry struct {
	Date string
	Doc  *models.VoteDocument
	Err  error
}

type Options struct {
	Location *time.Location
	Timeout  time.Duration
	Now      func() time.Time
}

// Store owns all reads and writes of persisted vote state and applies the
// daily rotation policy on every Load.
type Store struct {
	backend Backend
	loc     *time.Location
	timeout time.Duration
	now     func() time.Time

	mu sync.Mutex
}

func New(backend Backend, opts Options) *Store {
	s := &Store{
		backend: backend,
		loc:     opts.Location,
		timeout: opts.Timeout,
		now:     opts.Now,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Today returns the current calendar day in the store's location
func (s *Store) Today() string {
	return votes.Today(s.now(), s.loc)
}

// Now returns the store's clock reading
func (s *Store) Now() time.Time {
	return s.now()
}

// Load returns today's document, archiving and replacing a stale one first.
// The returned document is a private copy.
func (s *Store) Load(ctx context.Context) (*models.VoteDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc *models.VoteDocument
	err := s.call(ctx, "read current", func(ctx context.Context) error {
		d, err := s.backend.ReadCurrent(ctx)
		if errors.Is(err, ErrNoDocument) {
			return nil
		}
		doc = d
		return err
	})
	if err != nil {
		return nil, err
	}

	today := s.Today()
	current, archive := votes.Rotate(doc, today)
	if archive != nil {
		slog.Info("archiving stale vote document", "date", archive.Date, "today", today)
		if err := s.archive(ctx, archive); err != nil {
			return nil, err
		}
	} else if doc != nil && doc.Date != today {
		slog.Info("stale vote document is empty, skipping archive", "date", doc.Date)
	}

	if current != doc {
		if err := s.save(ctx, current); err != nil {
			return nil, err
		}
	} else if err := votes.Validate(doc); err != nil {
		slog.Warn("persisted vote document is inconsistent", "date", doc.Date, "error", err)
	}

	return current.Clone(), nil
}

// Save persists doc as the current document. A document dated before today
// is refused with ErrStaleDocument: its day has been (or is about to be)
// archived, and the caller must reload.
func (s *Store) Save(ctx context.Context, doc *models.VoteDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if today := s.Today(); doc.Date != today {
		return fmt.Errorf("save %s on %s: %w", doc.Date, today, ErrStaleDocument)
	}
	return s.save(ctx, doc)
}

// ListArchive returns all archived documents, newest first. Entries that
// cannot be decoded are skipped.
func (s *Store) ListArchive(ctx context.Context) ([]*models.VoteDocument, error) {
	var entries []ArchiveEntry
	err := s.call(ctx, "read archive", func(ctx context.Context) error {
		var err error
		entries, err = s.backend.ReadArchive(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	docs := make([]*models.VoteDocument, 0, len(entries))
	for _, e := range entries {
		if e.Err != nil || e.Doc == nil {
			slog.Warn("skipping unreadable archive entry", "date", e.Date, "error", e.Err)
			continue
		}
		docs = append(docs, e.Doc.Clone())
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Date > docs[j].Date
	})
	return docs, nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) save(ctx context.Context, doc *models.VoteDocument) error {
	return s.call(ctx, "write current", func(ctx context.Context) error {
		return s.backend.WriteCurrent(ctx, doc)
	})
}

// archive persists doc under its date. Only rotation calls it, once per
// closed day, with the store lock held.
func (s *Store) archive(ctx context.Context, doc *models.VoteDocument) error {
	if _, err := time.Parse(models.DateLayout, doc.Date); err != nil {
		return fmt.Errorf("archive: invalid date %q: %w", doc.Date, err)
	}
	return s.call(ctx, "write archive", func(ctx context.Context) error {
		return s.backend.WriteArchive(ctx, doc)
	})
}

// call runs fn with the store timeout. Failures, cancellation and timeouts
// are all reported as ErrStorageUnavailable.
func (s *Store) call(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, ctx.Err())
	}
}
