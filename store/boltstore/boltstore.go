// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/danielhkuo/daily-pick/models"
	"github.com/danielhkuo/daily-pick/store"
)

const (
	currentBucket = "current"
	archiveBucket = "archive"
)

var currentKey = []byte("document")

// Store provides a BoltDB-backed vote store
type Store struct {
	db *bbolt.DB
}

var _ store.Backend = (*Store)(nil)

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ReadCurrent(ctx context.Context) (*models.VoteDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc *models.VoteDocument
	err := s.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket([]byte(currentBucket)).Get(currentKey)
		if payload == nil {
			return store.ErrNoDocument
		}
		doc = &models.VoteDocument{}
		if err := json.Unmarshal(payload, doc); err != nil {
			return fmt.Errorf("unmarshal current document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) WriteCurrent(ctx context.Context, doc *models.VoteDocument) error {
	return s.put(ctx, currentBucket, currentKey, doc)
}

func (s *Store) WriteArchive(ctx context.Context, doc *models.VoteDocument) error {
	if strings.TrimSpace(doc.Date) == "" {
		return fmt.Errorf("archive date is required")
	}
	return s.put(ctx, archiveBucket, []byte(doc.Date), doc)
}

func (s *Store) ReadArchive(ctx context.Context) ([]store.ArchiveEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []store.ArchiveEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(archiveBucket)).Cursor()
		// keys are YYYY-MM-DD, so reverse byte order is newest first
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			entry := store.ArchiveEntry{Date: string(k)}
			var doc models.VoteDocument
			if err := json.Unmarshal(v, &doc); err != nil {
				entry.Err = fmt.Errorf("unmarshal archive %s: %w", k, err)
			} else {
				entry.Doc = &doc
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) put(ctx context.Context, bucket string, key []byte, doc *models.VoteDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("%s bucket is missing", bucket)
		}
		// Update may have waited on the file lock; a caller that gave up
		// in the meantime must not see the write land
		if err := ctx.Err(); err != nil {
			return err
		}
		return b.Put(key, payload)
	})
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{currentBucket, archiveBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}
