// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/daily-pick/models"
	"github.com/danielhkuo/daily-pick/store"
)

const (
	currentFile = "current_vote.json"
	historyDir  = "history"
)

// Store keeps the current document in one JSON file and each archived day in
// history/<date>.json under a data directory.
type Store struct {
	dir string

	// serializes writers so a write that outlived its caller's timeout
	// cannot land after a newer one
	mu sync.Mutex
}

var _ store.Backend = (*Store)(nil)

// Open prepares dir (and its history subdirectory) for use
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(filepath.Join(dir, historyDir), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) ReadCurrent(ctx context.Context) (*models.VoteDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, currentFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("read current document: %w", err)
	}

	var doc models.VoteDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode current document: %w", err)
	}
	return &doc, nil
}

func (s *Store) WriteCurrent(ctx context.Context, doc *models.VoteDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeJSONAtomic(ctx, filepath.Join(s.dir, currentFile), doc)
}

func (s *Store) WriteArchive(ctx context.Context, doc *models.VoteDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := time.Parse(models.DateLayout, doc.Date); err != nil {
		return fmt.Errorf("invalid archive date %q", doc.Date)
	}
	return writeJSONAtomic(ctx, filepath.Join(s.dir, historyDir, doc.Date+".json"), doc)
}

func (s *Store) ReadArchive(ctx context.Context) ([]store.ArchiveEntry, error) {
	files, err := os.ReadDir(filepath.Join(s.dir, historyDir))
	if err != nil {
		return nil, fmt.Errorf("read history directory: %w", err)
	}

	entries := make([]store.ArchiveEntry, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := f.Name()
		if f.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}

		entry := store.ArchiveEntry{Date: strings.TrimSuffix(name, ".json")}
		data, err := os.ReadFile(filepath.Join(s.dir, historyDir, name))
		if err != nil {
			entry.Err = err
			entries = append(entries, entry)
			continue
		}
		var doc models.VoteDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			entry.Err = fmt.Errorf("decode %s: %w", name, err)
		} else {
			entry.Doc = &doc
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Store) Close() error {
	return nil
}

// writeJSONAtomic writes v to a temp file in the target directory and
// renames it over path. ctx is checked once more right before the rename so
// a write whose caller already timed out is dropped. A cancellation that
// arrives after that check still lets the rename land.
func writeJSONAtomic(ctx context.Context, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = ctx.Err(); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}

	slog.Debug("wrote vote file", "path", path, "size", humanize.Bytes(uint64(len(data))))
	return nil
}
