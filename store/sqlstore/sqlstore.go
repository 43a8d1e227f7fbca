// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/daily-pick/db"
	"github.com/danielhkuo/daily-pick/models"
	"github.com/danielhkuo/daily-pick/store"
)

// Store persists vote documents in SQLite or PostgreSQL
type Store struct {
	db      *sql.DB
	dialect string
}

var _ store.Backend = (*Store)(nil)

// Open connects to the database and creates the schema.
// For SQLite, dsn is a file path (or ":memory:").
func Open(ctx context.Context, dialect, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database url is required")
	}

	driver := dialect
	switch dialect {
	case db.DialectSQLite:
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			dsn = filepath.Clean(dsn) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
		}
	case db.DialectPostgres:
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect, err)
	}

	s, err := New(conn, dialect)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection and creates the schema
func New(conn *sql.DB, dialect string) (*Store, error) {
	if dialect == db.DialectSQLite {
		// one writer; also keeps ":memory:" databases on a single connection
		conn.SetMaxOpenConns(1)
	}
	if err := db.CreateSchema(conn, dialect); err != nil {
		return nil, err
	}
	return &Store{db: conn, dialect: dialect}, nil
}

func (s *Store) ReadCurrent(ctx context.Context) (*models.VoteDocument, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.bind(`
		SELECT payload FROM current_vote WHERE id = 1
	`)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("query current document: %w", err)
	}

	var doc models.VoteDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode current document: %w", err)
	}
	return &doc, nil
}

func (s *Store) WriteCurrent(ctx context.Context, doc *models.VoteDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode current document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.bind(`
		INSERT INTO current_vote (id, vote_date, payload, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET vote_date = excluded.vote_date, payload = excluded.payload, updated_at = excluded.updated_at
	`), doc.Date, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert current document: %w", err)
	}
	return nil
}

func (s *Store) WriteArchive(ctx context.Context, doc *models.VoteDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode archive %s: %w", doc.Date, err)
	}

	_, err = s.db.ExecContext(ctx, s.bind(`
		INSERT INTO vote_archive (vote_date, payload, archived_at)
		VALUES (?, ?, ?)
		ON CONFLICT (vote_date) DO UPDATE SET payload = excluded.payload
	`), doc.Date, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert archive %s: %w", doc.Date, err)
	}
	return nil
}

func (s *Store) ReadArchive(ctx context.Context) ([]store.ArchiveEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vote_date, payload FROM vote_archive ORDER BY vote_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var entries []store.ArchiveEntry
	for rows.Next() {
		var (
			entry   store.ArchiveEntry
			payload []byte
		)
		if err := rows.Scan(&entry.Date, &payload); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		var doc models.VoteDocument
		if err := json.Unmarshal(payload, &doc); err != nil {
			entry.Err = fmt.Errorf("decode archive %s: %w", entry.Date, err)
		} else {
			entry.Doc = &doc
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive: %w", err)
	}
	return entries, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection
func (s *Store) DB() *sql.DB {
	return s.db
}

// bind rewrites ? placeholders to $N for PostgreSQL
func (s *Store) bind(query string) string {
	if s.dialect != db.DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
