// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists completed research summaries in SQLite. The
// pipeline appends one entry per successful run and never touches the
// store mid-run.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/topic-radar/pkg/types"
)

const defaultDBPath = "data/history.db"

// Store manages the research history SQLite database.
type Store struct {
	db        *sql.DB
	listLimit int
}

// NewStore opens or creates the history database at cfg.DBPath, creating
// the parent directory and schema as needed.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	listLimit := cfg.ListLimit
	if listLimit <= 0 {
		listLimit = 50
	}

	s := &Store{db: db, listLimit: listLimit}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS searches (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		topic      TEXT NOT NULL,
		created_at TEXT NOT NULL,
		summary    TEXT NOT NULL
	)`)
	return err
}

// Save persists a research summary and returns its new row ID. The
// created-at timestamp is ISO-8601 UTC.
func (s *Store) Save(ctx context.Context, topic string, summary types.TopicSummary) (int64, error) {
	payload, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("marshaling summary: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO searches (topic, created_at, summary) VALUES (?, ?, ?)",
		topic, now, string(payload))
	if err != nil {
		return 0, fmt.Errorf("inserting history entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted row ID: %w", err)
	}
	return id, nil
}

// List returns the most recent entries, newest first. When limit is zero
// or negative the configured default applies. Rows whose stored summary no
// longer parses are skipped rather than failing the whole listing.
func (s *Store) List(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = s.listLimit
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, topic, created_at, summary FROM searches ORDER BY id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			continue // corrupt row
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}
	return entries, nil
}

// Get fetches one entry by its row ID, or nil when absent.
func (s *Store) Get(ctx context.Context, id int64) (*types.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, topic, created_at, summary FROM searches WHERE id = ?", id)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history entry %d: %w", id, err)
	}
	return &entry, nil
}

// Delete removes an entry by row ID and reports whether a row was deleted.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM searches WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("deleting history entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (types.HistoryEntry, error) {
	var (
		entry     types.HistoryEntry
		createdAt string
		payload   string
	)
	if err := row.Scan(&entry.ID, &entry.Topic, &createdAt, &payload); err != nil {
		return types.HistoryEntry{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return types.HistoryEntry{}, fmt.Errorf("parsing created_at: %w", err)
	}
	entry.CreatedAt = ts

	if err := json.Unmarshal([]byte(payload), &entry.Summary); err != nil {
		return types.HistoryEntry{}, fmt.Errorf("parsing stored summary: %w", err)
	}
	return entry, nil
}
