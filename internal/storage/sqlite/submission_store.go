// Package sqlite provides a local SQLite mirror of the submissions table for offline development.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/JakeFAU/dusty-domains/internal/screenshot"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	url        TEXT NOT NULL,
	screenshot TEXT
);
CREATE INDEX IF NOT EXISTS idx_submissions_url ON submissions(url);
`

// SubmissionStore reads and writes submissions in a SQLite database file.
type SubmissionStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*SubmissionStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases consistent across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SubmissionStore{db: db}, nil
}

// Close closes the database.
func (s *SubmissionStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

// Ping checks that the database file is usable.
func (s *SubmissionStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Put inserts a submission.
func (s *SubmissionStore) Put(ctx context.Context, rec screenshot.Record) error {
	if rec.URL == "" {
		return errors.New("record url is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (url, screenshot) VALUES (?, NULLIF(?, ''))`,
		rec.URL, rec.ScreenshotURL,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// FindBySite returns the earliest submission whose url contains site.
func (s *SubmissionStore) FindBySite(ctx context.Context, site string) (screenshot.Record, bool, error) {
	var rec screenshot.Record
	err := s.db.QueryRowContext(ctx,
		`SELECT url, COALESCE(screenshot, '') FROM submissions WHERE instr(url, ?) > 0 ORDER BY id LIMIT 1`,
		site,
	).Scan(&rec.URL, &rec.ScreenshotURL)
	if errors.Is(err, sql.ErrNoRows) {
		return screenshot.Record{}, false, nil
	}
	if err != nil {
		return screenshot.Record{}, false, fmt.Errorf("query submission: %w", err)
	}
	return rec, true, nil
}
