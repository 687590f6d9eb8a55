// Package postgres provides a Postgres mirror of the submissions table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/dusty-domains/internal/screenshot"
)

const defaultTable = "submissions"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for submission lookups.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Ping(context.Context) error
	Close()
}

// SubmissionStore reads submissions from Postgres.
//
// Expected schema:
//
//	CREATE TABLE submissions (
//		id         BIGSERIAL PRIMARY KEY,
//		url        TEXT NOT NULL,
//		screenshot TEXT,
//		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type SubmissionStore struct {
	pool  pool
	table string
}

// NewSubmissionStore creates a Postgres-backed store using the provided config.
func NewSubmissionStore(ctx context.Context, cfg Config) (*SubmissionStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &SubmissionStore{pool: p, table: table}, nil
}

// NewSubmissionStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewSubmissionStoreWithPool(p pool, table string) (*SubmissionStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &SubmissionStore{pool: p, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = defaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *SubmissionStore) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

// Ping checks that the database is reachable.
func (s *SubmissionStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// FindBySite returns the oldest submission whose url contains site.
func (s *SubmissionStore) FindBySite(ctx context.Context, site string) (screenshot.Record, bool, error) {
	query := fmt.Sprintf(`
SELECT url, COALESCE(screenshot, '')
FROM %s
WHERE strpos(url, $1) > 0
ORDER BY created_at
LIMIT 1`, s.table)

	var rec screenshot.Record
	err := s.pool.QueryRow(ctx, query, site).Scan(&rec.URL, &rec.ScreenshotURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return screenshot.Record{}, false, nil
	}
	if err != nil {
		return screenshot.Record{}, false, fmt.Errorf("query submission: %w", err)
	}
	return rec, true, nil
}

// Put inserts a submission.
func (s *SubmissionStore) Put(ctx context.Context, rec screenshot.Record) error {
	if rec.URL == "" {
		return fmt.Errorf("record url is required")
	}
	query := fmt.Sprintf(`INSERT INTO %s (url, screenshot) VALUES ($1, NULLIF($2, ''))`, s.table)
	if _, err := s.pool.Exec(ctx, query, rec.URL, rec.ScreenshotURL); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}
