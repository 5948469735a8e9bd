// Package store provides the SQLite storage layer for casepipe.
//
// All pipeline data lives in a single SQLite database file:
// - Raw documents awaiting enrichment (the source table)
// - Enriched records, upserted idempotently by natural key + content hash
// - Pipeline run history for verification reports
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.casepipe/casepipe.db"

// DefaultQueryTimeout bounds individual store operations so one slow
// statement cannot stall a whole worker.
const DefaultQueryTimeout = 30 * time.Second

// Config holds configuration for Open.
type Config struct {
	DBPath string
}

// Stats holds observability counters about the store.
type Stats struct {
	DocumentCount int64 `json:"documents"`
	EnrichedCount int64 `json:"enriched"`
	RunCount      int64 `json:"runs"`
	DBSizeBytes   int64 `json:"db_size_bytes"`
}

// Store is the SQLite-backed durable store.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the casepipe database.
// Pass ":memory:" for in-memory databases (testing).
func Open(cfg Config) (*Store, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = expandPath(DefaultDBPath)
	}

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, dbPath: cfg.DBPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for components that manage their own
// transactions.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the database file path.
func (s *Store) Path() string { return s.dbPath }

// Stats returns store-wide counters.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&st.DocumentCount); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enriched_documents`).Scan(&st.EnrichedCount); err != nil {
		return nil, fmt.Errorf("counting enriched documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pipeline_runs`).Scan(&st.RunCount); err != nil {
		return nil, fmt.Errorf("counting runs: %w", err)
	}
	if s.dbPath != ":memory:" {
		if info, err := os.Stat(s.dbPath); err == nil {
			st.DBSizeBytes = info.Size()
		}
	}
	return st, nil
}

// migrate creates all tables if they don't exist.
func (s *Store) migrate() error {
	statements := []string{
		// Raw documents awaiting enrichment.
		`CREATE TABLE IF NOT EXISTS documents (
			id           INTEGER PRIMARY KEY,
			natural_key  TEXT NOT NULL,
			content      TEXT,
			metadata     TEXT NOT NULL DEFAULT '{}',
			content_hash TEXT UNIQUE NOT NULL,
			enriched_at  DATETIME,
			created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_natural_key ON documents(natural_key)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_enriched_at ON documents(enriched_at)`,

		// Enriched records. One live row per natural key; the content hash
		// makes reprocessing unchanged input a no-op.
		`CREATE TABLE IF NOT EXISTS enriched_documents (
			natural_key         TEXT PRIMARY KEY,
			document_id         INTEGER NOT NULL,
			document_type       TEXT NOT NULL,
			court_id            TEXT,
			case_name           TEXT,
			content             TEXT,
			citations_json      TEXT NOT NULL DEFAULT '[]',
			judge_info_json     TEXT NOT NULL DEFAULT '{}',
			court_info_json     TEXT NOT NULL DEFAULT '{}',
			structured_elements_json TEXT NOT NULL DEFAULT '{}',
			enrichment_json     TEXT NOT NULL DEFAULT '{}',
			content_hash        TEXT UNIQUE NOT NULL,
			created_at          DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at          DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_enriched_court ON enriched_documents(court_id)`,

		// Pipeline run history.
		`CREATE TABLE IF NOT EXISTS pipeline_runs (
			run_id       TEXT PRIMARY KEY,
			success      INTEGER NOT NULL,
			report_json  TEXT NOT NULL,
			started_at   DATETIME NOT NULL,
			ended_at     DATETIME NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}

// parseSQLiteTime parses the timestamp formats SQLite hands back for
// DATETIME columns. An unparseable value yields the zero time rather than an
// error; timestamps are advisory, not load-bearing.
func parseSQLiteTime(raw string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
