package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RunRecord is one persisted pipeline run.
type RunRecord struct {
	RunID     string          `json:"run_id"`
	Success   bool            `json:"success"`
	Report    json.RawMessage `json:"report"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at"`
}

// SaveRun persists a finished pipeline run's report for later verification.
func (s *Store) SaveRun(ctx context.Context, r RunRecord) error {
	if r.RunID == "" {
		return errors.New("run record has empty run id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pipeline_runs (run_id, success, report_json, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.RunID, r.Success, string(r.Report),
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.EndedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving run %s: %w", r.RunID, err)
	}
	return nil
}

// LatestRun returns the most recent pipeline run, or nil when none exists.
func (s *Store) LatestRun(ctx context.Context) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, success, report_json, started_at, ended_at
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT 1`)

	var r RunRecord
	var report, started, ended string
	err := row.Scan(&r.RunID, &r.Success, &report, &started, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning latest run: %w", err)
	}
	r.Report = json.RawMessage(report)
	r.StartedAt = parseSQLiteTime(started)
	r.EndedAt = parseSQLiteTime(ended)
	return &r, nil
}
