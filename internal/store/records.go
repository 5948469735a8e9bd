package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openjurist/casepipe/internal/model"
)

// ErrTxAborted marks a storage failure that invalidated the whole batch
// transaction. The caller must treat it as fatal: every write in the batch
// has been rolled back.
var ErrTxAborted = errors.New("storage transaction aborted")

// StoredRecord is one persisted enriched document row.
type StoredRecord struct {
	NaturalKey  string    `json:"natural_key"`
	DocumentID  int64     `json:"document_id"`
	Type        string    `json:"document_type"`
	CourtID     string    `json:"court_id,omitempty"`
	CaseName    string    `json:"case_name,omitempty"`
	Content     string    `json:"content,omitempty"`
	ContentHash string    `json:"content_hash"`
	Enrichment  []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecordError is one recoverable per-record storage failure.
type RecordError struct {
	NaturalKey string `json:"natural_key"`
	Message    string `json:"message"`
}

// StorageReport summarizes an upsert batch.
type StorageReport struct {
	Inserted int           `json:"inserted"`
	Updated  int           `json:"updated"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Errors   []RecordError `json:"errors,omitempty"`
}

// FindByNaturalKey returns the live stored record for a natural key, or nil.
func (s *Store) FindByNaturalKey(ctx context.Context, naturalKey string) (*StoredRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT natural_key, document_id, document_type,
		       COALESCE(court_id, ''), COALESCE(case_name, ''), COALESCE(content, ''),
		       content_hash, enrichment_json, created_at, updated_at
		FROM enriched_documents
		WHERE natural_key = ?`, naturalKey)
	return scanStoredRecord(row)
}

func scanStoredRecord(row *sql.Row) (*StoredRecord, error) {
	var r StoredRecord
	var enrichment, created, updated string
	err := row.Scan(&r.NaturalKey, &r.DocumentID, &r.Type, &r.CourtID, &r.CaseName,
		&r.Content, &r.ContentHash, &enrichment, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning stored record: %w", err)
	}
	r.Enrichment = []byte(enrichment)
	r.CreatedAt = parseSQLiteTime(created)
	r.UpdatedAt = parseSQLiteTime(updated)
	return &r, nil
}

// UpsertBatch persists a batch of enriched records inside one transaction.
// Per record: no existing row inserts, a different content hash updates, an
// identical hash skips. A recoverable failure (constraint conflict) records
// the error and continues; a failure that invalidates the transaction rolls
// back every write and returns ErrTxAborted.
func (s *Store) UpsertBatch(ctx context.Context, records []model.EnrichedRecord) (*StorageReport, error) {
	report := &StorageReport{}
	if len(records) == 0 {
		return report, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("%w: begin: %v", ErrTxAborted, err)
	}
	defer tx.Rollback()

	for i := range records {
		if err := s.upsertOne(ctx, tx, &records[i], report); err != nil {
			if isRecoverable(err) {
				report.Failed++
				report.Errors = append(report.Errors, RecordError{
					NaturalKey: records[i].NaturalKey,
					Message:    err.Error(),
				})
				continue
			}
			return report, fmt.Errorf("%w: record %q: %v", ErrTxAborted, records[i].NaturalKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("%w: commit: %v", ErrTxAborted, err)
	}
	return report, nil
}

func (s *Store) upsertOne(ctx context.Context, tx *sql.Tx, rec *model.EnrichedRecord, report *StorageReport) error {
	hash := HashRecord(rec.DocumentID, rec.NaturalKey, rec.Content)

	var existingHash string
	err := tx.QueryRowContext(ctx,
		`SELECT content_hash FROM enriched_documents WHERE natural_key = ?`,
		rec.NaturalKey).Scan(&existingHash)
	exists := true
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return fmt.Errorf("looking up %q: %w", rec.NaturalKey, err)
	}

	if exists && existingHash == hash {
		report.Skipped++
		return nil
	}

	payload, err := marshalEnrichment(rec)
	if err != nil {
		return err
	}

	if exists {
		_, err = tx.ExecContext(ctx, `
			UPDATE enriched_documents
			SET document_id = ?, document_type = ?, court_id = ?, case_name = ?,
			    content = ?, citations_json = ?, judge_info_json = ?,
			    court_info_json = ?, structured_elements_json = ?,
			    enrichment_json = ?, content_hash = ?, updated_at = CURRENT_TIMESTAMP
			WHERE natural_key = ?`,
			rec.DocumentID, string(rec.Type), rec.Court.CourtID, rec.CaseName,
			rec.Content, payload.citations, payload.judge, payload.court,
			payload.structure, payload.full, hash, rec.NaturalKey)
		if err != nil {
			return fmt.Errorf("updating %q: %w", rec.NaturalKey, err)
		}
		report.Updated++
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO enriched_documents
				(natural_key, document_id, document_type, court_id, case_name,
				 content, citations_json, judge_info_json, court_info_json,
				 structured_elements_json, enrichment_json, content_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.NaturalKey, rec.DocumentID, string(rec.Type), rec.Court.CourtID,
			rec.CaseName, rec.Content, payload.citations, payload.judge,
			payload.court, payload.structure, payload.full, hash)
		if err != nil {
			return fmt.Errorf("inserting %q: %w", rec.NaturalKey, err)
		}
		report.Inserted++
	}

	// Stamp the source row so the next fetch orders it behind unenriched work.
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET enriched_at = CURRENT_TIMESTAMP WHERE id = ?`,
		rec.DocumentID); err != nil {
		return fmt.Errorf("stamping document %d: %w", rec.DocumentID, err)
	}
	return nil
}

type enrichmentPayload struct {
	citations string
	judge     string
	court     string
	structure string
	full      string
}

func marshalEnrichment(rec *model.EnrichedRecord) (enrichmentPayload, error) {
	var p enrichmentPayload
	parts := []struct {
		dst *string
		v   any
	}{
		{&p.citations, rec.Citations},
		{&p.judge, rec.Judge},
		{&p.court, rec.Court},
		{&p.structure, rec.Structure},
		{&p.full, rec},
	}
	for _, part := range parts {
		b, err := json.Marshal(part.v)
		if err != nil {
			return p, fmt.Errorf("marshaling enrichment for %q: %w", rec.NaturalKey, err)
		}
		*part.dst = string(b)
	}
	if p.citations == "null" {
		p.citations = "[]"
	}
	return p, nil
}

// isRecoverable reports whether a storage error is a single-row problem the
// batch can survive. Constraint conflicts leave the SQLite transaction
// usable; anything else is treated as a transaction-level failure.
func isRecoverable(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint")
}
