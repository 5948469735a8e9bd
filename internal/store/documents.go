package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/openjurist/casepipe/internal/model"
)

// FetchOrder selects candidate ordering for enrichment batches.
type FetchOrder string

const (
	// OrderOldestEnrichmentFirst serves never-enriched documents first, then
	// the ones whose enrichment is most stale.
	OrderOldestEnrichmentFirst FetchOrder = "oldest-enrichment-first"
	// OrderNewestFirst serves the most recently created documents first.
	OrderNewestFirst FetchOrder = "newest-first"
)

// IngestReport summarizes a raw-document load.
type IngestReport struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// InsertDocuments loads raw documents into the source table. Rows whose
// content hash already exists are skipped, so re-ingesting a file is a no-op.
func (s *Store) InsertDocuments(ctx context.Context, docs []model.Document) (*IngestReport, error) {
	report := &IngestReport{}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("begin ingest: %w", err)
	}
	defer tx.Rollback()

	for _, d := range docs {
		meta, err := json.Marshal(d.Metadata)
		if err != nil {
			return report, fmt.Errorf("marshaling metadata for %d: %w", d.ID, err)
		}
		hash := HashRecord(d.ID, d.NaturalKey, d.Content)
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO documents (id, natural_key, content, metadata, content_hash)
			VALUES (?, ?, ?, ?, ?)`,
			d.ID, d.NaturalKey, d.Content, string(meta), hash)
		if err != nil {
			return report, fmt.Errorf("inserting document %d: %w", d.ID, err)
		}
		n, _ := res.RowsAffected()
		if n > 0 {
			report.Inserted++
		} else {
			report.Skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("commit ingest: %w", err)
	}
	return report, nil
}

// FetchDocuments returns up to limit candidate documents in the given order.
func (s *Store) FetchDocuments(ctx context.Context, limit int, order FetchOrder) ([]model.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	orderBy := "enriched_at IS NOT NULL, COALESCE(enriched_at, created_at) ASC"
	if order == OrderNewestFirst {
		orderBy = "created_at DESC"
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, natural_key, COALESCE(content, ''), metadata, created_at
		FROM documents
		ORDER BY %s
		LIMIT ?`, orderBy), limit)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func scanDocument(rows *sql.Rows) (model.Document, error) {
	var d model.Document
	var meta, created string
	if err := rows.Scan(&d.ID, &d.NaturalKey, &d.Content, &meta, &created); err != nil {
		return d, fmt.Errorf("scanning document: %w", err)
	}
	d.CreatedAt = parseSQLiteTime(created)
	if meta != "" && meta != "{}" {
		if err := json.Unmarshal([]byte(meta), &d.Metadata); err != nil {
			return d, fmt.Errorf("parsing metadata for document %d: %w", d.ID, err)
		}
	}
	return d, nil
}
