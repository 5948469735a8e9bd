// Command reenrich re-runs the enhancement stages over stored records whose
// earlier pass came up weak: no resolved court, no enhanced judge, or both.
// Content hashes make the normal pipeline skip unchanged documents, so
// registry updates never reach already-stored records without this tool.
//
// Dry-run mode only reports candidate counts; write mode rewrites the
// enrichment columns in place and prints a before/after report.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/openjurist/casepipe/internal/detect"
	"github.com/openjurist/casepipe/internal/enrich"
	"github.com/openjurist/casepipe/internal/model"
	"github.com/openjurist/casepipe/internal/registry"
)

type candidate struct {
	NaturalKey string
	DocumentID int64
	Content    string
	Metadata   model.Metadata
}

type metrics struct {
	Records        int64            `json:"records"`
	ByType         map[string]int64 `json:"by_type"`
	CourtsResolved int64            `json:"courts_resolved"`
	JudgesEnhanced int64            `json:"judges_enhanced"`
	CourtPct       float64          `json:"court_pct"`
	JudgePct       float64          `json:"judge_pct"`
}

type report struct {
	DBPath      string    `json:"db_path"`
	GeneratedAt time.Time `json:"generated_at"`
	Mode        string    `json:"mode"`
	Limit       int       `json:"limit"`
	Offset      int       `json:"offset"`
	Selected    int       `json:"selected_records"`
	BackupPath  string    `json:"backup_path,omitempty"`
	Before      metrics   `json:"before"`
	After       metrics   `json:"after"`
	Processed   int       `json:"processed"`
	Unchanged   int       `json:"unchanged"`
	Failed      int       `json:"failed"`
	Errors      []string  `json:"errors,omitempty"`
}

func collectCandidates(ctx context.Context, db *sql.DB, limit, offset int) ([]candidate, error) {
	// Weakness is judged from the enrichment payload, not the columns, so a
	// record with a stale court_id column still gets reconsidered.
	rows, err := db.QueryContext(ctx, `
SELECT e.natural_key, e.document_id, COALESCE(e.content, ''), e.enrichment_json,
       COALESCE(d.metadata, '{}')
FROM enriched_documents e
LEFT JOIN documents d ON d.natural_key = e.natural_key
ORDER BY e.updated_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []candidate
	for rows.Next() {
		var c candidate
		var enrichmentJSON, metadataJSON string
		if err := rows.Scan(&c.NaturalKey, &c.DocumentID, &c.Content, &enrichmentJSON, &metadataJSON); err != nil {
			return nil, err
		}

		var rec model.EnrichedRecord
		if err := json.Unmarshal([]byte(enrichmentJSON), &rec); err == nil {
			if rec.Court.Resolved && rec.Judge.Enhanced {
				continue
			}
		}
		if err := json.Unmarshal([]byte(metadataJSON), &c.Metadata); err != nil {
			c.Metadata = model.Metadata{}
		}
		all = append(all, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func calcMetrics(ctx context.Context, db *sql.DB) (metrics, error) {
	m := metrics{ByType: map[string]int64{}}

	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM enriched_documents`).Scan(&m.Records); err != nil {
		return m, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT document_type, COUNT(*) FROM enriched_documents GROUP BY document_type`)
	if err != nil {
		return m, err
	}
	for rows.Next() {
		var t string
		var c int64
		if err := rows.Scan(&t, &c); err != nil {
			rows.Close()
			return m, err
		}
		m.ByType[t] = c
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return m, err
	}
	rows.Close()

	rows, err = db.QueryContext(ctx, `SELECT enrichment_json FROM enriched_documents`)
	if err != nil {
		return m, err
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return m, err
		}
		var rec model.EnrichedRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		if rec.Court.Resolved {
			m.CourtsResolved++
		}
		if rec.Judge.Enhanced {
			m.JudgesEnhanced++
		}
	}
	if err := rows.Err(); err != nil {
		return m, err
	}

	if m.Records > 0 {
		m.CourtPct = float64(m.CourtsResolved) / float64(m.Records) * 100.0
		m.JudgePct = float64(m.JudgesEnhanced) / float64(m.Records) * 100.0
	}
	return m, nil
}

func reenrichOne(enr *enrich.Enricher, c candidate) (model.EnrichedRecord, error) {
	doc := model.Document{
		ID:         c.DocumentID,
		NaturalKey: c.NaturalKey,
		Content:    c.Content,
		Metadata:   c.Metadata,
	}
	doc.Type = detect.DetectType(&doc)
	strat := enrich.StrategyFor(doc.Type)
	out := enrich.StageOutputs{Validation: detect.Validate(&doc)}

	court, err := enr.ResolveCourt(&doc, strat)
	if err != nil {
		return model.EnrichedRecord{}, fmt.Errorf("court: %w", err)
	}
	out.Court = court

	citations, err := enr.ExtractCitations(&doc)
	if err != nil {
		return model.EnrichedRecord{}, fmt.Errorf("citations: %w", err)
	}
	out.Citations = citations

	out.Reporters, err = enr.NormalizeReporters(citations)
	if err != nil {
		return model.EnrichedRecord{}, fmt.Errorf("reporters: %w", err)
	}

	out.Judge, err = enr.AttributeJudge(&doc, strat)
	if err != nil {
		return model.EnrichedRecord{}, fmt.Errorf("judge: %w", err)
	}

	out.Structure = enr.AnalyzeStructure(&doc)
	out.Keywords = enr.ExtractKeywords(&doc)

	return enr.Assemble(&doc, out), nil
}

func writeRecord(ctx context.Context, db *sql.DB, rec model.EnrichedRecord, now string) error {
	enrichmentJSON, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	citationsJSON, _ := json.Marshal(rec.Citations)
	judgeJSON, _ := json.Marshal(rec.Judge)
	courtJSON, _ := json.Marshal(rec.Court)
	structureJSON, _ := json.Marshal(rec.Structure)

	_, err = db.ExecContext(ctx, `
UPDATE enriched_documents
SET document_type = ?, court_id = ?, case_name = ?,
    citations_json = ?, judge_info_json = ?, court_info_json = ?,
    structured_elements_json = ?, enrichment_json = ?, updated_at = ?
WHERE natural_key = ?`,
		string(rec.Type), rec.Court.CourtID, rec.CaseName,
		string(citationsJSON), string(judgeJSON), string(courtJSON),
		string(structureJSON), string(enrichmentJSON), now,
		rec.NaturalKey)
	return err
}

func backupDB(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}

func main() {
	dbPath := flag.String("db", filepath.Join(os.Getenv("HOME"), ".casepipe", "casepipe.db"), "Path to casepipe sqlite db")
	limit := flag.Int("limit", 250, "Max weakly-enriched records to reprocess")
	offset := flag.Int("offset", 0, "Offset into ordered candidate records")
	dryRun := flag.Bool("dry-run", false, "Only report counts, do not mutate")
	backupPath := flag.String("backup", "", "Backup path before write mode")
	reportPath := flag.String("report", "", "Optional path to write JSON report")
	flag.Parse()

	ctx := context.Background()
	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	reg, err := registry.Load()
	if err != nil {
		panic(err)
	}
	enr := enrich.New(reg)

	candidates, err := collectCandidates(ctx, db, *limit, *offset)
	if err != nil {
		panic(err)
	}

	rep := report{
		DBPath:      *dbPath,
		GeneratedAt: time.Now().UTC(),
		Mode:        map[bool]string{true: "dry-run", false: "write"}[*dryRun],
		Limit:       *limit,
		Offset:      *offset,
		Selected:    len(candidates),
	}

	rep.Before, err = calcMetrics(ctx, db)
	if err != nil {
		panic(err)
	}

	if !*dryRun {
		if *backupPath != "" {
			if err := backupDB(*dbPath, *backupPath); err != nil {
				panic(fmt.Errorf("backup failed: %w", err))
			}
			rep.BackupPath = *backupPath
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		for _, c := range candidates {
			rec, err := reenrichOne(enr, c)
			if err != nil {
				rep.Failed++
				rep.Errors = append(rep.Errors, fmt.Sprintf("record %s: %v", c.NaturalKey, err))
				continue
			}
			if !rec.Court.Resolved && !rec.Judge.Enhanced {
				rep.Unchanged++
				continue
			}
			if err := writeRecord(ctx, db, rec, now); err != nil {
				rep.Failed++
				rep.Errors = append(rep.Errors, fmt.Sprintf("record %s write: %v", c.NaturalKey, err))
				continue
			}
			rep.Processed++
		}
	}

	rep.After, err = calcMetrics(ctx, db)
	if err != nil {
		panic(err)
	}

	out, _ := json.MarshalIndent(rep, "", "  ")
	fmt.Println(string(out))
	if *reportPath != "" {
		if err := os.WriteFile(*reportPath, out, 0o644); err != nil {
			panic(err)
		}
	}
}
