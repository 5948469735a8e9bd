package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openjurist/casepipe/internal/model"
)

// rawDocument is the wire shape of one JSONL line from the upstream export.
type rawDocument struct {
	ID         int64          `json:"id"`
	NaturalKey string         `json:"natural_key"`
	Content    *string        `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  string         `json:"created_at"`
}

// ReadJSONL parses a JSONL export of raw documents. Each line is one
// document; blank lines are skipped. Metadata is passed through the strict
// schema; per-line parse warnings are returned alongside the documents
// rather than dropped.
func ReadJSONL(path string) ([]model.Document, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var (
		docs     []model.Document
		warnings []string
		lineNo   int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw rawDocument
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: invalid JSON: %v", lineNo, err))
			continue
		}

		doc := model.Document{
			ID:         raw.ID,
			NaturalKey: strings.TrimSpace(raw.NaturalKey),
		}
		if raw.Content != nil {
			doc.Content = *raw.Content
		}

		meta, metaWarnings := model.ParseMetadata(raw.Metadata)
		doc.Metadata = meta
		for _, w := range metaWarnings {
			warnings = append(warnings, fmt.Sprintf("line %d: %s", lineNo, w))
		}

		if raw.CreatedAt != "" {
			t, err := parseTimestamp(raw.CreatedAt)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("line %d: created_at: %v", lineNo, err))
			} else {
				doc.CreatedAt = t
			}
		}
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now().UTC()
		}

		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return docs, warnings, fmt.Errorf("reading %s: %w", path, err)
	}
	return docs, warnings, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", raw)
}
