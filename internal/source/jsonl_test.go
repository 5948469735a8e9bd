package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJSONL(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.jsonl")
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestReadJSONL(t *testing.T) {
	path := writeJSONL(t, `
{"id": 1, "natural_key": "2:21-cv-00001", "content": "first", "metadata": {"court_id": "txed"}, "created_at": "2021-03-03T10:00:00Z"}

{"id": 2, "natural_key": "op-2021-881", "content": null, "metadata": {"author_str": "GILSTRAP"}}
`)

	docs, warnings, err := ReadJSONL(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	if docs[0].ID != 1 || docs[0].NaturalKey != "2:21-cv-00001" || docs[0].Content != "first" {
		t.Errorf("doc 0 mismatch: %+v", docs[0])
	}
	if docs[0].Metadata.CourtID != "txed" {
		t.Errorf("expected metadata parsed, got %+v", docs[0].Metadata)
	}
	if docs[0].CreatedAt.IsZero() {
		t.Error("expected created_at parsed")
	}

	// Null content survives as an empty string; validation deals with it
	// downstream.
	if docs[1].Content != "" {
		t.Errorf("expected empty content for null, got %q", docs[1].Content)
	}
	if docs[1].Metadata.AuthorStr != "GILSTRAP" {
		t.Errorf("expected author_str parsed, got %+v", docs[1].Metadata)
	}
	if docs[1].CreatedAt.IsZero() {
		t.Error("expected missing created_at to default to now")
	}
}

func TestReadJSONL_BadLinesWarn(t *testing.T) {
	path := writeJSONL(t, `
{"id": 1, "natural_key": "k-1", "content": "ok", "metadata": {}}
this is not json
{"id": 2, "natural_key": "k-2", "content": "ok", "metadata": {"court_id": ["txed"]}, "created_at": "not a date"}
`)

	docs, warnings, err := ReadJSONL(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 parseable documents, got %d", len(docs))
	}
	// One invalid line, one mistyped metadata value, one bad timestamp.
	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d: %v", len(warnings), warnings)
	}
}

func TestReadJSONL_MissingFile(t *testing.T) {
	if _, _, err := ReadJSONL(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
