package index

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openjurist/casepipe/internal/model"
)

func TestHTTPIndexer_PostsBatch(t *testing.T) {
	var received struct {
		Documents []Document `json:"documents"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(Result{IndexedCount: len(received.Documents), Status: "ok"})
	}))
	defer srv.Close()

	idx := NewHTTPIndexer(srv.URL, 0)
	docs := []Document{
		{ID: 1, NaturalKey: "2:21-cv-00001", DocumentType: "opinion", CourtID: "txed"},
		{ID: 2, NaturalKey: "2:21-cv-00002", DocumentType: "docket"},
	}

	result, err := idx.IndexBatch(context.Background(), docs)
	if err != nil {
		t.Fatalf("index batch: %v", err)
	}
	if result.IndexedCount != 2 || result.Status != "ok" {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(received.Documents) != 2 || received.Documents[0].CourtID != "txed" {
		t.Errorf("unexpected payload: %+v", received.Documents)
	}
}

func TestHTTPIndexer_EmptyBatchSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty batch must not reach the service")
	}))
	defer srv.Close()

	idx := NewHTTPIndexer(srv.URL, 0)
	result, err := idx.IndexBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != "ok" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestHTTPIndexer_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	idx := NewHTTPIndexer(srv.URL, 0)
	if _, err := idx.IndexBatch(context.Background(), []Document{{ID: 1}}); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestNoop_ReportsSkipped(t *testing.T) {
	result, err := Noop{}.IndexBatch(context.Background(), []Document{{ID: 1}, {ID: 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IndexedCount != 2 || result.Status != "skipped" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestFromRecord(t *testing.T) {
	rec := model.EnrichedRecord{
		DocumentID: 7,
		NaturalKey: "2:21-cv-00007",
		Type:       model.TypeOpinion,
		Content:    "body",
		Court:      model.CourtResolution{Resolved: true, CourtID: "txed", Name: "E.D. Tex."},
		Judge:      model.JudgeAttribution{NameFound: "Rodney Gilstrap", Enhanced: true},
		Citations:  []model.Citation{{Text: "123 F.3d 456"}, {Text: "550 U.S. 544"}},
	}

	doc := FromRecord(&rec)
	if doc.ID != 7 || doc.NaturalKey != "2:21-cv-00007" || doc.DocumentType != "opinion" {
		t.Errorf("identity mismatch: %+v", doc)
	}
	if doc.CourtID != "txed" || doc.CourtName != "E.D. Tex." || doc.JudgeName != "Rodney Gilstrap" {
		t.Errorf("enrichment mismatch: %+v", doc)
	}
	if doc.CitationCount != 2 {
		t.Errorf("expected 2 citations, got %d", doc.CitationCount)
	}
	if !doc.IsValidated {
		t.Error("clean validations should mark the document validated")
	}
}
