// Package index hands enriched documents off to the downstream full-text
// index service. The hand-off is fire-and-forget from the pipeline's
// perspective: a failure is recorded but never blocks or rolls back storage.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/openjurist/casepipe/internal/model"
)

// Document is the metadata subset the index service ingests.
type Document struct {
	ID            int64  `json:"id"`
	NaturalKey    string `json:"natural_key"`
	DocumentType  string `json:"document_type"`
	CourtID       string `json:"court_id,omitempty"`
	CourtName     string `json:"court_name,omitempty"`
	JudgeName     string `json:"judge_name,omitempty"`
	CitationCount int    `json:"citation_count"`
	IsValidated   bool   `json:"is_validated"`
	Content       string `json:"content,omitempty"`
}

// Result is the index service's response contract.
type Result struct {
	IndexedCount int      `json:"indexed_count"`
	Status       string   `json:"status"`
	Errors       []string `json:"errors,omitempty"`
}

// Indexer ships a batch of index-ready documents downstream.
type Indexer interface {
	IndexBatch(ctx context.Context, docs []Document) (*Result, error)
}

// FromRecord projects an enriched record onto the index document shape.
func FromRecord(r *model.EnrichedRecord) Document {
	return Document{
		ID:            r.DocumentID,
		NaturalKey:    r.NaturalKey,
		DocumentType:  string(r.Type),
		CourtID:       r.Court.CourtID,
		CourtName:     r.Court.Name,
		JudgeName:     r.Judge.NameFound,
		CitationCount: len(r.Citations),
		IsValidated:   r.Court.Validation.Valid() && r.Judge.Validation.Valid(),
		Content:       r.Content,
	}
}

// HTTPIndexer posts batches to the index service's bulk endpoint, throttled
// so a large run cannot overwhelm the service.
type HTTPIndexer struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewHTTPIndexer creates an indexer for the given bulk endpoint.
// requestsPerSecond <= 0 disables throttling.
func NewHTTPIndexer(endpoint string, requestsPerSecond float64) *HTTPIndexer {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &HTTPIndexer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  limiter,
	}
}

// IndexBatch posts the documents and decodes the service response. Any
// non-2xx status is an error; the caller decides how fatal that is.
func (h *HTTPIndexer) IndexBatch(ctx context.Context, docs []Document) (*Result, error) {
	if len(docs) == 0 {
		return &Result{Status: "ok"}, nil
	}
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("index rate limiter: %w", err)
		}
	}

	body, err := json.Marshal(map[string]any{"documents": docs})
	if err != nil {
		return nil, fmt.Errorf("marshaling index batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building index request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting index batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("index service returned %s", resp.Status)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding index response: %w", err)
	}
	return &result, nil
}

// Noop discards batches. Used when no index endpoint is configured.
type Noop struct{}

// IndexBatch reports every document as indexed without doing anything.
func (Noop) IndexBatch(ctx context.Context, docs []Document) (*Result, error) {
	return &Result{IndexedCount: len(docs), Status: "skipped"}, nil
}
