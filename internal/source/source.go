// Package source supplies raw documents to the pipeline: a store-backed
// source for enrichment batches and a JSONL reader for loading raw documents
// from files.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/openjurist/casepipe/internal/model"
	"github.com/openjurist/casepipe/internal/store"
)

// ErrUnavailable marks a connectivity failure fetching documents. The
// orchestrator treats it as batch-fatal.
var ErrUnavailable = errors.New("document source unavailable")

// Filter narrows a fetch to a candidate ordering.
type Filter struct {
	Order store.FetchOrder
}

// DocumentSource feeds candidate documents to the orchestrator.
type DocumentSource interface {
	FetchBatch(ctx context.Context, limit int, filter Filter) ([]model.Document, error)
}

// StoreSource reads candidates from the casepipe documents table.
type StoreSource struct {
	st *store.Store
}

// NewStoreSource wraps the durable store as a document source.
func NewStoreSource(st *store.Store) *StoreSource {
	return &StoreSource{st: st}
}

// FetchBatch returns up to limit documents with types pre-assigned to
// unknown; type detection runs inside the pipeline.
func (s *StoreSource) FetchBatch(ctx context.Context, limit int, filter Filter) ([]model.Document, error) {
	docs, err := s.st.FetchDocuments(ctx, limit, filter.Order)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return docs, nil
}
