package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/openjurist/casepipe/internal/enrich"
	"github.com/openjurist/casepipe/internal/index"
	"github.com/openjurist/casepipe/internal/model"
	"github.com/openjurist/casepipe/internal/registry"
	"github.com/openjurist/casepipe/internal/source"
	"github.com/openjurist/casepipe/internal/store"
)

// sliceSource serves a fixed batch of documents.
type sliceSource struct {
	docs []model.Document
	err  error
}

func (s *sliceSource) FetchBatch(ctx context.Context, limit int, _ source.Filter) ([]model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && limit < len(s.docs) {
		return s.docs[:limit], nil
	}
	return s.docs, nil
}

// captureIndexer records what was handed off.
type captureIndexer struct {
	docs []index.Document
	err  error
}

func (c *captureIndexer) IndexBatch(_ context.Context, docs []index.Document) (*index.Result, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.docs = append(c.docs, docs...)
	return &index.Result{IndexedCount: len(docs), Status: "ok"}, nil
}

func newTestOrchestrator(t *testing.T, src source.DocumentSource, idx index.Indexer) (*Orchestrator, *store.Store) {
	t.Helper()
	st, err := store.Open(store.Config{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	reg, err := registry.Load()
	if err != nil {
		t.Fatalf("loading registries: %v", err)
	}
	return New(src, st, enrich.New(reg), idx), st
}

func opinionDoc(id int64) model.Document {
	return model.Document{
		ID:         id,
		NaturalKey: fmt.Sprintf("2:21-cv-%05d", id),
		Metadata:   model.Metadata{CaseName: "Acme v. Widget Co."},
		Content: "IN THE UNITED STATES DISTRICT COURT\n" +
			"FOR THE EASTERN DISTRICT OF TEXAS\n\n" +
			"MEMORANDUM OPINION\n\n" +
			"Summary judgment is GRANTED. See Smith v. Jones, 123 F.3d 456, 460 (Fed. Cir. 1997).\n\n" +
			"Signed by District Judge Rodney Gilstrap on 3/3/2021.",
	}
}

func TestRunBatch_EndToEnd(t *testing.T) {
	idx := &captureIndexer{}
	src := &sliceSource{docs: []model.Document{opinionDoc(1), opinionDoc(2)}}
	orch, st := newTestOrchestrator(t, src, idx)

	run := orch.RunBatch(context.Background(), Options{Limit: 10})
	if !run.Success {
		t.Fatalf("expected success, errors: %+v", run.Errors)
	}
	if run.RunID == "" {
		t.Error("expected a run id")
	}

	s := run.Statistics
	if s.DocumentsFetched != 2 || s.DocumentsEnriched != 2 || s.DocumentsFailed != 0 {
		t.Errorf("unexpected statistics: %+v", s)
	}
	if s.CourtsResolved != 2 {
		t.Errorf("expected both courts resolved, got %d", s.CourtsResolved)
	}
	if s.JudgesEnhanced != 2 {
		t.Errorf("expected both judges enhanced, got %d", s.JudgesEnhanced)
	}
	if s.CitationsFound != 2 {
		t.Errorf("expected 2 citations, got %d", s.CitationsFound)
	}

	if run.Storage == nil || run.Storage.Inserted != 2 {
		t.Fatalf("expected 2 stored records, got %+v", run.Storage)
	}
	if run.Verification == nil || run.Verification.Documents != 2 {
		t.Fatalf("expected verification over 2 documents, got %+v", run.Verification)
	}
	if len(idx.docs) != 2 {
		t.Errorf("expected 2 documents handed to index, got %d", len(idx.docs))
	}

	// The stored enrichment carries the resolved court and enhanced judge.
	rec, err := st.FindByNaturalKey(context.Background(), "2:21-cv-00001")
	if err != nil || rec == nil {
		t.Fatalf("expected stored record, got %v / %v", rec, err)
	}
	var enrichment model.EnrichedRecord
	if err := json.Unmarshal(rec.Enrichment, &enrichment); err != nil {
		t.Fatalf("parsing enrichment: %v", err)
	}
	if enrichment.Court.CourtID != "txed" {
		t.Errorf("expected txed, got %q", enrichment.Court.CourtID)
	}
	if !enrichment.Judge.Enhanced || enrichment.Judge.RegistryID != "j-gilstrap" {
		t.Errorf("expected enhanced Gilstrap, got %+v", enrichment.Judge)
	}

	// The run report is persisted for later verification.
	saved, err := st.LatestRun(context.Background())
	if err != nil || saved == nil {
		t.Fatalf("expected saved run, got %v / %v", saved, err)
	}
	if saved.RunID != run.RunID {
		t.Errorf("run id mismatch: %s vs %s", saved.RunID, run.RunID)
	}
}

func TestRunBatch_Idempotent(t *testing.T) {
	src := &sliceSource{docs: []model.Document{opinionDoc(1)}}
	orch, _ := newTestOrchestrator(t, src, nil)
	ctx := context.Background()

	first := orch.RunBatch(ctx, Options{Limit: 10})
	if first.Storage.Inserted != 1 {
		t.Fatalf("expected insert on first run, got %+v", first.Storage)
	}

	second := orch.RunBatch(ctx, Options{Limit: 10})
	if second.Storage.Skipped != 1 || second.Storage.Inserted != 0 || second.Storage.Updated != 0 {
		t.Errorf("expected skip on unchanged rerun, got %+v", second.Storage)
	}
}

func TestRunBatch_LaxValidationWarnsAndProceeds(t *testing.T) {
	invalid := model.Document{ID: 3, NaturalKey: "2:21-cv-00003"} // no content
	src := &sliceSource{docs: []model.Document{opinionDoc(1), invalid}}
	orch, _ := newTestOrchestrator(t, src, nil)

	run := orch.RunBatch(context.Background(), Options{Limit: 10})
	if !run.Success {
		t.Fatalf("expected success, errors: %+v", run.Errors)
	}
	s := run.Statistics
	if s.DocumentsEnriched != 2 {
		t.Errorf("lax mode must enrich invalid documents too, got %+v", s)
	}
	if s.DocumentsWarned != 1 {
		t.Errorf("expected 1 warned document, got %d", s.DocumentsWarned)
	}
	if s.DocumentsExcluded != 0 {
		t.Errorf("lax mode must not exclude, got %d", s.DocumentsExcluded)
	}
}

func TestRunBatch_StrictValidationExcludes(t *testing.T) {
	invalid := model.Document{ID: 3, NaturalKey: "2:21-cv-00003"}
	src := &sliceSource{docs: []model.Document{opinionDoc(1), invalid}}
	orch, _ := newTestOrchestrator(t, src, nil)

	run := orch.RunBatch(context.Background(), Options{Limit: 10, Strict: true})
	if !run.Success {
		t.Fatalf("excluded documents must not fail the run, errors: %+v", run.Errors)
	}
	s := run.Statistics
	if s.DocumentsExcluded != 1 || s.DocumentsEnriched != 1 {
		t.Errorf("expected 1 excluded and 1 enriched, got %+v", s)
	}

	recs := run.Errors.ByStage[StageValidation]
	if len(recs) != 1 {
		t.Fatalf("expected 1 validation error record, got %+v", run.Errors)
	}
	if recs[0].Kind != KindValidation {
		t.Errorf("expected validation kind, got %s", recs[0].Kind)
	}
	if recs[0].DocumentID == nil || *recs[0].DocumentID != 3 {
		t.Errorf("expected error attributed to document 3, got %+v", recs[0])
	}
}

func TestRunBatch_FetchFailureIsFatal(t *testing.T) {
	src := &sliceSource{err: fmt.Errorf("%w: connection refused", source.ErrUnavailable)}
	orch, _ := newTestOrchestrator(t, src, nil)

	run := orch.RunBatch(context.Background(), Options{Limit: 10})
	if run.Success {
		t.Fatal("expected failed run")
	}
	recs := run.Errors.ByStage[StageFetch]
	if len(recs) != 1 || recs[0].Kind != KindDocumentRetrieval {
		t.Fatalf("expected document-retrieval error, got %+v", run.Errors)
	}
	if len(run.StagesCompleted) != 0 {
		t.Errorf("no stages should complete after fetch failure, got %v", run.StagesCompleted)
	}
}

func TestRunBatch_UnknownFetchErrorIsConnectionKind(t *testing.T) {
	src := &sliceSource{err: errors.New("disk exploded")}
	orch, _ := newTestOrchestrator(t, src, nil)

	run := orch.RunBatch(context.Background(), Options{Limit: 10})
	if run.Success {
		t.Fatal("expected failed run")
	}
	recs := run.Errors.ByStage[StageFetch]
	if len(recs) != 1 || recs[0].Kind != KindDatabaseConnection {
		t.Fatalf("expected database-connection error, got %+v", run.Errors)
	}
}

func TestRunBatch_IndexFailureIsNotFatal(t *testing.T) {
	idx := &captureIndexer{err: errors.New("index service down")}
	src := &sliceSource{docs: []model.Document{opinionDoc(1)}}
	orch, st := newTestOrchestrator(t, src, idx)

	run := orch.RunBatch(context.Background(), Options{Limit: 10})
	if !run.Success {
		t.Fatalf("index failure must not fail the run, errors: %+v", run.Errors)
	}
	recs := run.Errors.ByStage[StageIndexHandoff]
	if len(recs) != 1 || recs[0].Kind != KindIndexHandoff {
		t.Fatalf("expected index-handoff error record, got %+v", run.Errors)
	}

	// Storage committed before the hand-off and stays committed.
	rec, err := st.FindByNaturalKey(context.Background(), "2:21-cv-00001")
	if err != nil || rec == nil {
		t.Fatalf("expected stored record despite index failure, got %v / %v", rec, err)
	}
}

// cancelOnFetchSource cancels the run's context while handing back the
// batch, so cancellation lands before the documents are fed to workers.
type cancelOnFetchSource struct {
	docs   []model.Document
	cancel context.CancelFunc
}

func (s *cancelOnFetchSource) FetchBatch(_ context.Context, _ int, _ source.Filter) ([]model.Document, error) {
	s.cancel()
	return s.docs, nil
}

func TestRunBatch_CancelledMidRunCommitsCompletedWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	docs := make([]model.Document, 0, 40)
	for i := int64(1); i <= 40; i++ {
		docs = append(docs, opinionDoc(i))
	}
	src := &cancelOnFetchSource{docs: docs, cancel: cancel}
	orch, st := newTestOrchestrator(t, src, nil)

	run := orch.RunBatch(ctx, Options{Limit: 100})

	if !run.Cancelled {
		t.Fatal("expected run marked cancelled")
	}
	if run.Success {
		t.Error("cancelled run must not report success")
	}

	// However many documents finished before the wind-down, every one of
	// them commits; cancellation must never surface as a storage failure.
	if recs := run.Errors.ByStage[StagePersistence]; len(recs) != 0 {
		t.Fatalf("unexpected persistence errors: %+v", recs)
	}
	if run.Storage == nil {
		t.Fatal("expected a storage report")
	}
	if run.Storage.Inserted != run.Statistics.DocumentsEnriched {
		t.Errorf("expected every enriched document committed, got %d inserted for %d enriched",
			run.Storage.Inserted, run.Statistics.DocumentsEnriched)
	}

	// The run report persists despite the cancelled caller context.
	saved, err := st.LatestRun(context.Background())
	if err != nil || saved == nil {
		t.Fatalf("expected saved run, got %v / %v", saved, err)
	}
	if saved.RunID != run.RunID {
		t.Errorf("run id mismatch: %s vs %s", saved.RunID, run.RunID)
	}
}

func TestRunBatch_CancelledContext(t *testing.T) {
	src := &sliceSource{docs: []model.Document{opinionDoc(1), opinionDoc(2)}}
	orch, _ := newTestOrchestrator(t, src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := orch.RunBatch(ctx, Options{Limit: 10})
	if run.Success {
		t.Fatal("expected failed run under cancelled context")
	}
	if run.Statistics.DocumentsEnriched != 0 {
		t.Errorf("cancelled run must not start new documents, got %+v", run.Statistics)
	}
}

func TestRunBatch_EmptyBatch(t *testing.T) {
	src := &sliceSource{}
	orch, _ := newTestOrchestrator(t, src, nil)

	run := orch.RunBatch(context.Background(), Options{Limit: 10})
	if !run.Success {
		t.Fatalf("empty batch should succeed, errors: %+v", run.Errors)
	}
	if run.Statistics.DocumentsFetched != 0 {
		t.Errorf("expected 0 fetched, got %d", run.Statistics.DocumentsFetched)
	}
}
