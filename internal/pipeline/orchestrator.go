package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/openjurist/casepipe/internal/detect"
	"github.com/openjurist/casepipe/internal/enrich"
	"github.com/openjurist/casepipe/internal/index"
	"github.com/openjurist/casepipe/internal/model"
	"github.com/openjurist/casepipe/internal/source"
	"github.com/openjurist/casepipe/internal/store"
	"github.com/openjurist/casepipe/internal/verify"
)

// DefaultConcurrency is the default worker pool size.
const DefaultConcurrency = 4

// Options configures one batch run.
type Options struct {
	Limit       int
	Strict      bool
	Concurrency int
	Order       store.FetchOrder
	Weights     verify.Weights
}

// Run is the result of one pipeline run. It is always returned fully
// populated, success or failure: statistics, stage completion, and the
// grouped error report survive even a fatal abort.
type Run struct {
	RunID           string               `json:"run_id"`
	Success         bool                 `json:"success"`
	Cancelled       bool                 `json:"cancelled,omitempty"`
	StagesCompleted []string             `json:"stages_completed"`
	Statistics      Statistics           `json:"statistics"`
	Errors          ErrorReport          `json:"error_report"`
	Storage         *store.StorageReport `json:"storage,omitempty"`
	Index           *index.Result        `json:"index,omitempty"`
	Verification    *verify.Report       `json:"verification,omitempty"`
	StartedAt       time.Time            `json:"started_at"`
	EndedAt         time.Time            `json:"ended_at"`
}

// Orchestrator wires the stages to their collaborators and drives batches.
type Orchestrator struct {
	src source.DocumentSource
	st  *store.Store
	enr *enrich.Enricher
	idx index.Indexer
}

// New creates an orchestrator. A nil indexer disables the hand-off.
func New(src source.DocumentSource, st *store.Store, enr *enrich.Enricher, idx index.Indexer) *Orchestrator {
	if idx == nil {
		idx = index.Noop{}
	}
	return &Orchestrator{src: src, st: st, enr: enr, idx: idx}
}

// RunBatch fetches up to opts.Limit documents and runs each through the full
// stage chain on a bounded worker pool. Stage failures abort only the
// affected document; fetch and transaction failures abort the run. The
// cancellation signal is checked between documents, never mid-stage: any
// in-flight document finishes, its record commits, and the run report is
// still persisted. A cancelled run is marked Cancelled and never Success.
func (o *Orchestrator) RunBatch(ctx context.Context, opts Options) *Run {
	run := &Run{
		RunID:     ulid.Make().String(),
		StartedAt: time.Now().UTC(),
	}
	stats := &statsAccumulator{}
	errs := &errorCollector{}

	defer func() {
		run.Statistics = stats.snapshot()
		run.Errors = errs.report()
		run.EndedAt = time.Now().UTC()
	}()

	docs, err := o.src.FetchBatch(ctx, opts.Limit, source.Filter{Order: opts.Order})
	if err != nil {
		kind := KindDocumentRetrieval
		if !errors.Is(err, source.ErrUnavailable) {
			kind = KindDatabaseConnection
		}
		errs.add(StageFetch, nil, kind, err.Error(), nil)
		run.Success = false
		return run
	}
	run.StagesCompleted = append(run.StagesCompleted, StageFetch)
	stats.update(func(s *Statistics) { s.DocumentsFetched = len(docs) })

	records := o.enrichAll(ctx, docs, opts, stats, errs)
	run.StagesCompleted = append(run.StagesCompleted,
		StageTypeDetection, StageValidation, StageCourt, StageCitations,
		StageReporters, StageJudge, StageStructure, StageKeywords, StageAssembly)

	// Cancellation stops new documents, not the wind-down: everything that
	// finished enriching still commits and the run report still saves, so
	// the remaining stages run on a context detached from cancellation.
	run.Cancelled = ctx.Err() != nil
	windDown := context.WithoutCancel(ctx)

	// Persistence is single-writer: workers never touch the store, so
	// upserts for the same natural key cannot race.
	storageReport, err := o.st.UpsertBatch(windDown, records)
	run.Storage = storageReport
	if err != nil {
		errs.add(StagePersistence, nil, KindStorageFatal, err.Error(), nil)
		run.Success = false
		return run
	}
	for _, re := range storageReport.Errors {
		errs.add(StagePersistence, nil, KindStorageRecord, re.Message,
			map[string]string{"natural_key": re.NaturalKey})
	}
	run.StagesCompleted = append(run.StagesCompleted, StagePersistence)

	// Index hand-off is fire-and-forget: its failure is recorded but never
	// rolls back committed storage.
	indexDocs := make([]index.Document, 0, len(records))
	for i := range records {
		indexDocs = append(indexDocs, index.FromRecord(&records[i]))
	}
	indexResult, err := o.idx.IndexBatch(windDown, indexDocs)
	if err != nil {
		errs.add(StageIndexHandoff, nil, KindIndexHandoff, err.Error(), nil)
	} else {
		run.Index = indexResult
		if indexResult.Status != "ok" && indexResult.Status != "skipped" {
			errs.add(StageIndexHandoff, nil, KindIndexHandoff,
				fmt.Sprintf("index service status %q", indexResult.Status), nil)
		}
	}
	run.StagesCompleted = append(run.StagesCompleted, StageIndexHandoff)

	report := verify.BuildReport(records, opts.Weights)
	run.Verification = &report
	run.StagesCompleted = append(run.StagesCompleted, StageVerification)

	// Zero fatal errors means a successful run, even when individual
	// documents were skipped or warned. A cancelled run is never a success:
	// it stopped short of the documents it was asked to process.
	run.Success = !run.Cancelled
	o.saveRun(windDown, run, stats, errs)
	return run
}

// enrichAll fans documents out to a bounded worker pool and collects the
// assembled records. Workers share only the read-only registries plus the
// guarded stats and error accumulators.
func (o *Orchestrator) enrichAll(ctx context.Context, docs []model.Document, opts Options, stats *statsAccumulator, errs *errorCollector) []model.EnrichedRecord {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > len(docs) {
		concurrency = len(docs)
	}
	if concurrency == 0 {
		return nil
	}

	jobs := make(chan *model.Document)
	var (
		mu      sync.Mutex
		records []model.EnrichedRecord
		wg      sync.WaitGroup
	)

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				rec, ok := o.enrichOne(doc, opts, stats, errs)
				if ok {
					mu.Lock()
					records = append(records, rec)
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for i := range docs {
		select {
		case <-ctx.Done():
			// Stop accepting new work; in-flight documents finish.
			break feed
		case jobs <- &docs[i]:
		}
	}
	close(jobs)
	wg.Wait()

	return records
}

// enrichOne runs the fixed stage sequence for one document. A stage error
// aborts only this document's remaining stages.
func (o *Orchestrator) enrichOne(doc *model.Document, opts Options, stats *statsAccumulator, errs *errorCollector) (model.EnrichedRecord, bool) {
	doc.Type = detect.DetectType(doc)

	val := detect.Validate(doc)
	if !val.Valid() {
		if opts.Strict {
			errs.add(StageValidation, &doc.ID, KindValidation,
				fmt.Sprintf("document excluded under strict validation: %v", val.Errors),
				map[string]string{"natural_key": doc.NaturalKey})
			stats.update(func(s *Statistics) { s.DocumentsExcluded++ })
			return model.EnrichedRecord{}, false
		}
		// Lax mode: demote errors to warnings and proceed.
		for _, e := range val.Errors {
			val.AddWarning(e)
		}
		val.Errors = nil
		stats.update(func(s *Statistics) { s.DocumentsWarned++ })
	}

	strat := enrich.StrategyFor(doc.Type)
	out := enrich.StageOutputs{Validation: val}

	fail := func(stage string, kind ErrorKind, err error) (model.EnrichedRecord, bool) {
		errs.add(stage, &doc.ID, kind, err.Error(),
			map[string]string{"natural_key": doc.NaturalKey})
		stats.update(func(s *Statistics) { s.DocumentsFailed++ })
		return model.EnrichedRecord{}, false
	}

	court, err := o.enr.ResolveCourt(doc, strat)
	if err != nil {
		return fail(StageCourt, KindCourtResolution, err)
	}
	out.Court = court

	citations, err := o.enr.ExtractCitations(doc)
	if err != nil {
		return fail(StageCitations, KindCitationExtraction, err)
	}
	out.Citations = citations

	reporters, err := o.enr.NormalizeReporters(citations)
	if err != nil {
		return fail(StageReporters, KindReporterNormalization, err)
	}
	out.Reporters = reporters

	judge, err := o.enr.AttributeJudge(doc, strat)
	if err != nil {
		return fail(StageJudge, KindJudgeEnhancement, err)
	}
	out.Judge = judge

	out.Structure = o.enr.AnalyzeStructure(doc)
	out.Keywords = o.enr.ExtractKeywords(doc)

	rec := o.enr.Assemble(doc, out)

	stats.update(func(s *Statistics) {
		s.DocumentsEnriched++
		if court.Resolved {
			s.CourtsResolved++
		}
		s.CitationsFound += len(citations)
		s.ReportersNormalized += enrich.DistinctEditions(reporters)
		if judge.NameFound != "" {
			s.JudgesFound++
		}
		if judge.Enhanced {
			s.JudgesEnhanced++
		}
		s.StructureElements += len(out.Structure.Elements)
		s.KeywordsFound += out.Keywords.Count()
	})

	return rec, true
}

// saveRun persists the run report; a failure here is recorded, not fatal.
func (o *Orchestrator) saveRun(ctx context.Context, run *Run, stats *statsAccumulator, errs *errorCollector) {
	run.Statistics = stats.snapshot()
	run.Errors = errs.report()

	b, err := json.Marshal(run)
	if err != nil {
		errs.add(StagePersistence, nil, KindStorageRecord,
			fmt.Sprintf("marshaling run report: %v", err), nil)
		return
	}
	rec := store.RunRecord{
		RunID:     run.RunID,
		Success:   run.Success,
		Report:    b,
		StartedAt: run.StartedAt,
		EndedAt:   time.Now().UTC(),
	}
	if err := o.st.SaveRun(ctx, rec); err != nil {
		errs.add(StagePersistence, nil, KindStorageRecord,
			fmt.Sprintf("saving run report: %v", err), nil)
	}
}
