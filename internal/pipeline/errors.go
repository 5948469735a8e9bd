// Package pipeline drives documents through the enhancement stages with
// per-document error isolation, then persists, hands off to the index, and
// verifies the batch.
package pipeline

import (
	"sync"
	"time"
)

// ErrorKind tags an error record with its place in the taxonomy.
type ErrorKind string

const (
	// Fatal kinds abort the run.
	KindDatabaseConnection ErrorKind = "database-connection"
	KindDocumentRetrieval  ErrorKind = "document-retrieval"
	KindStorageFatal       ErrorKind = "storage-transaction"

	// Per-document, stage-scoped kinds abort one document's remaining stages.
	KindValidation            ErrorKind = "validation"
	KindCourtResolution       ErrorKind = "court-resolution"
	KindCitationExtraction    ErrorKind = "citation-extraction"
	KindReporterNormalization ErrorKind = "reporter-normalization"
	KindJudgeEnhancement      ErrorKind = "judge-enhancement"

	// Per-record, recoverable.
	KindStorageRecord ErrorKind = "storage-record"

	// Non-fatal external.
	KindIndexHandoff ErrorKind = "index-handoff"
)

// Stage names used in error records and completion tracking.
const (
	StageFetch         = "fetch"
	StageTypeDetection = "type-detection"
	StageValidation    = "validation"
	StageCourt         = "court-resolution"
	StageCitations     = "citation-extraction"
	StageReporters     = "reporter-normalization"
	StageJudge         = "judge-attribution"
	StageStructure     = "structure-analysis"
	StageKeywords      = "keyword-extraction"
	StageAssembly      = "metadata-assembly"
	StagePersistence   = "persistence"
	StageIndexHandoff  = "index-handoff"
	StageVerification  = "verification"
)

// ErrorRecord is one recorded failure. DocumentID is nil for batch-level
// errors.
type ErrorRecord struct {
	Stage      string            `json:"stage"`
	DocumentID *int64            `json:"document_id,omitempty"`
	Kind       ErrorKind         `json:"kind"`
	Message    string            `json:"message"`
	Context    map[string]string `json:"context,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// ErrorReport groups error records by stage. Callers never receive an error
// without this context.
type ErrorReport struct {
	Total   int                      `json:"total"`
	ByStage map[string][]ErrorRecord `json:"by_stage,omitempty"`
}

// errorCollector is the thread-safe error accumulator shared by workers.
type errorCollector struct {
	mu      sync.Mutex
	records []ErrorRecord
}

func (c *errorCollector) add(stage string, docID *int64, kind ErrorKind, msg string, ctx map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, ErrorRecord{
		Stage:      stage,
		DocumentID: docID,
		Kind:       kind,
		Message:    msg,
		Context:    ctx,
		Timestamp:  time.Now().UTC(),
	})
}

func (c *errorCollector) report() ErrorReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	rep := ErrorReport{Total: len(c.records)}
	if len(c.records) == 0 {
		return rep
	}
	rep.ByStage = make(map[string][]ErrorRecord)
	for _, r := range c.records {
		rep.ByStage[r.Stage] = append(rep.ByStage[r.Stage], r)
	}
	return rep
}

// Statistics holds per-stage counters for one run.
type Statistics struct {
	DocumentsFetched    int `json:"documents_fetched"`
	DocumentsExcluded   int `json:"documents_excluded"`
	DocumentsWarned     int `json:"documents_warned"`
	DocumentsEnriched   int `json:"documents_enriched"`
	DocumentsFailed     int `json:"documents_failed"`
	CourtsResolved      int `json:"courts_resolved"`
	CitationsFound      int `json:"citations_found"`
	ReportersNormalized int `json:"reporters_normalized"`
	JudgesFound         int `json:"judges_found"`
	JudgesEnhanced      int `json:"judges_enhanced"`
	StructureElements   int `json:"structure_elements"`
	KeywordsFound       int `json:"keywords_found"`
}

// statsAccumulator is the mutex-guarded accumulator workers write into.
type statsAccumulator struct {
	mu sync.Mutex
	s  Statistics
}

func (a *statsAccumulator) update(fn func(*Statistics)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.s)
}

// snapshot returns a copy safe for serialization.
func (a *statsAccumulator) snapshot() Statistics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.s
}
