package enrich

import (
	"github.com/openjurist/casepipe/internal/model"
)

// StageOutputs collects every per-stage result for one document, in the
// order the orchestrator produced them.
type StageOutputs struct {
	Validation model.Validation
	Court      model.CourtResolution
	Citations  []model.Citation
	Reporters  []model.NormalizedReporter
	Judge      model.JudgeAttribution
	Structure  model.StructureAnalysis
	Keywords   model.KeywordExtraction
}

// Assemble folds all stage outputs plus the original metadata into one
// EnrichedRecord, computing quality indicators and the enhancement count.
// The count feeds reporting and complexity metrics only; it is never used
// for correctness decisions.
func (e *Enricher) Assemble(doc *model.Document, out StageOutputs) model.EnrichedRecord {
	rec := model.EnrichedRecord{
		DocumentID: doc.ID,
		NaturalKey: doc.NaturalKey,
		Type:       doc.Type,
		CaseName:   doc.Metadata.CaseName,
		Content:    doc.Content,
		Metadata:   doc.Metadata,
		Court:      out.Court,
		Citations:  out.Citations,
		Reporters:  out.Reporters,
		Judge:      out.Judge,
		Structure:  out.Structure,
		Keywords:   out.Keywords,
	}

	rec.Quality = model.QualityIndicators{
		CourtResolved:     out.Court.Resolved,
		CitationsFound:    len(out.Citations) > 0,
		JudgeIdentified:   out.Judge.NameFound != "",
		KeywordsExtracted: out.Keywords.Count() > 0,
	}

	count := 0
	if out.Court.Resolved {
		count++
	}
	count += DistinctEditions(out.Reporters)
	count += len(out.Citations)
	if out.Judge.NameFound != "" || out.Judge.Enhanced {
		count++
	}
	count += len(out.Structure.Elements)
	count += out.Keywords.Count()
	rec.EnhancementCount = count

	return rec
}
