// Package verify scores the output of a pipeline run: how complete the
// enrichment was, how much of it was validated rather than merely found, and
// which document types are under-performing.
package verify

import (
	"fmt"
	"sort"

	"github.com/openjurist/casepipe/internal/model"
)

// enhancementCategories is the number of categories completeness is scored
// over: court, citations, reporters, judge, structure, keywords.
const enhancementCategories = 6

// Alert thresholds for insight warnings.
const (
	courtRateWarnBelow = 50.0
	judgeRateWarnBelow = 30.0
)

// Weights configures how much validated results outscore merely-found ones.
// The defaults are a starting point, not business law; callers tune them via
// configuration.
type Weights struct {
	Validated float64 `yaml:"validated" json:"validated"`
	Found     float64 `yaml:"found" json:"found"`
}

// DefaultWeights returns the default scoring weights.
func DefaultWeights() Weights {
	return Weights{Validated: 1.0, Found: 0.5}
}

// TypeBreakdown scores one document type.
type TypeBreakdown struct {
	Type         model.DocumentType `json:"document_type"`
	Documents    int                `json:"documents"`
	Completeness float64            `json:"completeness_score"`
	Quality      float64            `json:"quality_score"`
	CourtRate    float64            `json:"court_resolution_rate"`
	JudgeRate    float64            `json:"judge_identification_rate"`
}

// Report is the post-batch verification result. Scores are always in [0,100].
type Report struct {
	Documents         int             `json:"documents"`
	CompletenessScore float64         `json:"completeness_score"`
	QualityScore      float64         `json:"quality_score"`
	ByType            []TypeBreakdown `json:"by_type,omitempty"`
	Insights          []string        `json:"insights,omitempty"`
}

// BuildReport computes completeness and quality scores for a batch of
// enriched records, with per-type breakdowns and insight strings.
func BuildReport(records []model.EnrichedRecord, w Weights) Report {
	if w.Validated <= 0 {
		w = DefaultWeights()
	}
	if w.Found > w.Validated {
		w.Found = w.Validated
	}

	rep := Report{Documents: len(records)}
	if len(records) == 0 {
		return rep
	}

	type acc struct {
		docs         int
		completeness float64
		quality      float64
		courts       int
		judges       int
	}
	total := acc{}
	byType := make(map[model.DocumentType]*acc)

	for i := range records {
		r := &records[i]
		c := scoreCompleteness(r)
		q := scoreQuality(r, w)

		total.docs++
		total.completeness += c
		total.quality += q
		if r.Court.Resolved {
			total.courts++
		}
		if r.Judge.NameFound != "" {
			total.judges++
		}

		a := byType[r.Type]
		if a == nil {
			a = &acc{}
			byType[r.Type] = a
		}
		a.docs++
		a.completeness += c
		a.quality += q
		if r.Court.Resolved {
			a.courts++
		}
		if r.Judge.NameFound != "" {
			a.judges++
		}
	}

	rep.CompletenessScore = clampScore(total.completeness / float64(total.docs) * 100)
	rep.QualityScore = clampScore(total.quality / float64(total.docs) * 100)

	for t, a := range byType {
		rep.ByType = append(rep.ByType, TypeBreakdown{
			Type:         t,
			Documents:    a.docs,
			Completeness: clampScore(a.completeness / float64(a.docs) * 100),
			Quality:      clampScore(a.quality / float64(a.docs) * 100),
			CourtRate:    clampScore(float64(a.courts) / float64(a.docs) * 100),
			JudgeRate:    clampScore(float64(a.judges) / float64(a.docs) * 100),
		})
	}
	sort.Slice(rep.ByType, func(i, j int) bool { return rep.ByType[i].Type < rep.ByType[j].Type })

	rep.Insights = buildInsights(rep.ByType)
	return rep
}

// scoreCompleteness returns the fraction of the six enhancement categories
// populated for one record.
func scoreCompleteness(r *model.EnrichedRecord) float64 {
	populated := 0
	if r.Court.Resolved {
		populated++
	}
	if len(r.Citations) > 0 {
		populated++
	}
	if len(r.Reporters) > 0 {
		populated++
	}
	if r.Judge.NameFound != "" {
		populated++
	}
	if len(r.Structure.Elements) > 0 {
		populated++
	}
	if r.Keywords.Count() > 0 {
		populated++
	}
	return float64(populated) / enhancementCategories
}

// scoreQuality is like completeness but weights validated results above
// merely-found ones.
func scoreQuality(r *model.EnrichedRecord, w Weights) float64 {
	score := 0.0

	switch {
	case r.Court.Resolved && r.Court.Validation.Valid():
		score += w.Validated
	case r.Court.CourtID != "" || r.Court.Name != "":
		score += w.Found
	}

	if n := len(r.Citations); n > 0 {
		valid := 0
		for i := range r.Citations {
			if r.Citations[i].Validation.Valid() {
				valid++
			}
		}
		if valid == n {
			score += w.Validated
		} else {
			score += w.Found
		}
	}

	if len(r.Reporters) > 0 {
		// A normalized reporter is by construction registry-validated.
		score += w.Validated
	}

	switch {
	case r.Judge.Enhanced:
		score += w.Validated
	case r.Judge.NameFound != "":
		score += w.Found
	}

	if len(r.Structure.Elements) > 0 {
		score += w.Validated
	}
	if r.Keywords.Count() > 0 {
		// Shallow matches are found, never validated.
		score += w.Found
	}

	return score / (enhancementCategories * w.Validated)
}

// buildInsights produces human-readable observations: best and worst type by
// completeness, plus threshold warnings.
func buildInsights(byType []TypeBreakdown) []string {
	if len(byType) == 0 {
		return nil
	}

	var insights []string

	best, worst := byType[0], byType[0]
	for _, b := range byType[1:] {
		if b.Completeness > best.Completeness {
			best = b
		}
		if b.Completeness < worst.Completeness {
			worst = b
		}
	}
	insights = append(insights, fmt.Sprintf(
		"best performing type: %s (completeness %.1f across %d documents)",
		best.Type, best.Completeness, best.Documents))
	if worst.Type != best.Type {
		insights = append(insights, fmt.Sprintf(
			"worst performing type: %s (completeness %.1f across %d documents)",
			worst.Type, worst.Completeness, worst.Documents))
	}

	for _, b := range byType {
		if b.CourtRate < courtRateWarnBelow {
			insights = append(insights, fmt.Sprintf(
				"warning: court resolution rate for %s is %.1f%% (below %.0f%%)",
				b.Type, b.CourtRate, courtRateWarnBelow))
		}
		if b.JudgeRate < judgeRateWarnBelow {
			insights = append(insights, fmt.Sprintf(
				"warning: judge identification rate for %s is %.1f%% (below %.0f%%)",
				b.Type, b.JudgeRate, judgeRateWarnBelow))
		}
	}
	return insights
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
