package enrich

import (
	"strings"

	"github.com/openjurist/casepipe/internal/model"
)

// Keyword lexicons. Matching is deliberately shallow substring search over
// lower-cased content; the result is tagged is_shallow_matching so consumers
// never mistake it for semantic analysis.
var (
	legalConceptTerms = []string{
		"jurisdiction", "standing", "negligence", "breach of contract",
		"due process", "summary judgment", "class action", "injunction",
		"damages", "liability", "patent infringement", "copyright",
		"trademark", "antitrust", "fraud", "estoppel", "res judicata",
		"habeas corpus", "qualified immunity", "preemption",
	}
	legalStandardTerms = []string{
		"preponderance of the evidence", "beyond a reasonable doubt",
		"clear and convincing", "abuse of discretion", "de novo",
		"rational basis", "strict scrutiny", "arbitrary and capricious",
		"clearly erroneous", "substantial evidence",
	}
	proceduralTerms = []string{
		"granted", "denied", "dismissed", "remanded", "affirmed",
		"reversed", "vacated", "sustained", "overruled", "stayed",
		"transferred", "consolidated", "settled", "withdrawn",
	}
)

// ExtractKeywords searches the three fixed lexicons against a lower-cased
// copy of content. Pure and total: no content, no keywords, never an error.
func (e *Enricher) ExtractKeywords(doc *model.Document) model.KeywordExtraction {
	res := model.KeywordExtraction{ShallowMatching: true}
	if strings.TrimSpace(doc.Content) == "" {
		return res
	}

	lower := strings.ToLower(doc.Content)
	res.LegalConcepts = matchLexicon(lower, legalConceptTerms)
	res.LegalStandards = matchLexicon(lower, legalStandardTerms)
	res.ProceduralTerms = matchLexicon(lower, proceduralTerms)
	return res
}

// matchLexicon returns the deduplicated lexicon terms present in the text,
// preserving lexicon order.
func matchLexicon(lower string, terms []string) []string {
	var hits []string
	seen := make(map[string]struct{})
	for _, t := range terms {
		if _, dup := seen[t]; dup {
			continue
		}
		if strings.Contains(lower, t) {
			hits = append(hits, t)
			seen[t] = struct{}{}
		}
	}
	return hits
}
