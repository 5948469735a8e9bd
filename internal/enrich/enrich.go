// Package enrich implements the per-document enhancement stages: court
// resolution, citation extraction, reporter normalization, judge attribution,
// structure analysis, keyword extraction, and metadata assembly.
//
// Every stage consumes the read-only document plus prior stage outputs and
// returns a typed result. Extractors are ordered lists of independent
// functions, so priority order is data rather than control flow and each
// fallback is unit-testable on its own.
package enrich

import (
	"github.com/openjurist/casepipe/internal/model"
	"github.com/openjurist/casepipe/internal/registry"
)

// contentHeadLimit bounds how much leading content the regex extractors scan.
const contentHeadLimit = 2000

// contentTailLimit bounds how much trailing content judge attribution scans.
const contentTailLimit = 1000

// Strategy selects per-type extractor orderings. It is chosen once by type
// detection and injected into the stages rather than branching inline.
type Strategy int

const (
	StrategyGeneric Strategy = iota
	StrategyOpinion
	StrategyDocket
)

// StrategyFor maps a document type to its enrichment strategy.
func StrategyFor(t model.DocumentType) Strategy {
	switch t {
	case model.TypeOpinion:
		return StrategyOpinion
	case model.TypeDocket:
		return StrategyDocket
	default:
		return StrategyGeneric
	}
}

// Enricher runs the enhancement stages against the shared registries.
type Enricher struct {
	reg *registry.Registries
}

// New creates an Enricher bound to the given registries.
func New(reg *registry.Registries) *Enricher {
	return &Enricher{reg: reg}
}

func contentHead(content string, limit int) string {
	if len(content) > limit {
		return content[:limit]
	}
	return content
}

func contentTail(content string, limit int) string {
	if len(content) > limit {
		return content[len(content)-limit:]
	}
	return content
}
