package enrich

import (
	"regexp"
	"strings"

	"github.com/openjurist/casepipe/internal/model"
)

// maxStructureElements caps the element list per document.
const maxStructureElements = 50

var (
	sectionMarkerRE = regexp.MustCompile(`^(?:[IVXLC]+|[A-Z])\.\s+\S`)
	numberedParaRE  = regexp.MustCompile(`^\d{1,3}\.\s+\S`)
	typeMarkerRE    = regexp.MustCompile(`^(?:OPINION|ORDER|MEMORANDUM(?:\s+OPINION)?|JUDGMENT|VERDICT|COMPLAINT|TRANSCRIPT)\b`)
)

// AnalyzeStructure runs line-oriented layout heuristics over the content.
// A pure, total function: absent content yields an empty result.
func (e *Enricher) AnalyzeStructure(doc *model.Document) model.StructureAnalysis {
	if strings.TrimSpace(doc.Content) == "" {
		return model.StructureAnalysis{}
	}

	lines := strings.Split(doc.Content, "\n")
	res := model.StructureAnalysis{TotalLines: len(lines)}

	for i, raw := range lines {
		if len(res.Elements) >= maxStructureElements {
			break
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		var elemType string
		switch {
		case typeMarkerRE.MatchString(line):
			elemType = model.ElementTypeMarker
		case sectionMarkerRE.MatchString(line):
			elemType = model.ElementSectionMarker
		case numberedParaRE.MatchString(line):
			elemType = model.ElementNumberedPara
		case isHeaderLine(line):
			elemType = model.ElementHeader
		default:
			continue
		}

		res.Elements = append(res.Elements, model.StructureElement{
			Type: elemType,
			Text: truncateLine(line, 120),
			Line: i + 1,
		})
	}

	if res.TotalLines > 0 {
		res.Score = float64(len(res.Elements)) / float64(res.TotalLines) * 100
	}
	return res
}

// isHeaderLine treats short all-uppercase lines as headers (court banners,
// captions, section titles).
func isHeaderLine(line string) bool {
	if len(line) < 4 || len(line) > 80 {
		return false
	}
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func truncateLine(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
