package enrich

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/openjurist/casepipe/internal/model"
)

// Citation kinds.
const (
	KindCaseCitation     = "case-citation"
	KindReporterCitation = "reporter-citation"
)

// citationRE matches "volume reporter page" citation cores. The reporter
// token is a bounded sequence of abbreviation words optionally followed by an
// edition ordinal (2d/3d/4th).
var citationRE = regexp.MustCompile(
	`\b(\d{1,4})\s+((?:[A-Z][A-Za-z']*\.?\s?){1,4}(?:2d|3d|4th)?\.?)\s+(\d{1,6})\b`)

// pinCiteRE matches a pin cite directly after the page ("', 415" or ", at 415").
var pinCiteRE = regexp.MustCompile(`^,\s*(?:at\s+)?(\d{1,6})\b`)

// parentheticalRE matches a trailing "(court year)" parenthetical.
var parentheticalRE = regexp.MustCompile(`^[^()]{0,15}\(([^()]*?)\s*(\d{4})\)`)

// partiesRE matches "Plaintiff v. Defendant," immediately before a citation.
var partiesRE = regexp.MustCompile(`([A-Z][\w.'&\- ]{0,60}?)\s+v\.\s+([A-Z][\w.'&\- ]{0,60}?),\s*$`)

// ExtractCitations runs the citation extractor over the full document
// content. Empty content yields an empty, non-error result. Each citation
// carries its span into the content plus any contextual metadata found
// around the match.
func (e *Enricher) ExtractCitations(doc *model.Document) ([]model.Citation, error) {
	content := doc.Content
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("document %d content is not valid UTF-8", doc.ID)
	}

	idxs := citationRE.FindAllStringSubmatchIndex(content, -1)
	citations := make([]model.Citation, 0, len(idxs))
	for _, loc := range idxs {
		start, end := loc[0], loc[1]
		volume := content[loc[2]:loc[3]]
		reporter := normalizeSpaces(content[loc[4]:loc[5]])
		page := content[loc[6]:loc[7]]

		if !plausibleReporterToken(reporter) {
			continue
		}

		c := model.Citation{
			Text:     content[start:end],
			Kind:     KindReporterCitation,
			Start:    start,
			End:      end,
			Volume:   volume,
			Reporter: reporter,
			Page:     page,
		}

		attachContext(&c, content, start, end)
		validateCitation(&c)
		citations = append(citations, c)
	}
	return citations, nil
}

// attachContext pulls the optional pin cite, parenthetical, and party names
// from the text surrounding a citation match.
func attachContext(c *model.Citation, content string, start, end int) {
	after := content[end:]
	if m := pinCiteRE.FindStringSubmatch(after); m != nil {
		c.PinCite = m[1]
	}
	if m := parentheticalRE.FindStringSubmatch(after); m != nil {
		c.Court = strings.TrimSpace(m[1])
		c.Year = m[2]
	}

	before := content[:start]
	if len(before) > 100 {
		before = before[len(before)-100:]
	}
	if m := partiesRE.FindStringSubmatch(before); m != nil {
		c.Plaintiff = strings.TrimSpace(m[1])
		c.Defendant = strings.TrimSpace(m[2])
		c.Kind = KindCaseCitation
	}
}

func validateCitation(c *model.Citation) {
	if v, err := strconv.Atoi(c.Volume); err != nil || v <= 0 {
		c.Validation.AddError("citation volume is not a positive integer")
	}
	if p, err := strconv.Atoi(c.Page); err != nil || p <= 0 {
		c.Validation.AddError("citation page is not a positive integer")
	}
	if c.Year != "" {
		if y, err := strconv.Atoi(c.Year); err != nil || y < 1750 || y > 2100 {
			c.Validation.AddWarning("citation year outside plausible range")
		}
	}
}

// plausibleReporterToken filters obvious false positives the broad core
// regex lets through (sentence fragments, section numbers).
func plausibleReporterToken(token string) bool {
	t := strings.TrimSpace(token)
	if t == "" || len(t) > 25 {
		return false
	}
	// A real reporter abbreviation contains at least one period or is a
	// known vendor token.
	if !strings.Contains(t, ".") && t != "WL" {
		return false
	}
	// Reject tokens that are mostly lowercase prose.
	words := strings.Fields(t)
	if len(words) > 5 {
		return false
	}
	return true
}

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
