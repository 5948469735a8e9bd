package enrich

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openjurist/casepipe/internal/model"
	"github.com/openjurist/casepipe/internal/registry"
)

// courtExtractor is one candidate source for court resolution. Extractors are
// tried in order; the first that returns a resolved result wins. An extractor
// that finds nothing returns a zero CourtResolution and false.
type courtExtractor struct {
	name string
	fn   func(e *Enricher, doc *model.Document) (model.CourtResolution, bool)
}

// genericCourtChain is the default candidate ordering: trusted identifiers
// first, content last.
var genericCourtChain = []courtExtractor{
	{"metadata-court-id", extractDirectID},
	{"metadata-court-name", extractNameSearch},
	{"natural-key-pattern", extractCaseNumber},
	{"content-regex", extractContentRegex},
}

// opinionCourtChain reorders the fallbacks for opinions: opinion metadata
// rarely carries a direct court id, so case-name parties and content outrank
// the metadata name search.
var opinionCourtChain = []courtExtractor{
	{"metadata-court-id", extractDirectID},
	{"case-name-parties", extractCaseNameParties},
	{"content-regex", extractContentRegex},
	{"metadata-court-name", extractNameSearch},
	{"natural-key-pattern", extractCaseNumber},
}

// directIDRE matches a short registry-id-shaped token: alphabetic, no spaces.
var directIDRE = regexp.MustCompile(`^[a-zA-Z]{1,10}$`)

// knownCourtContentPatterns maps well-known court banners to direct registry
// ids. Tried before the generic district/appeals patterns.
var knownCourtContentPatterns = []struct {
	re      *regexp.Regexp
	courtID string
}{
	{regexp.MustCompile(`(?i)EASTERN DISTRICT OF TEXAS`), "txed"},
	{regexp.MustCompile(`(?i)WESTERN DISTRICT OF TEXAS`), "txwd"},
	{regexp.MustCompile(`(?i)NORTHERN DISTRICT OF TEXAS`), "txnd"},
	{regexp.MustCompile(`(?i)NORTHERN DISTRICT OF CALIFORNIA`), "cand"},
	{regexp.MustCompile(`(?i)CENTRAL DISTRICT OF CALIFORNIA`), "cacd"},
	{regexp.MustCompile(`(?i)SOUTHERN DISTRICT OF NEW YORK`), "nysd"},
	{regexp.MustCompile(`(?i)EASTERN DISTRICT OF NEW YORK`), "nyed"},
	{regexp.MustCompile(`(?i)DISTRICT OF DELAWARE`), "ded"},
	{regexp.MustCompile(`(?i)NORTHERN DISTRICT OF ILLINOIS`), "ilnd"},
	{regexp.MustCompile(`(?i)SOUTHERN DISTRICT OF FLORIDA`), "flsd"},
	{regexp.MustCompile(`(?i)SUPREME COURT OF THE UNITED STATES`), "scotus"},
	{regexp.MustCompile(`(?i)COURT OF APPEALS FOR THE FEDERAL CIRCUIT`), "cafc"},
}

// Generic banner patterns yield a court *name* that still needs a fuzzy
// registry search.
var (
	genericDistrictRE = regexp.MustCompile(`(?i)UNITED STATES DISTRICT COURT[\s,]+(?:FOR THE\s+)?([A-Z]+\s+DISTRICT OF\s+[A-Z ]+?)(?:\n|$|\.)`)
	genericAppealsRE  = regexp.MustCompile(`(?i)(?:UNITED STATES )?COURT OF APPEALS[\s,]+(?:FOR THE\s+)?([A-Z]+\s+CIRCUIT)`)
)

// caseNumberCourtTable maps court-abbreviation substrings seen in docket
// numbers to registry ids. Keys are matched as delimiter-bounded tokens.
var caseNumberCourtTable = map[string]string{
	"txed": "txed", "edtx": "txed",
	"txwd": "txwd", "wdtx": "txwd",
	"cand": "cand", "ndcal": "cand",
	"nysd": "nysd", "sdny": "nysd",
	"ded": "ded",
	"ilnd": "ilnd",
	"flsd": "flsd",
	"cafc": "cafc",
}

// caseNameCourtRE matches a parenthesized citation string inside a case name,
// e.g. "Smith v. Jones (E.D. Tex. 2021)".
var caseNameCourtRE = regexp.MustCompile(`\(([A-Z][A-Za-z.\s]+?)\s*(?:\d{4})?\)`)

// ResolveCourt resolves a document's court through the strategy's fallback
// chain. It never silently defaults to a fixed court: when no candidate is
// found the result carries Resolved=false, a reason, and every location tried.
func (e *Enricher) ResolveCourt(doc *model.Document, strat Strategy) (model.CourtResolution, error) {
	if e.reg == nil || e.reg.CourtCount() == 0 {
		return model.CourtResolution{}, fmt.Errorf("court registry is empty")
	}
	chain := genericCourtChain
	if strat == StrategyOpinion {
		chain = opinionCourtChain
	}

	var tried []string
	for _, ex := range chain {
		res, ok := ex.fn(e, doc)
		if !ok {
			tried = append(tried, ex.name)
			continue
		}
		e.validateResolution(&res)
		return res, nil
	}

	return model.CourtResolution{
		Resolved: false,
		Reason:   "no court candidate found in metadata, natural key, or content",
		Tried:    tried,
	}, nil
}

// validateResolution confirms a resolved court id still exists in the registry.
func (e *Enricher) validateResolution(res *model.CourtResolution) {
	if !res.Resolved {
		return
	}
	if res.CourtID == "" {
		res.Validation.AddError("resolved court has empty id")
		res.Resolved = false
		return
	}
	if _, ok := e.reg.CourtByID(res.CourtID); !ok {
		res.Validation.AddError(fmt.Sprintf("court id %q not present in registry", res.CourtID))
		res.Resolved = false
	}
}

func (e *Enricher) resolved(c registry.Court, method model.ExtractionMethod) model.CourtResolution {
	return model.CourtResolution{
		Resolved:       true,
		CourtID:        c.ID,
		Name:           c.Name,
		CitationString: c.CitationString,
		CourtType:      c.Type,
		Level:          c.Level,
		Method:         method,
	}
}

// extractDirectID treats a short alphabetic metadata token as a registry id.
// An unknown id falls through to the next extractor rather than failing.
func extractDirectID(e *Enricher, doc *model.Document) (model.CourtResolution, bool) {
	for _, raw := range []string{doc.Metadata.CourtID, doc.Metadata.Court} {
		token := strings.TrimSpace(raw)
		if token == "" || !directIDRE.MatchString(token) {
			continue
		}
		if c, ok := e.reg.CourtByID(strings.ToLower(token)); ok {
			return e.resolved(c, model.MethodDirectID), true
		}
	}
	return model.CourtResolution{}, false
}

// extractNameSearch fuzzy-searches name-like metadata fields against the
// registry. The first match is taken; the match count is recorded so callers
// can see how ambiguous the name was.
func extractNameSearch(e *Enricher, doc *model.Document) (model.CourtResolution, bool) {
	for _, raw := range []string{doc.Metadata.CourtName, doc.Metadata.Court} {
		name := strings.TrimSpace(raw)
		if name == "" || directIDRE.MatchString(name) {
			continue
		}
		matches := e.reg.SearchCourtsByName(name)
		if len(matches) == 0 {
			continue
		}
		res := e.resolved(matches[0], model.MethodNameSearch)
		res.MatchCount = len(matches)
		if len(matches) > 1 {
			res.Validation.AddWarning(fmt.Sprintf("court name %q matched %d registry entries", name, len(matches)))
		}
		return res, true
	}
	return model.CourtResolution{}, false
}

// extractCaseNumber matches known court-abbreviation tokens inside the
// natural key (case/docket number).
func extractCaseNumber(e *Enricher, doc *model.Document) (model.CourtResolution, bool) {
	key := strings.ToLower(doc.NaturalKey)
	if key == "" {
		return model.CourtResolution{}, false
	}
	tokens := strings.FieldsFunc(key, func(r rune) bool {
		return r == '-' || r == ':' || r == '_' || r == '.' || r == ' ' || r == '/'
	})
	for _, tok := range tokens {
		if id, ok := caseNumberCourtTable[tok]; ok {
			if c, found := e.reg.CourtByID(id); found {
				return e.resolved(c, model.MethodCaseNumber), true
			}
		}
	}
	return model.CourtResolution{}, false
}

// extractContentRegex scans the leading content: well-known court banners map
// straight to registry ids; the generic district/appeals banners yield a name
// that goes through a second fuzzy-search pass.
func extractContentRegex(e *Enricher, doc *model.Document) (model.CourtResolution, bool) {
	head := contentHead(doc.Content, contentHeadLimit)
	if strings.TrimSpace(head) == "" {
		return model.CourtResolution{}, false
	}

	for _, p := range knownCourtContentPatterns {
		if !p.re.MatchString(head) {
			continue
		}
		if c, ok := e.reg.CourtByID(p.courtID); ok {
			return e.resolved(c, model.MethodContentRegex), true
		}
	}

	for _, re := range []*regexp.Regexp{genericDistrictRE, genericAppealsRE} {
		m := re.FindStringSubmatch(head)
		if len(m) < 2 {
			continue
		}
		matches := e.reg.SearchCourtsByName(strings.TrimSpace(m[1]))
		if len(matches) == 0 {
			continue
		}
		res := e.resolved(matches[0], model.MethodContentRegex)
		res.MatchCount = len(matches)
		return res, true
	}

	return model.CourtResolution{}, false
}

// extractCaseNameParties pulls a parenthesized citation string out of the
// case name ("Smith v. Jones (E.D. Tex. 2021)") and matches it against
// registry citation strings. Opinions only.
func extractCaseNameParties(e *Enricher, doc *model.Document) (model.CourtResolution, bool) {
	name := strings.TrimSpace(doc.Metadata.CaseName)
	if name == "" {
		return model.CourtResolution{}, false
	}
	m := caseNameCourtRE.FindStringSubmatch(name)
	if len(m) < 2 {
		return model.CourtResolution{}, false
	}
	cite := strings.TrimSpace(m[1])
	if c, ok := e.reg.CourtByCitationString(cite); ok {
		return e.resolved(c, model.MethodCaseNameParties), true
	}
	return model.CourtResolution{}, false
}
