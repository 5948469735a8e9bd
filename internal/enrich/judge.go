package enrich

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openjurist/casepipe/internal/model"
)

// judgePattern is one ordered content extractor for judge names. Patterns run
// over the leading and trailing content windows; the first capture wins.
type judgePattern struct {
	name string
	re   *regexp.Regexp
}

// namePart matches one capitalized name token, allowing initials and ALL-CAPS.
const namePart = `[A-Z][A-Za-z.'\-]*`

// Name tokens are separated by single spaces so a capture can never swallow
// surrounding sentences across line breaks.
var judgePatterns = []judgePattern{
	{"signed-by", regexp.MustCompile(`Signed by (?:District Judge|Magistrate Judge|Judge)\s+((?:` + namePart + `[ ]){0,3}` + namePart + `)`)},
	{"title-district-judge", regexp.MustCompile(`((?:` + namePart + `[ ]){1,3}` + namePart + `),?[ ]+(?:United States[ ])?District Judge`)},
	{"before-list", regexp.MustCompile(`(?m)^\s*Before:?[ ]+((?:` + namePart + `[ ]?){1,4})(?:,|\.|$)`)},
	{"judge-label", regexp.MustCompile(`(?m)^\s*JUDGE:?[ ]+((?:` + namePart + `[ ]){0,3}` + namePart + `)`)},
	{"trailing-j", regexp.MustCompile(`(?m)((?:` + namePart + `[ ]){0,3}` + namePart + `),[ ]+(?:J\.|Circuit Judge|dissenting|concurring)\s*$`)},
	{"all-caps-district-judge", regexp.MustCompile(`([A-Z][A-Z.'\- ]+[A-Z]),\s+UNITED STATES DISTRICT JUDGE`)},
}

// judgeNameFormatRE accepts 1–4 capitalized tokens as a plausible name.
var judgeNameFormatRE = regexp.MustCompile(`^(?:` + namePart + `\s+){0,3}` + namePart + `$`)

// honorificRE strips leading titles before validation.
var honorificRE = regexp.MustCompile(`^(?i:(?:the\s+honorable|honorable|hon\.|judge|justice|magistrate judge|chief judge)\s+)+`)

// AttributeJudge finds and, when possible, enhances the presiding or
// authoring judge for a document. Candidate order: metadata name fields,
// initials-only short circuit, content regex. Initials never trigger a
// registry lookup, so an initials-only result is never Enhanced.
func (e *Enricher) AttributeJudge(doc *model.Document, strat Strategy) (model.JudgeAttribution, error) {
	if e.reg == nil || e.reg.JudgeCount() == 0 {
		return model.JudgeAttribution{}, fmt.Errorf("judge registry is empty")
	}
	name := doc.JudgeCandidate()
	if name == "" && strat == StrategyOpinion {
		// Opinion metadata names the authoring judge in author_str.
		name = strings.TrimSpace(doc.Metadata.AuthorStr)
	}
	if name != "" {
		return e.enhanceCandidate(name, model.JudgeSourceMetadata), nil
	}

	if initials := strings.TrimSpace(doc.Metadata.JudgeInitials); initials != "" {
		return model.JudgeAttribution{
			NameFound: "Judge " + initials,
			Enhanced:  false,
			Source:    model.JudgeSourceInitialsOnly,
		}, nil
	}

	if name := findJudgeInContent(doc.Content); name != "" {
		return e.enhanceCandidate(name, model.JudgeSourceContentRegex), nil
	}

	return model.JudgeAttribution{Enhanced: false}, nil
}

// enhanceCandidate validates a found name and looks it up in the judge
// registry. A registry miss still returns the raw name so downstream
// consumers keep the signal.
func (e *Enricher) enhanceCandidate(raw, source string) model.JudgeAttribution {
	att := model.JudgeAttribution{Source: source}

	name := cleanJudgeName(raw)
	if name == "" {
		att.Validation.AddError("judge candidate did not survive name cleanup")
		return att
	}
	att.NameFound = name

	if !judgeNameFormatRE.MatchString(name) {
		att.Validation.AddWarning("judge name has unexpected format; registry lookup skipped")
		return att
	}

	j, ok := e.reg.JudgeByName(name)
	if !ok {
		return att
	}

	att.Enhanced = true
	att.RegistryID = j.ID
	att.Slug = j.Slug
	att.PhotoAvailable = j.PhotoPath != ""
	return att
}

// findJudgeInContent runs the ordered pattern list over the first 2,000 and
// last 1,000 characters of content.
func findJudgeInContent(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	windows := []string{
		contentHead(content, contentHeadLimit),
		contentTail(content, contentTailLimit),
	}
	for _, p := range judgePatterns {
		for _, w := range windows {
			m := p.re.FindStringSubmatch(w)
			if m == nil {
				continue
			}
			candidate := strings.TrimSpace(m[1])
			if rejectCandidate(candidate) {
				continue
			}
			return candidate
		}
	}
	return ""
}

// rejectCandidate filters likely false positives: all-uppercase strings
// longer than four words are almost always section headers, not names.
func rejectCandidate(candidate string) bool {
	if candidate == "" {
		return true
	}
	words := strings.Fields(candidate)
	if len(words) > 4 && candidate == strings.ToUpper(candidate) {
		return true
	}
	return false
}

// cleanJudgeName strips honorifics and trailing punctuation, and title-cases
// ALL-CAPS names so registry lookups behave.
func cleanJudgeName(raw string) string {
	name := strings.TrimSpace(raw)
	name = honorificRE.ReplaceAllString(name, "")
	name = strings.Trim(name, " ,.:;")
	if name == "" {
		return ""
	}
	if name == strings.ToUpper(name) {
		name = titleCase(name)
	}
	return name
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
