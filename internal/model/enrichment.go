package model

// Validation classifies a candidate value before it is trusted. A result with
// errors is invalid; warnings attach context without rejecting the value.
type Validation struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Valid reports whether the validation carries no errors.
func (v Validation) Valid() bool { return len(v.Errors) == 0 }

// AddError appends a validation error.
func (v *Validation) AddError(msg string) { v.Errors = append(v.Errors, msg) }

// AddWarning appends a validation warning.
func (v *Validation) AddWarning(msg string) { v.Warnings = append(v.Warnings, msg) }

// ExtractionMethod records which fallback produced a court resolution.
type ExtractionMethod string

const (
	MethodDirectID        ExtractionMethod = "direct-id"
	MethodNameSearch      ExtractionMethod = "metadata-name-search"
	MethodCaseNumber      ExtractionMethod = "case-number-pattern"
	MethodContentRegex    ExtractionMethod = "content-regex"
	MethodCaseNameParties ExtractionMethod = "case-name-parties"
)

// CourtResolution is the output of the court-resolution stage.
// Resolved=true implies CourtID is non-empty and present in the court registry.
type CourtResolution struct {
	Resolved       bool             `json:"resolved"`
	CourtID        string           `json:"court_id,omitempty"`
	Name           string           `json:"name,omitempty"`
	CitationString string           `json:"citation_string,omitempty"`
	CourtType      string           `json:"court_type,omitempty"`
	Level          string           `json:"level,omitempty"`
	Method         ExtractionMethod `json:"extraction_method,omitempty"`
	MatchCount     int              `json:"match_count,omitempty"`
	Reason         string           `json:"reason,omitempty"`
	Tried          []string         `json:"locations_tried,omitempty"`
	Validation     Validation       `json:"validation"`
}

// Citation is one citation span found in document content.
type Citation struct {
	Text       string     `json:"text"`
	Kind       string     `json:"kind"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
	Volume     string     `json:"volume,omitempty"`
	Reporter   string     `json:"reporter,omitempty"`
	Page       string     `json:"page,omitempty"`
	PinCite    string     `json:"pin_cite,omitempty"`
	Year       string     `json:"year,omitempty"`
	Court      string     `json:"court,omitempty"`
	Plaintiff  string     `json:"plaintiff,omitempty"`
	Defendant  string     `json:"defendant,omitempty"`
	Validation Validation `json:"validation"`
}

// NormalizedReporter maps a raw reporter token to a registry edition.
// Per-document uniqueness is tracked by Edition, not by raw token.
type NormalizedReporter struct {
	Original     string `json:"original"`
	Edition      string `json:"edition"`
	BaseReporter string `json:"base_reporter"`
	Name         string `json:"name"`
	CiteType     string `json:"cite_type,omitempty"`
	MatchMethod  string `json:"match_method"`
}

// Judge attribution sources.
const (
	JudgeSourceMetadata     = "metadata"
	JudgeSourceInitialsOnly = "initials-only"
	JudgeSourceContentRegex = "content-regex"
)

// JudgeAttribution is the output of the judge-attribution stage.
// Enhanced=true means NameFound matched the judge registry; initials-only
// results never set Enhanced.
type JudgeAttribution struct {
	NameFound      string     `json:"name_found,omitempty"`
	Enhanced       bool       `json:"enhanced"`
	Source         string     `json:"source,omitempty"`
	RegistryID     string     `json:"registry_id,omitempty"`
	Slug           string     `json:"slug,omitempty"`
	PhotoAvailable bool       `json:"photo_available,omitempty"`
	Validation     Validation `json:"validation"`
}

// Structural element types.
const (
	ElementHeader        = "header"
	ElementSectionMarker = "section-marker"
	ElementTypeMarker    = "document-type-marker"
	ElementNumberedPara  = "numbered-paragraph"
)

// StructureElement is one recognized line in the document layout.
type StructureElement struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Line int    `json:"line_number"`
}

// StructureAnalysis summarizes document layout heuristics.
type StructureAnalysis struct {
	Elements   []StructureElement `json:"elements,omitempty"`
	TotalLines int                `json:"total_lines"`
	Score      float64            `json:"structure_score"`
}

// KeywordExtraction holds the three deduplicated lexicon hits. ShallowMatching
// is always true and is carried into persisted metadata so consumers know
// these are substring matches, not semantic analysis.
type KeywordExtraction struct {
	LegalConcepts   []string `json:"legal_concepts,omitempty"`
	LegalStandards  []string `json:"legal_standards,omitempty"`
	ProceduralTerms []string `json:"procedural_terms,omitempty"`
	ShallowMatching bool     `json:"is_shallow_matching"`
}

// Count returns the total keyword hits across all three lexicons.
func (k KeywordExtraction) Count() int {
	return len(k.LegalConcepts) + len(k.LegalStandards) + len(k.ProceduralTerms)
}

// QualityIndicators flags which enhancement categories produced a result.
type QualityIndicators struct {
	CourtResolved     bool `json:"court_resolved"`
	CitationsFound    bool `json:"citations_found"`
	JudgeIdentified   bool `json:"judge_identified"`
	KeywordsExtracted bool `json:"keywords_extracted"`
}

// EnrichedRecord is the assembled output of all stages for one document,
// ready for persistence and index hand-off.
type EnrichedRecord struct {
	DocumentID       int64                `json:"document_id"`
	NaturalKey       string               `json:"natural_key"`
	Type             DocumentType         `json:"document_type"`
	CaseName         string               `json:"case_name,omitempty"`
	Content          string               `json:"-"`
	Metadata         Metadata             `json:"metadata"`
	Court            CourtResolution      `json:"court"`
	Citations        []Citation           `json:"citations,omitempty"`
	Reporters        []NormalizedReporter `json:"reporters,omitempty"`
	Judge            JudgeAttribution     `json:"judge"`
	Structure        StructureAnalysis    `json:"structure"`
	Keywords         KeywordExtraction    `json:"keywords"`
	Quality          QualityIndicators    `json:"quality_indicators"`
	EnhancementCount int                  `json:"enhancement_count"`
}
