// Package model defines the document and enrichment types shared across the
// casepipe pipeline.
//
// A Document is read-only input: stages attach results, they never mutate
// Content or Metadata. Enrichment results are folded into an EnrichedRecord
// by the assembly stage and then persisted.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DocumentType classifies a legal-case document. Assigned once by type
// detection; the values are mutually exclusive.
type DocumentType string

const (
	TypeOpinion    DocumentType = "opinion"
	TypeDocket     DocumentType = "docket"
	TypeOrder      DocumentType = "order"
	TypeTranscript DocumentType = "transcript"
	TypeBrief      DocumentType = "brief"
	TypeMotion     DocumentType = "motion"
	TypeUnknown    DocumentType = "unknown"
)

// KnownTypes lists every valid document type.
var KnownTypes = []DocumentType{
	TypeOpinion, TypeDocket, TypeOrder, TypeTranscript, TypeBrief, TypeMotion, TypeUnknown,
}

// ParseDocumentType maps a raw string to a known type, or TypeUnknown.
func ParseDocumentType(raw string) (DocumentType, bool) {
	v := DocumentType(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range KnownTypes {
		if v == t {
			return t, true
		}
	}
	return TypeUnknown, false
}

// Metadata is the strict optional-field schema applied at the ingestion
// boundary. Empty string means absent. Fields the schema does not know about
// are preserved in Extra so nothing is silently dropped.
type Metadata struct {
	CourtID       string `json:"court_id,omitempty"`
	CourtName     string `json:"court_name,omitempty"`
	Court         string `json:"court,omitempty"`
	JudgeName     string `json:"judge_name,omitempty"`
	Judge         string `json:"judge,omitempty"`
	AssignedTo    string `json:"assigned_to,omitempty"`
	AuthorStr     string `json:"author_str,omitempty"`
	JudgeInitials string `json:"judge_initials,omitempty"`
	DocketNumber  string `json:"docket_number,omitempty"`
	DocketID      string `json:"docket_id,omitempty"`
	CaseName      string `json:"case_name,omitempty"`
	DateFiled     string `json:"date_filed,omitempty"`
	NatureOfSuit  string `json:"nature_of_suit,omitempty"`
	Cause         string `json:"cause,omitempty"`
	SourceType    string `json:"source_type,omitempty"`
	DocumentType  string `json:"document_type,omitempty"`
	ClusterID     string `json:"cluster_id,omitempty"`
	PerCuriam     bool   `json:"per_curiam,omitempty"`

	Extra map[string]string `json:"extra,omitempty"`
}

// Document is one raw legal-case document fetched from the upstream source.
type Document struct {
	ID         int64        `json:"id"`
	NaturalKey string       `json:"natural_key"`
	Type       DocumentType `json:"document_type"`
	Content    string       `json:"content,omitempty"`
	Metadata   Metadata     `json:"metadata"`
	CreatedAt  time.Time    `json:"created_at"`
}

// metadataKeys maps raw source keys to setters on Metadata.
var metadataKeys = map[string]func(*Metadata, string){
	"court_id":       func(m *Metadata, v string) { m.CourtID = v },
	"courtid":        func(m *Metadata, v string) { m.CourtID = v },
	"court_name":     func(m *Metadata, v string) { m.CourtName = v },
	"court":          func(m *Metadata, v string) { m.Court = v },
	"judge_name":     func(m *Metadata, v string) { m.JudgeName = v },
	"judge":          func(m *Metadata, v string) { m.Judge = v },
	"assigned_to":    func(m *Metadata, v string) { m.AssignedTo = v },
	"author_str":     func(m *Metadata, v string) { m.AuthorStr = v },
	"judge_initials": func(m *Metadata, v string) { m.JudgeInitials = v },
	"docket_number":  func(m *Metadata, v string) { m.DocketNumber = v },
	"docket_id":      func(m *Metadata, v string) { m.DocketID = v },
	"case_name":      func(m *Metadata, v string) { m.CaseName = v },
	"date_filed":     func(m *Metadata, v string) { m.DateFiled = v },
	"nature_of_suit": func(m *Metadata, v string) { m.NatureOfSuit = v },
	"cause":          func(m *Metadata, v string) { m.Cause = v },
	"source_type":    func(m *Metadata, v string) { m.SourceType = v },
	"document_type":  func(m *Metadata, v string) { m.DocumentType = v },
	"cluster_id":     func(m *Metadata, v string) { m.ClusterID = v },
}

// ParseMetadata converts a loosely-shaped source map into the strict schema.
// Mistyped or unparseable values become warnings, never silent coercions.
// Unknown keys land in Extra.
func ParseMetadata(raw map[string]any) (Metadata, []string) {
	m := Metadata{}
	var warnings []string

	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))

		if key == "per_curiam" {
			switch b := v.(type) {
			case bool:
				m.PerCuriam = b
			case string:
				m.PerCuriam = strings.EqualFold(b, "true")
			default:
				warnings = append(warnings, fmt.Sprintf("per_curiam: expected bool, got %T", v))
			}
			continue
		}

		s, ok := stringifyMetaValue(v)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s: unsupported value type %T", key, v))
			continue
		}
		if set, known := metadataKeys[key]; known {
			set(&m, strings.TrimSpace(s))
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]string)
		}
		m.Extra[key] = s
	}

	return m, warnings
}

func stringifyMetaValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case bool:
		return fmt.Sprintf("%t", t), true
	case float64:
		// JSON numbers decode as float64; keep integers clean.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t)), true
		}
		return fmt.Sprintf("%g", t), true
	case int:
		return fmt.Sprintf("%d", t), true
	case int64:
		return fmt.Sprintf("%d", t), true
	default:
		return "", false
	}
}

// IsEmpty reports whether no metadata field was populated at ingestion.
func (m Metadata) IsEmpty() bool {
	return m.CourtID == "" && m.CourtName == "" && m.Court == "" &&
		m.JudgeName == "" && m.Judge == "" && m.AssignedTo == "" &&
		m.AuthorStr == "" && m.JudgeInitials == "" &&
		m.DocketNumber == "" && m.DocketID == "" && m.CaseName == "" &&
		m.DateFiled == "" && m.NatureOfSuit == "" && m.Cause == "" &&
		m.SourceType == "" && m.DocumentType == "" && m.ClusterID == "" &&
		!m.PerCuriam && len(m.Extra) == 0
}

// JudgeCandidate returns the first non-empty judge-name metadata field.
func (d *Document) JudgeCandidate() string {
	for _, v := range []string{d.Metadata.JudgeName, d.Metadata.Judge, d.Metadata.AssignedTo} {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
