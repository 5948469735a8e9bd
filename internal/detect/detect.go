// Package detect assigns a document type and validates documents before
// enrichment.
//
// Type detection is a deterministic ordered rule list: the first matching
// rule wins and rules never combine. The order encodes trust: identifiers
// and explicit metadata outrank content sniffing.
package detect

import (
	"regexp"
	"strings"

	"github.com/openjurist/casepipe/internal/model"
)

// contentSniffLimit bounds how much content the sniffing rule inspects.
const contentSniffLimit = 1000

// opinionKeyPrefixes are natural-key prefixes assigned only to opinions by
// the upstream source.
var opinionKeyPrefixes = []string{"op-", "opn-"}

// sourceTypeMap translates the upstream source's type vocabulary into ours.
var sourceTypeMap = map[string]model.DocumentType{
	"opinion":        model.TypeOpinion,
	"lead_opinion":   model.TypeOpinion,
	"recap_document": model.TypeDocket,
	"docket_entry":   model.TypeDocket,
	"docket":         model.TypeDocket,
	"order":          model.TypeOrder,
	"minute_order":   model.TypeOrder,
	"transcript":     model.TypeTranscript,
	"brief":          model.TypeBrief,
	"motion":         model.TypeMotion,
}

var (
	orderedRE     = regexp.MustCompile(`(?i)IT IS (?:HEREBY )?ORDERED`)
	timestampRE   = regexp.MustCompile(`\d{1,2}:\d{2}:\d{2}`)
	courtSpeakRE  = regexp.MustCompile(`(?m)^\s*THE COURT:`)
	opinionHeadRE = regexp.MustCompile(`(?i)MEMORANDUM OPINION|OPINION OF THE COURT`)
	motionHeadRE  = regexp.MustCompile(`(?i)^\s*MOTION (?:TO|FOR)\b`)
)

// DetectType classifies a document. Rules, in order:
//  1. natural-key prefix reserved for opinions
//  2. explicit source type field mapped through sourceTypeMap
//  3. opinion-only metadata keys (author, cluster reference, per-curiam flag)
//  4. docket-only metadata keys (docket id, cause, nature of suit, assigned-to)
//  5. explicit document_type field when it names a known value
//  6. content sniffing on the first 1,000 characters
//  7. unknown
func DetectType(doc *model.Document) model.DocumentType {
	key := strings.ToLower(doc.NaturalKey)
	for _, p := range opinionKeyPrefixes {
		if strings.HasPrefix(key, p) {
			return model.TypeOpinion
		}
	}

	if st := strings.ToLower(strings.TrimSpace(doc.Metadata.SourceType)); st != "" {
		if t, ok := sourceTypeMap[st]; ok {
			return t
		}
	}

	if doc.Metadata.AuthorStr != "" || doc.Metadata.ClusterID != "" || doc.Metadata.PerCuriam {
		return model.TypeOpinion
	}

	if doc.Metadata.DocketID != "" || doc.Metadata.Cause != "" ||
		doc.Metadata.NatureOfSuit != "" || doc.Metadata.AssignedTo != "" {
		return model.TypeDocket
	}

	if doc.Metadata.DocumentType != "" {
		if t, ok := model.ParseDocumentType(doc.Metadata.DocumentType); ok {
			return t
		}
	}

	if t, ok := sniffContent(doc.Content); ok {
		return t
	}

	return model.TypeUnknown
}

func sniffContent(content string) (model.DocumentType, bool) {
	if content == "" {
		return model.TypeUnknown, false
	}
	head := content
	if len(head) > contentSniffLimit {
		head = head[:contentSniffLimit]
	}

	switch {
	case orderedRE.MatchString(head):
		return model.TypeOrder, true
	case courtSpeakRE.MatchString(head), timestampRE.MatchString(head):
		return model.TypeTranscript, true
	case opinionHeadRE.MatchString(head):
		return model.TypeOpinion, true
	case motionHeadRE.MatchString(head):
		return model.TypeMotion, true
	}
	return model.TypeUnknown, false
}
