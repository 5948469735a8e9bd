package detect

import (
	"strings"

	"github.com/openjurist/casepipe/internal/model"
)

// Validate checks a document before enrichment. Errors make the document
// ineligible under strict validation; warnings always travel with the result.
func Validate(doc *model.Document) model.Validation {
	var v model.Validation

	if doc.ID <= 0 {
		v.AddError("document has no source id")
	}
	if strings.TrimSpace(doc.NaturalKey) == "" {
		v.AddError("document has no natural key")
	}
	if strings.TrimSpace(doc.Content) == "" {
		v.AddError("document has no content")
	}

	if doc.Metadata.IsEmpty() {
		v.AddWarning("document carries no metadata")
	}
	if doc.Type == model.TypeUnknown {
		v.AddWarning("document type could not be determined")
	}

	return v
}
