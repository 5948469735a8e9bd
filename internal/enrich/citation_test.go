package enrich

import (
	"testing"

	"github.com/openjurist/casepipe/internal/model"
)

func TestExtractCitations_FullContext(t *testing.T) {
	e := newTestEnricher(t)

	content := "Smith v. Jones, 123 F.3d 456, 460 (Fed. Cir. 1997) controls here."
	doc := model.Document{ID: 1, NaturalKey: "op-1", Content: content}

	citations, err := e.ExtractCitations(&doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(citations))
	}

	c := citations[0]
	if c.Volume != "123" || c.Reporter != "F.3d" || c.Page != "456" {
		t.Errorf("core mismatch: volume=%q reporter=%q page=%q", c.Volume, c.Reporter, c.Page)
	}
	if c.PinCite != "460" {
		t.Errorf("expected pin cite 460, got %q", c.PinCite)
	}
	if c.Court != "Fed. Cir." || c.Year != "1997" {
		t.Errorf("parenthetical mismatch: court=%q year=%q", c.Court, c.Year)
	}
	if c.Plaintiff != "Smith" || c.Defendant != "Jones" {
		t.Errorf("parties mismatch: plaintiff=%q defendant=%q", c.Plaintiff, c.Defendant)
	}
	if c.Kind != KindCaseCitation {
		t.Errorf("expected case-citation kind, got %q", c.Kind)
	}
	if !c.Validation.Valid() {
		t.Errorf("expected valid citation, got %v", c.Validation.Errors)
	}

	// The span must reproduce the cited text.
	if got := content[c.Start:c.End]; got != c.Text {
		t.Errorf("span mismatch: content[%d:%d] = %q, text = %q", c.Start, c.End, got, c.Text)
	}
}

func TestExtractCitations_MultipleReporters(t *testing.T) {
	e := newTestEnricher(t)

	content := "See 550 U.S. 544 and 835 F. Supp. 2d 1109; accord 910 F.2d 300."
	doc := model.Document{ID: 2, NaturalKey: "op-2", Content: content}

	citations, err := e.ExtractCitations(&doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(citations) != 3 {
		t.Fatalf("expected 3 citations, got %d: %+v", len(citations), citations)
	}

	wantReporters := []string{"U.S.", "F. Supp. 2d", "F.2d"}
	for i, want := range wantReporters {
		if citations[i].Reporter != want {
			t.Errorf("citation %d: expected reporter %q, got %q", i, want, citations[i].Reporter)
		}
	}
}

func TestExtractCitations_FiltersImplausibleTokens(t *testing.T) {
	e := newTestEnricher(t)

	// "Sec" carries no period, so the volume/page-shaped numbers around it
	// must not produce a citation.
	doc := model.Document{ID: 3, NaturalKey: "misc-3", Content: "See 12 Sec 34 of the agreement."}
	citations, err := e.ExtractCitations(&doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(citations) != 0 {
		t.Errorf("expected no citations, got %+v", citations)
	}
}

func TestExtractCitations_EmptyContent(t *testing.T) {
	e := newTestEnricher(t)

	doc := model.Document{ID: 4, NaturalKey: "misc-4"}
	citations, err := e.ExtractCitations(&doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(citations) != 0 {
		t.Errorf("expected no citations for empty content, got %d", len(citations))
	}
}

func TestExtractCitations_InvalidUTF8(t *testing.T) {
	e := newTestEnricher(t)

	doc := model.Document{ID: 5, NaturalKey: "misc-5", Content: "broken \xff\xfe bytes"}
	if _, err := e.ExtractCitations(&doc); err == nil {
		t.Fatal("expected error for invalid UTF-8 content")
	}
}

func TestExtractCitations_ValidationFlagsZeroVolume(t *testing.T) {
	e := newTestEnricher(t)

	doc := model.Document{ID: 6, NaturalKey: "misc-6", Content: "Cited at 0 F.3d 456."}
	citations, err := e.ExtractCitations(&doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(citations))
	}
	if citations[0].Validation.Valid() {
		t.Error("expected validation error for zero volume")
	}
}
