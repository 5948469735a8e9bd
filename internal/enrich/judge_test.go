package enrich

import (
	"testing"

	"github.com/openjurist/casepipe/internal/model"
)

func TestAttributeJudge_MetadataEnhanced(t *testing.T) {
	e := newTestEnricher(t)

	doc := model.Document{
		ID:         1,
		NaturalKey: "2:21-cv-00123",
		Metadata:   model.Metadata{JudgeName: "Rodney Gilstrap"},
	}
	att, err := e.AttributeJudge(&doc, StrategyGeneric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.NameFound != "Rodney Gilstrap" {
		t.Errorf("expected Rodney Gilstrap, got %q", att.NameFound)
	}
	if !att.Enhanced {
		t.Fatal("expected registry enhancement")
	}
	if att.RegistryID != "j-gilstrap" || att.Slug != "rodney-gilstrap" {
		t.Errorf("registry fields mismatch: id=%q slug=%q", att.RegistryID, att.Slug)
	}
	if !att.PhotoAvailable {
		t.Error("expected photo availability for Gilstrap")
	}
	if att.Source != model.JudgeSourceMetadata {
		t.Errorf("expected metadata source, got %q", att.Source)
	}
}

func TestAttributeJudge_HonorificStripped(t *testing.T) {
	e := newTestEnricher(t)

	doc := model.Document{
		ID:         2,
		NaturalKey: "2:21-cv-00124",
		Metadata:   model.Metadata{AssignedTo: "The Honorable Judge Rodney Gilstrap"},
	}
	att, err := e.AttributeJudge(&doc, StrategyGeneric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.NameFound != "Rodney Gilstrap" {
		t.Errorf("expected honorifics stripped, got %q", att.NameFound)
	}
	if !att.Enhanced {
		t.Error("expected enhancement after cleanup")
	}
}

func TestAttributeJudge_InitialsNeverEnhance(t *testing.T) {
	e := newTestEnricher(t)

	// Content names a registry judge, but the initials short-circuit must
	// win and must never trigger a lookup.
	doc := model.Document{
		ID:         3,
		NaturalKey: "2:21-cv-00125",
		Metadata:   model.Metadata{JudgeInitials: "JRG"},
		Content:    "Signed by District Judge Rodney Gilstrap on March 3.",
	}
	att, err := e.AttributeJudge(&doc, StrategyGeneric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.NameFound != "Judge JRG" {
		t.Errorf("expected 'Judge JRG', got %q", att.NameFound)
	}
	if att.Enhanced {
		t.Error("initials-only results must never be enhanced")
	}
	if att.Source != model.JudgeSourceInitialsOnly {
		t.Errorf("expected initials-only source, got %q", att.Source)
	}
	if att.RegistryID != "" {
		t.Errorf("initials must not resolve a registry id, got %q", att.RegistryID)
	}
}

func TestAttributeJudge_ContentPatterns(t *testing.T) {
	e := newTestEnricher(t)

	tests := []struct {
		name     string
		content  string
		wantName string
	}{
		{
			"signed by",
			"Text of the order.\nSigned by Judge Rodney Gilstrap on 3/3/2021.",
			"Rodney Gilstrap",
		},
		{
			"title before district judge",
			"SO ORDERED.\n\nRodney Gilstrap, United States District Judge",
			"Rodney Gilstrap",
		},
		{
			"before list",
			"Before: Posner, Circuit Judge.\nThe appeal follows a bench trial.",
			"Posner",
		},
		{
			"all caps signature block",
			"It is so ordered.\n\nRODNEY GILSTRAP, UNITED STATES DISTRICT JUDGE",
			"Rodney Gilstrap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := model.Document{ID: 4, NaturalKey: "misc-4", Content: tt.content}
			att, err := e.AttributeJudge(&doc, StrategyGeneric)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if att.NameFound != tt.wantName {
				t.Errorf("expected %q, got %q", tt.wantName, att.NameFound)
			}
			if att.Source != model.JudgeSourceContentRegex {
				t.Errorf("expected content-regex source, got %q", att.Source)
			}
		})
	}
}

func TestAttributeJudge_OpinionAuthorStrategy(t *testing.T) {
	e := newTestEnricher(t)

	doc := model.Document{
		ID:         5,
		NaturalKey: "op-5",
		Type:       model.TypeOpinion,
		Metadata:   model.Metadata{AuthorStr: "GILSTRAP"},
	}

	att, err := e.AttributeJudge(&doc, StrategyOpinion)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.NameFound != "Gilstrap" {
		t.Errorf("expected title-cased author, got %q", att.NameFound)
	}
	if !att.Enhanced {
		t.Error("expected author fragment to enhance against the registry")
	}

	// The generic strategy must ignore author_str entirely.
	att, err = e.AttributeJudge(&doc, StrategyGeneric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.NameFound != "" {
		t.Errorf("generic strategy must not read author_str, got %q", att.NameFound)
	}
}

func TestAttributeJudge_RegistryMissKeepsName(t *testing.T) {
	e := newTestEnricher(t)

	doc := model.Document{
		ID:         6,
		NaturalKey: "2:21-cv-00126",
		Metadata:   model.Metadata{JudgeName: "Zebulon Quixote"},
	}
	att, err := e.AttributeJudge(&doc, StrategyGeneric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.NameFound != "Zebulon Quixote" {
		t.Errorf("expected raw name kept, got %q", att.NameFound)
	}
	if att.Enhanced {
		t.Error("registry miss must not report enhancement")
	}
}

func TestAttributeJudge_NothingFound(t *testing.T) {
	e := newTestEnricher(t)

	doc := model.Document{ID: 7, NaturalKey: "misc-7", Content: "No names appear in this text."}
	att, err := e.AttributeJudge(&doc, StrategyGeneric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.NameFound != "" || att.Enhanced {
		t.Errorf("expected empty attribution, got %+v", att)
	}
}

func TestCleanJudgeName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Judge Rodney Gilstrap", "Rodney Gilstrap"},
		{"Hon. Lucy H. Koh", "Lucy H. Koh"},
		{"RODNEY GILSTRAP,", "Rodney Gilstrap"},
		{"  Rodney Gilstrap.  ", "Rodney Gilstrap"},
		{"Justice Richard A. Posner", "Richard A. Posner"},
	}
	for _, tt := range tests {
		if got := cleanJudgeName(tt.raw); got != tt.want {
			t.Errorf("cleanJudgeName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
