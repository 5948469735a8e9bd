package detect

import (
	"testing"

	"github.com/openjurist/casepipe/internal/model"
)

func TestDetectType_RuleOrder(t *testing.T) {
	tests := []struct {
		name string
		doc  model.Document
		want model.DocumentType
	}{
		{
			name: "opinion key prefix wins over everything",
			doc: model.Document{
				NaturalKey: "op-2021-881",
				Metadata:   model.Metadata{SourceType: "recap_document"},
			},
			want: model.TypeOpinion,
		},
		{
			name: "source type outranks opinion-only keys",
			doc: model.Document{
				NaturalKey: "2:21-cv-00123",
				Metadata:   model.Metadata{SourceType: "recap_document", AuthorStr: "GILSTRAP"},
			},
			want: model.TypeDocket,
		},
		{
			name: "author field implies opinion",
			doc: model.Document{
				NaturalKey: "2:21-cv-00123",
				Metadata:   model.Metadata{AuthorStr: "GILSTRAP"},
			},
			want: model.TypeOpinion,
		},
		{
			name: "per curiam flag implies opinion",
			doc: model.Document{
				NaturalKey: "2:21-cv-00123",
				Metadata:   model.Metadata{PerCuriam: true},
			},
			want: model.TypeOpinion,
		},
		{
			name: "docket-only keys imply docket",
			doc: model.Document{
				NaturalKey: "2:21-cv-00123",
				Metadata:   model.Metadata{AssignedTo: "Rodney Gilstrap"},
			},
			want: model.TypeDocket,
		},
		{
			name: "explicit document type when known",
			doc: model.Document{
				NaturalKey: "2:21-cv-00123",
				Metadata:   model.Metadata{DocumentType: "Order"},
			},
			want: model.TypeOrder,
		},
		{
			name: "unknown explicit type falls through to content",
			doc: model.Document{
				NaturalKey: "2:21-cv-00123",
				Metadata:   model.Metadata{DocumentType: "memo"},
				Content:    "IT IS HEREBY ORDERED that the motion is GRANTED.",
			},
			want: model.TypeOrder,
		},
		{
			name: "nothing matches",
			doc: model.Document{
				NaturalKey: "2:21-cv-00123",
				Content:    "An unremarkable page of prose.",
			},
			want: model.TypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectType(&tt.doc); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDetectType_ContentSniffing(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    model.DocumentType
	}{
		{"ordered clause", "IT IS ORDERED that the deadline is extended.", model.TypeOrder},
		{"court speaker label", "THE COURT: Please be seated.\nMR. SMITH: Thank you.", model.TypeTranscript},
		{"session timestamps", "Proceedings began at 09:30:15 before the jury.", model.TypeTranscript},
		{"opinion heading", "MEMORANDUM OPINION\nBefore the court is defendant's motion.", model.TypeOpinion},
		{"motion heading", "MOTION TO DISMISS\nDefendant moves under Rule 12(b)(6).", model.TypeMotion},
		{"empty content", "", model.TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := model.Document{NaturalKey: "misc-1", Content: tt.content}
			if got := DetectType(&doc); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDetectType_SniffsOnlyLeadingContent(t *testing.T) {
	// The ordered clause sits past the sniffing window, so it must not fire.
	filler := make([]byte, 1100)
	for i := range filler {
		filler[i] = 'x'
	}
	doc := model.Document{
		NaturalKey: "misc-2",
		Content:    string(filler) + "\nIT IS HEREBY ORDERED.",
	}
	if got := DetectType(&doc); got != model.TypeUnknown {
		t.Errorf("expected unknown, got %s", got)
	}
}

func TestValidate(t *testing.T) {
	valid := model.Document{
		ID:         7,
		NaturalKey: "2:21-cv-00123",
		Content:    "some content",
		Metadata:   model.Metadata{CourtID: "txed"},
		Type:       model.TypeDocket,
	}
	v := Validate(&valid)
	if !v.Valid() {
		t.Fatalf("expected valid, got errors %v", v.Errors)
	}
	if len(v.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", v.Warnings)
	}

	invalid := model.Document{ID: 0, NaturalKey: " ", Content: ""}
	v = Validate(&invalid)
	if len(v.Errors) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(v.Errors), v.Errors)
	}

	// Missing metadata and unknown type warn without invalidating.
	warned := model.Document{ID: 7, NaturalKey: "k", Content: "c", Type: model.TypeUnknown}
	v = Validate(&warned)
	if !v.Valid() {
		t.Fatalf("expected valid, got errors %v", v.Errors)
	}
	if len(v.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %d: %v", len(v.Warnings), v.Warnings)
	}
}
