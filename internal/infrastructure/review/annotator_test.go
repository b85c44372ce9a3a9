package review

import (
	"strings"
	"testing"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/extractor/docx"
)

var sampleFlags = []domain.RedFlag{
	{Type: domain.FlagJurisdictionError, Severity: domain.SeverityHigh, Message: "References UAE Federal Courts instead of ADGM", Suggestion: "Update jurisdiction to ADGM Courts"},
	{Type: domain.FlagMissingDate, Severity: domain.SeverityLow, Message: "No date found"},
}

func TestAnnotateAppendsToDOCX(t *testing.T) {
	original, err := docx.Build([]docx.Paragraph{{Text: "Articles of Association"}, {Text: "Registered office in Abu Dhabi"}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	name, out, err := NewAnnotator().Annotate("aoa.docx", "", original, sampleFlags)
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	if name != "aoa_reviewed.docx" {
		t.Fatalf("unexpected name %q", name)
	}
	paragraphs, err := docx.Paragraphs(out)
	if err != nil {
		t.Fatalf("Paragraphs() error = %v", err)
	}
	want := []string{
		"Articles of Association",
		"Registered office in Abu Dhabi",
		"Review Notes",
		"1. [HIGH] jurisdiction_error: References UAE Federal Courts instead of ADGM",
		"Suggestion: Update jurisdiction to ADGM Courts",
		"2. [LOW] missing_date: No date found",
	}
	if strings.Join(paragraphs, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected paragraphs:\n%s", strings.Join(paragraphs, "\n"))
	}
}

func TestAnnotateConvertsOtherFormatsToDOCX(t *testing.T) {
	name, out, err := NewAnnotator().Annotate("scan.PDF", "Board resolution text", []byte("%PDF"), nil)
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	if name != "scan_reviewed.docx" {
		t.Fatalf("unexpected name %q", name)
	}
	paragraphs, err := docx.Paragraphs(out)
	if err != nil {
		t.Fatalf("Paragraphs() error = %v", err)
	}
	if len(paragraphs) != 4 || paragraphs[1] != "Board resolution text" || paragraphs[3] != noIssuesNote {
		t.Fatalf("unexpected paragraphs %v", paragraphs)
	}
}

func TestAnnotateRejectsCorruptDOCX(t *testing.T) {
	if _, _, err := NewAnnotator().Annotate("bad.docx", "", []byte("not a zip"), sampleFlags); err == nil {
		t.Fatalf("expected error")
	}
}
