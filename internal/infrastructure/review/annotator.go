// Package review writes analysis findings back into a Word document.
package review

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/extractor/docx"
)

const (
	notesHeading = "Review Notes"
	noIssuesNote = "No issues were detected in this document."
)

type Annotator struct{}

func NewAnnotator() *Annotator {
	return &Annotator{}
}

// Annotate appends a review notes section to a DOCX input. Other formats cannot be edited in
// place, so their extracted text is copied into a new DOCX followed by the same notes.
func (a *Annotator) Annotate(filename string, text string, data []byte, flags []domain.RedFlag) (string, []byte, error) {
	notes := Notes(flags)
	output := ReviewedName(filename)

	if strings.EqualFold(filepath.Ext(filename), ".docx") {
		annotated, err := docx.AppendParagraphs(data, notes)
		if err != nil {
			return "", nil, fmt.Errorf("append review notes: %w", err)
		}
		return output, annotated, nil
	}

	paragraphs := make([]docx.Paragraph, 0, len(notes)+2)
	paragraphs = append(paragraphs, docx.Paragraph{Text: filepath.Base(filename), Bold: true})
	if strings.TrimSpace(text) != "" {
		paragraphs = append(paragraphs, docx.Paragraph{Text: text})
	}
	paragraphs = append(paragraphs, notes...)
	built, err := docx.Build(paragraphs)
	if err != nil {
		return "", nil, fmt.Errorf("build reviewed document: %w", err)
	}
	return output, built, nil
}

// Notes renders flags as paragraphs: a bold heading, then one finding and one suggestion line per flag.
func Notes(flags []domain.RedFlag) []docx.Paragraph {
	notes := []docx.Paragraph{{Text: notesHeading, Bold: true}}
	if len(flags) == 0 {
		return append(notes, docx.Paragraph{Text: noIssuesNote})
	}
	for i, flag := range flags {
		notes = append(notes, docx.Paragraph{
			Text: fmt.Sprintf("%d. [%s] %s: %s", i+1, strings.ToUpper(string(flag.Severity)), flag.Type, flag.Message),
			Bold: flag.Severity == domain.SeverityHigh,
		})
		if flag.Suggestion != "" {
			notes = append(notes, docx.Paragraph{Text: "Suggestion: " + flag.Suggestion})
		}
	}
	return notes
}

// ReviewedName turns "dir/Articles.pdf" into "Articles_reviewed.docx".
func ReviewedName(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		stem = "document"
	}
	return stem + "_reviewed.docx"
}
