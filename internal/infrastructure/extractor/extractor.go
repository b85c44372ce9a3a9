package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/extractor/docx"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/extractor/pdf"
)

var paragraphBoundary = regexp.MustCompile(`\n{2,}|\.\s+[A-Z]`)

var errEmptyText = errors.New("no text content")

// Extractor turns DOCX and PDF bytes into normalized text.
type Extractor struct {
	maxBytes      int64
	pdfStrategies []pdf.Strategy
}

func New(maxFileSizeMB int) *Extractor {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 10
	}
	return &Extractor{
		maxBytes:      int64(maxFileSizeMB) << 20,
		pdfStrategies: pdf.DefaultStrategies,
	}
}

func FormatFromFilename(filename string) (domain.DocumentFormat, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return domain.FormatDOCX, true
	case ".pdf":
		return domain.FormatPDF, true
	default:
		return "", false
	}
}

func (e *Extractor) Extract(_ context.Context, filename string, data []byte) domain.ExtractedDocument {
	name := filepath.Base(filename)
	format, ok := FormatFromFilename(name)
	if !ok {
		return failed(name, "", fmt.Sprintf("%s: %q", domain.ExtractionUnsupported, strings.ToLower(filepath.Ext(name))))
	}
	if int64(len(data)) > e.maxBytes {
		return failed(name, format, fmt.Sprintf("%s: %d bytes exceeds %d", domain.ExtractionTooLarge, len(data), e.maxBytes))
	}

	raw, err := e.Text(format, data)
	if err != nil {
		slog.Warn("document_extraction_failed", "filename", name, "format", string(format), "error", err)
		return failed(name, format, fmt.Sprintf("%s: %v", domain.ExtractionUnreadable, err))
	}

	content := Normalize(raw)
	return domain.ExtractedDocument{
		Filename:       name,
		Format:         format,
		RawText:        content,
		DocumentType:   domain.TypeUnknown,
		WordCount:      len(strings.Fields(content)),
		ParagraphCount: CountParagraphs(raw),
	}
}

// Text returns the raw, not yet normalized, text of a supported document.
func (e *Extractor) Text(format domain.DocumentFormat, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch format {
	case domain.FormatDOCX:
		text, err = docx.Text(data)
	case domain.FormatPDF:
		text, err = pdf.Text(data, e.pdfStrategies)
	default:
		return "", fmt.Errorf("%s: %q", domain.ExtractionUnsupported, format)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errEmptyText
	}
	return text, nil
}

// Normalize collapses every whitespace run into a single space.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CountParagraphs runs on the raw text so blank-line breaks still separate paragraphs.
func CountParagraphs(text string) int {
	count := 0
	for _, part := range paragraphBoundary.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}

func failed(filename string, format domain.DocumentFormat, reason string) domain.ExtractedDocument {
	return domain.ExtractedDocument{
		Filename:     filename,
		Format:       format,
		DocumentType: domain.TypeUnknown,
		Error:        reason,
	}
}
