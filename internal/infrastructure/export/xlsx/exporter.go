// Package xlsx renders analysis reports as Excel workbooks.
package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetSummary   = "Summary"
	SheetDocuments = "Documents"
	SheetIssues    = "Issues"
)

type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string {
	return ContentType
}

// Export writes one workbook with a summary sheet, one row per document and one row per issue.
func (e *Exporter) Export(report domain.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}
	for _, name := range []string{SheetDocuments, SheetIssues} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	w := &sheetWriter{file: f, header: header}
	w.summary(report)
	w.documents(report.DocumentDetails)
	w.issues(report.DocumentDetails)
	if w.err != nil {
		return nil, w.err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so row writes read as a flat sequence.
type sheetWriter struct {
	file   *excelize.File
	header int
	err    error
}

func (w *sheetWriter) row(sheet string, row int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
}

func (w *sheetWriter) headerRow(sheet string, columns ...any) {
	w.row(sheet, 1, columns...)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		w.err = err
		return
	}
	if err := w.file.SetCellStyle(sheet, "A1", last, w.header); err != nil {
		w.err = fmt.Errorf("style %s header: %w", sheet, err)
		return
	}
	if err := w.file.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		w.err = fmt.Errorf("freeze %s header: %w", sheet, err)
	}
}

func (w *sheetWriter) summary(report domain.Report) {
	s := report.AnalysisSummary
	issues := report.IssuesSummary
	w.headerRow(SheetSummary, "Field", "Value")
	rows := [][]any{
		{"Generated", report.Timestamp},
		{"Process", s.Process},
		{"Documents uploaded", s.DocumentsUploaded},
		{"Required documents", s.RequiredDocuments},
		{"Missing documents", strings.Join(s.MissingDocuments, ", ")},
		{"Completion rate (%)", s.CompletionRate},
		{"Total issues", issues.TotalIssues},
		{"High severity", issues.HighSeverity},
		{"Medium severity", issues.MediumSeverity},
		{"Low severity", issues.LowSeverity},
	}
	for i, r := range rows {
		w.row(SheetSummary, i+2, r...)
	}
	next := len(rows) + 3
	w.row(SheetSummary, next, "Recommendations")
	for i, rec := range report.Recommendations {
		w.row(SheetSummary, next+1+i, rec)
	}
	if w.err == nil {
		if err := w.file.SetColWidth(SheetSummary, "A", "B", 40); err != nil {
			w.err = err
		}
	}
}

func (w *sheetWriter) documents(details []domain.DocumentDetail) {
	w.headerRow(SheetDocuments, "Filename", "Document type", "Word count", "Paragraph count", "Issues")
	for i, d := range details {
		w.row(SheetDocuments, i+2, d.Filename, d.DocumentType, d.WordCount, d.ParagraphCount, len(d.IssuesFound))
	}
}

func (w *sheetWriter) issues(details []domain.DocumentDetail) {
	w.headerRow(SheetIssues, "Filename", "Type", "Severity", "Message", "Suggestion")
	row := 2
	for _, d := range details {
		for _, issue := range d.IssuesFound {
			w.row(SheetIssues, row, d.Filename, issue.Type, string(issue.Severity), issue.Message, issue.Suggestion)
			row++
		}
	}
}
