package usecase

import (
	"math"
	"strings"
	"time"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

const (
	recommendHighSeverity   = "Address high-severity issues before submission to ADGM"
	recommendUploadMissing  = "Upload missing required documents to complete the process"
	recommendCompleteUpload = "Ensure all required documents are uploaded for complete submission"
)

// BuildReport aggregates a finished batch. The only input besides the batch is the report time.
func BuildReport(batch *domain.BatchAnalysis, generatedAt time.Time) domain.Report {
	report := domain.Report{
		Timestamp:       generatedAt.UTC().Format(time.RFC3339),
		DocumentDetails: []domain.DocumentDetail{},
		Recommendations: []string{},
		AnalysisSummary: domain.AnalysisSummary{
			Process:          domain.ProcessUnknown,
			MissingDocuments: []string{},
		},
	}
	if batch == nil {
		report.Recommendations = append(report.Recommendations, recommendCompleteUpload)
		return report
	}

	completeness := batch.Completeness
	report.AnalysisSummary = domain.AnalysisSummary{
		Process:           completeness.Process,
		DocumentsUploaded: completeness.DocumentsUploaded,
		RequiredDocuments: completeness.RequiredDocuments,
		MissingDocuments:  append([]string{}, completeness.MissingDocuments...),
		CompletionRate:    math.Round(completeness.CompletionRate*1000) / 10,
	}
	if report.AnalysisSummary.Process == "" {
		report.AnalysisSummary.Process = domain.ProcessUnknown
	}

	for _, doc := range batch.Documents {
		detail := domain.DocumentDetail{
			Filename:       doc.Filename,
			DocumentType:   doc.DocumentType,
			WordCount:      doc.WordCount,
			ParagraphCount: doc.ParagraphCount,
			IssuesFound:    append([]domain.RedFlag{}, doc.Issues...),
		}
		if detail.DocumentType == "" {
			detail.DocumentType = domain.TypeUnknown
		}
		for _, issue := range doc.Issues {
			countSeverity(&report.IssuesSummary, issue.Severity)
		}
		report.DocumentDetails = append(report.DocumentDetails, detail)
	}

	if report.IssuesSummary.HighSeverity > 0 {
		report.Recommendations = append(report.Recommendations, recommendHighSeverity)
	}
	if len(report.AnalysisSummary.MissingDocuments) > 0 {
		report.Recommendations = append(report.Recommendations, recommendUploadMissing)
	}
	if report.AnalysisSummary.CompletionRate < 100 {
		report.Recommendations = append(report.Recommendations, recommendCompleteUpload)
	}
	return report
}

func countSeverity(summary *domain.IssuesSummary, severity domain.Severity) {
	summary.TotalIssues++
	switch domain.Severity(strings.ToLower(string(severity))) {
	case domain.SeverityHigh:
		summary.HighSeverity++
	case domain.SeverityMedium:
		summary.MediumSeverity++
	default:
		summary.LowSeverity++
	}
}
