package usecase

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

var reportTime = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func TestBuildReportAggregatesIssues(t *testing.T) {
	batch := &domain.BatchAnalysis{
		ProcessKey: "company_incorporation",
		Documents: []domain.AnalyzedDocument{
			{
				ExtractedDocument: domain.ExtractedDocument{Filename: "aoa.docx", DocumentType: domain.TypeArticlesOfAssociation, WordCount: 120, ParagraphCount: 4},
				Issues: []domain.RedFlag{
					{Type: domain.FlagMissingClause, Severity: domain.SeverityHigh},
					{Type: domain.FlagMissingSignature, Severity: domain.SeverityMedium},
					{Type: domain.FlagMissingDate, Severity: domain.SeverityLow},
				},
			},
			{
				ExtractedDocument: domain.ExtractedDocument{Filename: "odd.docx", DocumentType: domain.TypeBoardResolution},
				Issues:            []domain.RedFlag{{Type: "custom", Severity: "critical"}},
			},
		},
		Completeness: domain.CompletenessResult{
			Process:           "company_incorporation",
			DocumentsUploaded: 2,
			RequiredDocuments: 3,
			MissingDocuments:  []string{domain.TypeUBODeclaration},
			CompletionRate:    2.0 / 3.0,
		},
	}

	report := BuildReport(batch, reportTime)
	if report.Timestamp != "2025-01-15T12:00:00Z" {
		t.Fatalf("unexpected timestamp %q", report.Timestamp)
	}
	if report.AnalysisSummary.CompletionRate != 66.7 {
		t.Fatalf("expected 66.7, got %v", report.AnalysisSummary.CompletionRate)
	}
	wantSummary := domain.IssuesSummary{TotalIssues: 4, HighSeverity: 1, MediumSeverity: 1, LowSeverity: 2}
	if report.IssuesSummary != wantSummary {
		t.Fatalf("unexpected summary %+v", report.IssuesSummary)
	}
	wantRecs := []string{recommendHighSeverity, recommendUploadMissing, recommendCompleteUpload}
	if !reflect.DeepEqual(report.Recommendations, wantRecs) {
		t.Fatalf("unexpected recommendations %v", report.Recommendations)
	}
	if got := report.DocumentDetails[0]; got.WordCount != 120 || len(got.IssuesFound) != 3 {
		t.Fatalf("unexpected detail %+v", got)
	}
}

func TestBuildReportCompleteBatchHasNoRecommendations(t *testing.T) {
	batch := &domain.BatchAnalysis{
		Documents: []domain.AnalyzedDocument{{
			ExtractedDocument: domain.ExtractedDocument{Filename: "contract.docx", DocumentType: domain.TypeEmploymentContract},
			Issues:            []domain.RedFlag{},
		}},
		Completeness: domain.CompletenessResult{
			Process:           "employment_setup",
			DocumentsUploaded: 1,
			RequiredDocuments: 1,
			MissingDocuments:  []string{},
			CompletionRate:    1,
		},
	}
	report := BuildReport(batch, reportTime)
	if report.AnalysisSummary.CompletionRate != 100 {
		t.Fatalf("expected 100, got %v", report.AnalysisSummary.CompletionRate)
	}
	if len(report.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %v", report.Recommendations)
	}
}

func TestBuildReportJSONShape(t *testing.T) {
	raw, err := json.Marshal(BuildReport(&domain.BatchAnalysis{
		Completeness: domain.CompletenessResult{Process: domain.ProcessUnknown},
	}, reportTime))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, key := range []string{
		`"timestamp"`, `"analysis_summary"`, `"documents_uploaded"`, `"missing_documents":[]`,
		`"completion_rate":0`, `"document_details":[]`, `"issues_summary"`, `"total_issues":0`,
		`"high_severity"`, `"medium_severity"`, `"low_severity"`, `"recommendations"`,
	} {
		if !strings.Contains(body, key) {
			t.Fatalf("report JSON missing %s: %s", key, body)
		}
	}
}
