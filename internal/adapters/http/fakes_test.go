package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

type analyzerFake struct {
	processes  []domain.ChecklistProcess
	batchErr   error
	lastKey    string
	lastFiles  []domain.UploadedFile
	identified string
}

func newAnalyzerFake() *analyzerFake {
	return &analyzerFake{
		processes: []domain.ChecklistProcess{{
			Key:               "company_incorporation",
			Name:              "Company Incorporation",
			RequiredDocuments: []string{"articles_of_association", "board_resolution"},
		}},
		identified: "company_incorporation",
	}
}

func (f *analyzerFake) ParseDocument(_ context.Context, filename string, data []byte) domain.ExtractedDocument {
	fields := strings.Fields(string(data))
	docType := domain.TypeUnknown
	if len(fields) > 0 {
		docType = fields[0]
	}
	return domain.ExtractedDocument{Filename: filename, DocumentType: docType, WordCount: len(fields)}
}

func (f *analyzerFake) DetectRedFlags(domain.ExtractedDocument) []domain.RedFlag {
	return []domain.RedFlag{}
}

func (f *analyzerFake) IdentifyProcess([]domain.ExtractedDocument) string {
	return f.identified
}

func (f *analyzerFake) CheckCompleteness(docs []domain.ExtractedDocument, key string) domain.CompletenessResult {
	return domain.CompletenessResult{
		Process:           key,
		DocumentsUploaded: len(docs),
		RequiredDocuments: 2,
		MissingDocuments:  []string{},
		CompletionRate:    100,
	}
}

func (f *analyzerFake) AnalyzeBatch(ctx context.Context, key string, files []domain.UploadedFile) (*domain.BatchAnalysis, error) {
	f.lastKey = key
	f.lastFiles = files
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	if key == "" {
		key = f.identified
	}
	docs := make([]domain.AnalyzedDocument, 0, len(files))
	extracted := make([]domain.ExtractedDocument, 0, len(files))
	for _, file := range files {
		doc := f.ParseDocument(ctx, file.Filename, file.Data)
		extracted = append(extracted, doc)
		docs = append(docs, domain.AnalyzedDocument{ExtractedDocument: doc, Issues: []domain.RedFlag{}})
	}
	return &domain.BatchAnalysis{
		RunID:        "run-1",
		ProcessKey:   key,
		Documents:    docs,
		Completeness: f.CheckCompleteness(extracted, key),
		AnalyzedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (f *analyzerFake) GenerateReport(batch *domain.BatchAnalysis) domain.Report {
	return domain.Report{
		Timestamp: batch.AnalyzedAt.Format(time.RFC3339),
		AnalysisSummary: domain.AnalysisSummary{
			Process:           batch.ProcessKey,
			DocumentsUploaded: len(batch.Documents),
			MissingDocuments:  []string{},
			CompletionRate:    batch.Completeness.CompletionRate,
		},
		DocumentDetails: []domain.DocumentDetail{},
		Recommendations: []string{},
	}
}

func (f *analyzerFake) Processes() []domain.ChecklistProcess {
	return f.processes
}

func (f *analyzerFake) Process(key string) (domain.ChecklistProcess, error) {
	for _, process := range f.processes {
		if process.Key == key {
			return process, nil
		}
	}
	return domain.ChecklistProcess{}, domain.WrapError(domain.ErrProcessNotFound, "process", fmt.Errorf("%q", key))
}

type searcherFake struct {
	results   []domain.SearchResult
	lastQuery string
	lastLimit int
}

func (f *searcherFake) Search(_ context.Context, query string, limit int) ([]domain.SearchResult, error) {
	f.lastQuery = query
	f.lastLimit = limit
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", errors.New("query is required"))
	}
	return f.results, nil
}

type rebuildFake struct {
	err          error
	lastCategory string
}

func (f *rebuildFake) RequestRebuild(_ context.Context, category string) (*domain.RebuildRequest, error) {
	f.lastCategory = category
	if f.err != nil {
		return nil, f.err
	}
	return &domain.RebuildRequest{ID: "req-1", Category: category}, nil
}

type reviewerFake struct{}

func (reviewerFake) Review(_ context.Context, filename string, data []byte) (*domain.ReviewedDocument, error) {
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "review", errors.New("empty document"))
	}
	return &domain.ReviewedDocument{
		Filename: strings.TrimSuffix(filename, ".docx") + "_reviewed.docx",
		Data:     []byte("PK-reviewed"),
		Issues: []domain.RedFlag{
			{Type: domain.FlagMissingDate, Severity: domain.SeverityLow},
			{Type: domain.FlagJurisdictionError, Severity: domain.SeverityHigh},
		},
	}, nil
}

type exporterFake struct {
	exported int
}

func (f *exporterFake) Export(domain.Report) ([]byte, error) {
	f.exported++
	return []byte("xlsx-bytes"), nil
}

func (f *exporterFake) ContentType() string {
	return "application/test-xlsx"
}
