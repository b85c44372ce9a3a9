package ports

import (
	"context"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

// DocumentAnalyzer is the inbound contract for checklist review of uploaded documents.
type DocumentAnalyzer interface {
	ParseDocument(ctx context.Context, filename string, data []byte) domain.ExtractedDocument
	DetectRedFlags(doc domain.ExtractedDocument) []domain.RedFlag
	IdentifyProcess(docs []domain.ExtractedDocument) string
	CheckCompleteness(docs []domain.ExtractedDocument, processKey string) domain.CompletenessResult
	AnalyzeBatch(ctx context.Context, processKey string, files []domain.UploadedFile) (*domain.BatchAnalysis, error)
	GenerateReport(batch *domain.BatchAnalysis) domain.Report
	Processes() []domain.ChecklistProcess
	Process(key string) (domain.ChecklistProcess, error)
}

// ReferenceIndexer rebuilds and reloads the reference index.
type ReferenceIndexer interface {
	BuildIndex(ctx context.Context, category string) (domain.IndexStats, error)
	IndexDocuments(ctx context.Context, docs []domain.SourceDocument) (domain.IndexStats, error)
	LoadIndex(ctx context.Context) (bool, error)
	HandleRebuildRequest(ctx context.Context, req domain.RebuildRequest) error
}

// ReferenceSearcher queries the reference index.
type ReferenceSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

// RebuildRequester enqueues an asynchronous index rebuild.
type RebuildRequester interface {
	RequestRebuild(ctx context.Context, category string) (*domain.RebuildRequest, error)
}

// DocumentReviewer returns a copy of a document with its review notes appended.
type DocumentReviewer interface {
	Review(ctx context.Context, filename string, data []byte) (*domain.ReviewedDocument, error)
}
