package ports

import (
	"context"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

// TextExtractor turns raw file bytes into normalized text and structural counts.
// Document-level failures are recorded on the returned value, never returned as errors.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) domain.ExtractedDocument
}

// DocumentClassifier assigns a document type label to normalized text.
type DocumentClassifier interface {
	Classify(text string) string
}

// SectionExtractor pulls bounded named substrings out of normalized text.
type SectionExtractor interface {
	ExtractSections(text string) map[string]string
}

// RedFlagDetector runs the per-document rule set.
type RedFlagDetector interface {
	Detect(doc domain.ExtractedDocument) []domain.RedFlag
}

// ProcessCatalog exposes checklist processes in catalog order.
type ProcessCatalog interface {
	Processes() []domain.ChecklistProcess
	Process(key string) (domain.ChecklistProcess, bool)
}

// SourceCatalog lists reference sources, optionally restricted to one category.
type SourceCatalog interface {
	Sources(category string) []domain.ReferenceSource
	Categories() []string
}

// SourceFetcher downloads reference sources, skipping the ones that fail.
type SourceFetcher interface {
	Fetch(ctx context.Context, sources []domain.ReferenceSource) ([]domain.SourceDocument, error)
}

// Chunker splits text into retrieval windows.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the persisted nearest-neighbor store of reference chunks.
type VectorIndex interface {
	Replace(ctx context.Context, chunks []domain.IndexChunk) error
	Load(ctx context.Context) (bool, error)
	Search(ctx context.Context, vector []float32, limit int) ([]domain.SearchResult, error)
	Stats() domain.IndexStats
}

// ReportExporter renders a report into a downloadable file.
type ReportExporter interface {
	Export(report domain.Report) ([]byte, error)
	ContentType() string
}

// DocumentAnnotator appends review notes to an original document. It returns the name of
// the produced file, which differs from the input when the format cannot be edited in place.
type DocumentAnnotator interface {
	Annotate(filename string, text string, data []byte, flags []domain.RedFlag) (string, []byte, error)
}

// RebuildQueue carries index rebuild requests from the API to the worker.
type RebuildQueue interface {
	PublishRebuildRequested(ctx context.Context, req domain.RebuildRequest) error
	SubscribeRebuildRequested(ctx context.Context, handler func(context.Context, domain.RebuildRequest) error) error
}
