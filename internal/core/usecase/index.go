package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/core/ports"
)

type IndexReferencesUseCase struct {
	sources  ports.SourceCatalog
	fetcher  ports.SourceFetcher
	chunker  ports.Chunker
	embedder ports.Embedder
	index    ports.VectorIndex
	logger   *slog.Logger
}

func NewIndexReferencesUseCase(
	sources ports.SourceCatalog,
	fetcher ports.SourceFetcher,
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.VectorIndex,
	logger *slog.Logger,
) *IndexReferencesUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexReferencesUseCase{
		sources:  sources,
		fetcher:  fetcher,
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		logger:   logger,
	}
}

// BuildIndex downloads every source of the category (all sources when empty) and replaces
// the index with the result. The previous index stays in place when nothing was downloaded.
func (uc *IndexReferencesUseCase) BuildIndex(ctx context.Context, category string) (domain.IndexStats, error) {
	sources := uc.sources.Sources(category)
	if len(sources) == 0 {
		return domain.IndexStats{}, domain.WrapError(domain.ErrInvalidInput, "build index", unknownCategory(uc.sources, category))
	}

	started := time.Now()
	docs, err := uc.fetcher.Fetch(ctx, sources)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("fetch sources: %w", err)
	}
	uc.logger.Info("reference_sources_fetched", "category", category, "requested", len(sources), "fetched", len(docs))

	stats, err := uc.IndexDocuments(ctx, docs)
	if err != nil {
		return domain.IndexStats{}, err
	}
	uc.logger.Info("index_built",
		"category", category,
		"sources", stats.Sources,
		"chunks", stats.Chunks,
		"dimension", stats.Dimension,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return stats, nil
}

// IndexDocuments chunks, embeds and stores already downloaded reference documents.
func (uc *IndexReferencesUseCase) IndexDocuments(ctx context.Context, docs []domain.SourceDocument) (domain.IndexStats, error) {
	chunks := uc.chunk(docs)
	if len(chunks) == 0 {
		return domain.IndexStats{}, domain.WrapError(domain.ErrIndexUnavailable, "build index", errors.New("no reference content to index"))
	}

	if err := uc.embed(ctx, chunks); err != nil {
		return domain.IndexStats{}, err
	}

	if err := uc.index.Replace(ctx, chunks); err != nil {
		return domain.IndexStats{}, fmt.Errorf("replace index: %w", err)
	}
	return uc.index.Stats(), nil
}

// LoadIndex reports whether a persisted index was found and is usable.
func (uc *IndexReferencesUseCase) LoadIndex(ctx context.Context) (bool, error) {
	ok, err := uc.index.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load index: %w", err)
	}
	return ok, nil
}

func (uc *IndexReferencesUseCase) HandleRebuildRequest(ctx context.Context, req domain.RebuildRequest) error {
	uc.logger.Info("index_rebuild_started", "request_id", req.ID, "category", req.Category)
	stats, err := uc.BuildIndex(ctx, req.Category)
	if err != nil {
		return fmt.Errorf("rebuild %s: %w", req.ID, err)
	}
	uc.logger.Info("index_rebuild_completed", "request_id", req.ID, "chunks", stats.Chunks)
	return nil
}

func (uc *IndexReferencesUseCase) chunk(docs []domain.SourceDocument) []domain.IndexChunk {
	var chunks []domain.IndexChunk
	for _, doc := range docs {
		for i, text := range uc.chunker.Split(doc.Content) {
			chunks = append(chunks, domain.IndexChunk{
				Text: text,
				Metadata: domain.ChunkMetadata{
					Source:  doc.Source,
					URL:     doc.URL,
					ChunkID: i,
				},
			})
		}
	}
	return chunks
}

func (uc *IndexReferencesUseCase) embed(ctx context.Context, chunks []domain.IndexChunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}
	return nil
}
