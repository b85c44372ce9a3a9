package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/core/ports"
)

const defaultTopK = 5

type SearchReferencesUseCase struct {
	embedder ports.Embedder
	index    ports.VectorIndex
	topK     int
}

func NewSearchReferencesUseCase(embedder ports.Embedder, index ports.VectorIndex, topK int) *SearchReferencesUseCase {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &SearchReferencesUseCase{embedder: embedder, index: index, topK: topK}
}

// Search returns the closest reference chunks. An index that was never built yields no results.
func (uc *SearchReferencesUseCase) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search references", errors.New("query is required"))
	}
	if limit <= 0 {
		limit = uc.topK
	}
	if uc.index.Stats().Chunks == 0 {
		return []domain.SearchResult{}, nil
	}

	vector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := uc.index.Search(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}
