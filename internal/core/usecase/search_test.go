package usecase

import (
	"context"
	"testing"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

func TestSearchUsesDefaultTopK(t *testing.T) {
	chunks := make([]domain.IndexChunk, 8)
	for i := range chunks {
		chunks[i] = domain.IndexChunk{Text: "chunk", Vector: []float32{1, 1}}
	}
	index := &vectorIndexFake{chunks: chunks}
	embedder := &embedderFake{}
	uc := NewSearchReferencesUseCase(embedder, index, 0)

	results, err := uc.Search(context.Background(), "  registered office  ", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != defaultTopK || index.lastLimit != defaultTopK {
		t.Fatalf("expected %d results, got %d", defaultTopK, len(results))
	}
	if embedder.queries[0] != "registered office" {
		t.Fatalf("expected trimmed query, got %q", embedder.queries[0])
	}
}

func TestSearchEmptyIndexSkipsEmbedding(t *testing.T) {
	embedder := &embedderFake{}
	uc := NewSearchReferencesUseCase(embedder, &vectorIndexFake{}, 3)

	results, err := uc.Search(context.Background(), "share capital", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty slice, got %#v", results)
	}
	if len(embedder.queries) != 0 {
		t.Fatalf("embedder must not be called for an empty index")
	}
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	uc := NewSearchReferencesUseCase(&embedderFake{}, &vectorIndexFake{}, 3)
	if _, err := uc.Search(context.Background(), "   ", 1); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
