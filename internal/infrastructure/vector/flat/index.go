// Package flat provides an exact nearest-neighbour index over chunk embeddings.
// Search compares the query against every stored vector using Euclidean distance.
package flat

import (
	"fmt"
	"math"
	"sort"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

type Index struct {
	dimension int
	chunks    []domain.IndexChunk
}

// Build validates that every chunk carries a vector of the same dimension.
func Build(chunks []domain.IndexChunk) (*Index, error) {
	if len(chunks) == 0 {
		return &Index{}, nil
	}
	dimension := len(chunks[0].Vector)
	if dimension == 0 {
		return nil, fmt.Errorf("chunk 0 has no vector")
	}
	stored := make([]domain.IndexChunk, len(chunks))
	for i, chunk := range chunks {
		if len(chunk.Vector) != dimension {
			return nil, fmt.Errorf("chunk %d dimension mismatch: expected %d, got %d", i, dimension, len(chunk.Vector))
		}
		stored[i] = chunk
	}
	return &Index{dimension: dimension, chunks: stored}, nil
}

func (ix *Index) Len() int       { return len(ix.chunks) }
func (ix *Index) Dimension() int { return ix.dimension }

// Search returns up to limit chunks ordered by ascending distance.
// Ties keep insertion order.
func (ix *Index) Search(query []float32, limit int) ([]domain.SearchResult, error) {
	if len(ix.chunks) == 0 || limit <= 0 {
		return []domain.SearchResult{}, nil
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", ix.dimension, len(query))
	}

	type scored struct {
		pos      int
		distance float64
	}
	candidates := make([]scored, len(ix.chunks))
	for i, chunk := range ix.chunks {
		candidates[i] = scored{pos: i, distance: l2Distance(query, chunk.Vector)}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	out := make([]domain.SearchResult, 0, limit)
	for _, c := range candidates[:limit] {
		chunk := ix.chunks[c.pos]
		out = append(out, domain.SearchResult{
			Text:     chunk.Text,
			Metadata: chunk.Metadata,
			Score:    c.distance,
		})
	}
	return out, nil
}

func (ix *Index) sources() int {
	seen := make(map[string]struct{}, len(ix.chunks))
	for _, chunk := range ix.chunks {
		seen[chunk.Metadata.URL] = struct{}{}
	}
	return len(seen)
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
