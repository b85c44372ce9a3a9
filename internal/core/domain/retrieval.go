package domain

import "time"

type ChunkMetadata struct {
	Source  string `json:"source"`
	URL     string `json:"url"`
	ChunkID int    `json:"chunk_id"`
}

// IndexChunk is one persisted record of the reference index.
type IndexChunk struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	Vector   []float32     `json:"-"`
}

// SearchResult carries the L2 distance to the query; smaller is closer.
type SearchResult struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	Score    float64       `json:"score"`
}

type ReferenceSource struct {
	Key      string `json:"key" yaml:"key"`
	URL      string `json:"url" yaml:"url"`
	Category string `json:"category" yaml:"category"`
}

// SourceDocument is fetched reference text ready for chunking.
type SourceDocument struct {
	URL         string `json:"url"`
	Source      string `json:"source"`
	Domain      string `json:"domain"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

type IndexStats struct {
	Sources   int `json:"sources"`
	Chunks    int `json:"chunks"`
	Dimension int `json:"dimension"`
}

// RebuildRequest asks a worker to rebuild the reference index from scratch.
type RebuildRequest struct {
	ID          string    `json:"id"`
	Category    string    `json:"category,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}
