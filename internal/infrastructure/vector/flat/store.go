package flat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

const SnapshotName = "index.snapshot"

// Storage persists snapshot bytes. Save must replace the file atomically.
type Storage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Store is a concurrency-safe VectorIndex backed by a single snapshot file.
type Store struct {
	storage   Storage
	logger    *slog.Logger
	dimension int

	mu    sync.RWMutex
	index *Index
}

func NewStore(storage Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{storage: storage, logger: logger, index: &Index{}}
}

// WithDimension makes Load reject snapshots built for another embedding size.
// Zero accepts any dimension.
func (s *Store) WithDimension(dimension int) *Store {
	if dimension > 0 {
		s.dimension = dimension
	}
	return s
}

// Replace persists the new chunk set first and only then swaps it in,
// so a failed write leaves both memory and disk on the previous index.
func (s *Store) Replace(ctx context.Context, chunks []domain.IndexChunk) error {
	next, err := Build(chunks)
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "build index", err)
	}
	data, err := next.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.storage.Save(ctx, SnapshotName, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}

	s.mu.Lock()
	s.index = next
	s.mu.Unlock()
	return nil
}

// Load reports false when no usable snapshot exists. A corrupt snapshot, or one
// whose dimension differs from the configured one, is logged and treated as absent.
func (s *Store) Load(ctx context.Context) (bool, error) {
	rc, err := s.storage.Open(ctx, SnapshotName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open snapshot: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return false, fmt.Errorf("read snapshot: %w", err)
	}
	loaded := &Index{}
	if err := loaded.UnmarshalBinary(data); err != nil {
		s.logger.Warn("index_snapshot_corrupt", "error", err)
		return false, nil
	}
	if s.dimension > 0 && loaded.Len() > 0 && loaded.Dimension() != s.dimension {
		s.logger.Warn("index_snapshot_dimension_mismatch",
			"expected", s.dimension,
			"snapshot", loaded.Dimension(),
		)
		return false, nil
	}

	s.mu.Lock()
	s.index = loaded
	s.mu.Unlock()
	return loaded.Len() > 0, nil
}

// Search returns no results when the query was embedded with a different
// dimension than the loaded index.
func (s *Store) Search(_ context.Context, vector []float32, limit int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index.Len() > 0 && len(vector) != s.index.Dimension() {
		s.logger.Warn("index_query_dimension_mismatch",
			"index", s.index.Dimension(),
			"query", len(vector),
		)
		return []domain.SearchResult{}, nil
	}
	results, err := s.index.Search(vector, limit)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search index", err)
	}
	return results, nil
}

func (s *Store) Stats() domain.IndexStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.IndexStats{
		Sources:   s.index.sources(),
		Chunks:    s.index.Len(),
		Dimension: s.index.Dimension(),
	}
}
