package flat

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/storage/localfs"
)

func sampleChunks() []domain.IndexChunk {
	return []domain.IndexChunk{
		{Text: "articles of association", Metadata: domain.ChunkMetadata{Source: "ADGM Official", URL: "https://www.adgm.com/a", ChunkID: 0}, Vector: []float32{0, 0}},
		{Text: "board resolution", Metadata: domain.ChunkMetadata{Source: "ADGM Official", URL: "https://www.adgm.com/a", ChunkID: 1}, Vector: []float32{1, 0}},
		{Text: "employment contract", Metadata: domain.ChunkMetadata{Source: "ADGM Official", URL: "https://www.adgm.com/b", ChunkID: 0}, Vector: []float32{3, 4}},
		{Text: "duplicate position", Metadata: domain.ChunkMetadata{Source: "ADGM Official", URL: "https://www.adgm.com/c", ChunkID: 0}, Vector: []float32{1, 0}},
	}
}

func TestSearchOrdersByDistanceWithStableTies(t *testing.T) {
	ix, err := Build(sampleChunks())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	results, err := ix.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []string{"board resolution", "duplicate position", "articles of association"}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, text := range want {
		if results[i].Text != text {
			t.Fatalf("result %d = %q, want %q", i, results[i].Text, text)
		}
	}
	if results[0].Score != 0 || results[2].Score != 1 {
		t.Fatalf("unexpected scores: %v %v", results[0].Score, results[2].Score)
	}
}

func TestSearchLimitAboveSizeReturnsAll(t *testing.T) {
	ix, _ := Build(sampleChunks())
	results, err := ix.Search([]float32{0, 0}, 50)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected all 4 chunks, got %d", len(results))
	}
	if results[3].Score != 5 {
		t.Fatalf("expected farthest distance 5, got %v", results[3].Score)
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	ix, err := Build(nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	results, err := ix.Search([]float32{1, 2, 3}, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", results)
	}
}

func TestBuildRejectsMixedDimensions(t *testing.T) {
	chunks := sampleChunks()
	chunks[2].Vector = []float32{1, 2, 3}
	if _, err := Build(chunks); err == nil {
		t.Fatalf("expected dimension mismatch")
	}
}

func TestSnapshotRoundTripPreservesResults(t *testing.T) {
	ix, _ := Build(sampleChunks())
	data, err := ix.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	restored := &Index{}
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary() error = %v", err)
	}

	query := []float32{0.9, 0.2}
	before, _ := ix.Search(query, 4)
	after, _ := restored.Search(query, 4)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("result %d differs after reload: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestSnapshotRejectsCorruption(t *testing.T) {
	ix, _ := Build(sampleChunks())
	data, _ := ix.MarshalBinary()

	flipped := append([]byte(nil), data...)
	flipped[20] ^= 0xFF
	if err := (&Index{}).UnmarshalBinary(flipped); !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected checksum failure, got %v", err)
	}
	if err := (&Index{}).UnmarshalBinary(data[:10]); !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected truncation failure, got %v", err)
	}
}

func TestStoreReplaceAndLoad(t *testing.T) {
	dir := t.TempDir()
	storage, err := localfs.New(dir)
	if err != nil {
		t.Fatalf("localfs.New() error = %v", err)
	}
	ctx := context.Background()

	store := NewStore(storage, nil)
	if err := store.Replace(ctx, sampleChunks()); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	stats := store.Stats()
	if stats.Chunks != 4 || stats.Sources != 3 || stats.Dimension != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	reopened := NewStore(storage, nil)
	ok, err := reopened.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load() = %v, %v", ok, err)
	}
	results, err := reopened.Search(ctx, []float32{3, 4}, 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Text != "employment contract" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestStoreLoadMissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()
	storage, _ := localfs.New(dir)
	store := NewStore(storage, nil)
	ctx := context.Background()

	ok, err := store.Load(ctx)
	if err != nil || ok {
		t.Fatalf("missing snapshot: Load() = %v, %v", ok, err)
	}

	if err := os.WriteFile(filepath.Join(dir, SnapshotName), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ok, err = store.Load(ctx)
	if err != nil || ok {
		t.Fatalf("corrupt snapshot: Load() = %v, %v", ok, err)
	}
	results, err := store.Search(ctx, []float32{0, 0}, 3)
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty search on absent index, got %v %v", results, err)
	}
}

func TestStoreTreatsDimensionMismatchAsAbsent(t *testing.T) {
	ctx := context.Background()
	storage, _ := localfs.New(t.TempDir())
	if err := NewStore(storage, nil).Replace(ctx, sampleChunks()); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	store := NewStore(storage, nil).WithDimension(384)
	ok, err := store.Load(ctx)
	if err != nil || ok {
		t.Fatalf("Load() = %v, %v, want absent index", ok, err)
	}
	if got := store.Stats().Chunks; got != 0 {
		t.Fatalf("expected empty index, got %d chunks", got)
	}
	results, err := store.Search(ctx, make([]float32, 384), 3)
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty search, got %v %v", results, err)
	}
}

func TestStoreSearchWithForeignQueryDimensionIsEmpty(t *testing.T) {
	ctx := context.Background()
	storage, _ := localfs.New(t.TempDir())
	if err := NewStore(storage, nil).Replace(ctx, sampleChunks()); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	store := NewStore(storage, nil)
	if ok, err := store.Load(ctx); err != nil || !ok {
		t.Fatalf("Load() = %v, %v", ok, err)
	}
	results, err := store.Search(ctx, make([]float32, 384), 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %+v", results)
	}
}

type failingStorage struct{}

func (failingStorage) Save(context.Context, string, io.Reader) error {
	return errors.New("read-only filesystem")
}

func (failingStorage) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, fs.ErrNotExist
}

func TestStoreReplaceFailureKeepsPreviousIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	storage, _ := localfs.New(dir)
	store := NewStore(storage, nil)
	if err := store.Replace(ctx, sampleChunks()[:1]); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	store.storage = failingStorage{}
	if err := store.Replace(ctx, sampleChunks()); err == nil {
		t.Fatalf("expected persist error")
	}
	if got := store.Stats().Chunks; got != 1 {
		t.Fatalf("expected previous index to stay active, got %d chunks", got)
	}
}
