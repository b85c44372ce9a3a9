package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kirillkom/adgm-corporate-agent/internal/config"
	"github.com/kirillkom/adgm-corporate-agent/internal/core/ports"
	"github.com/kirillkom/adgm-corporate-agent/internal/core/usecase"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/catalog"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/chunking"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/extractor"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/fetcher"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/llm/openai"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/queue/nats"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/resilience"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/review"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/rules"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/vector/flat"
)

type App struct {
	Config  config.Config
	Catalog *catalog.Catalog
	Index   *flat.Store

	// Queue is nil when NATS_URL is empty.
	Queue *nats.Queue

	Analyzer  ports.DocumentAnalyzer
	Indexer   ports.ReferenceIndexer
	Searcher  ports.ReferenceSearcher
	Rebuilds  ports.RebuildRequester
	Reviewer  ports.DocumentReviewer
	Exporter  ports.ReportExporter
	Executor  *resilience.Executor
	IndexWarm bool

	logger       *slog.Logger
	snapshotPath string
	snapshotMod  time.Time

	closeFn func()
}

type Options struct {
	Logger *slog.Logger
	// Observer receives retry, breaker and outcome events from every remote call.
	Observer resilience.Observer
	// SkipQueue leaves the rebuild queue disconnected even when NATS_URL is set.
	SkipQueue bool
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	return NewWithOptions(ctx, cfg, Options{})
}

func NewWithOptions(ctx context.Context, cfg config.Config, options Options) (*App, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := catalog.Load(cfg.ChecklistPath, cfg.SourcesPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	executor := resilience.NewExecutor(cfg.Resilience).WithLogger(logger)
	if options.Observer != nil {
		executor = executor.WithObserver(options.Observer)
	}

	embedder, err := newEmbedder(cfg, executor)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	storage, err := localfs.New(cfg.IndexDir)
	if err != nil {
		return nil, fmt.Errorf("init index storage: %w", err)
	}
	index := flat.NewStore(storage, logger).WithDimension(cfg.EmbeddingDimension)

	contentExtractor := extractor.New(cfg.MaxFileSizeMB)
	referenceFetcher := fetcher.New(contentExtractor, fetcher.Options{
		Timeout:            cfg.FetchTimeout,
		Interval:           cfg.FetchInterval,
		UserAgent:          cfg.FetchUserAgent,
		MinChars:           cfg.MinSourceChars,
		ResilienceExecutor: executor,
		Logger:             logger,
	})

	var queue *nats.Queue
	var rebuildQueue ports.RebuildQueue
	if cfg.NATSURL != "" && !options.SkipQueue {
		queue, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init rebuild queue: %w", err)
		}
		rebuildQueue = queue
	}

	analyzer := usecase.NewAnalyzeDocumentsUseCase(
		contentExtractor,
		rules.NewDefaultClassifier(),
		rules.MustDefaultSectionExtractor(),
		rules.NewDefaultRedFlagDetector(),
		cat,
	)
	indexer := usecase.NewIndexReferencesUseCase(
		cat,
		referenceFetcher,
		chunking.NewWordSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder,
		index,
		logger,
	)

	warm, err := indexer.LoadIndex(ctx)
	if err != nil {
		if queue != nil {
			queue.Close()
		}
		return nil, fmt.Errorf("load reference index: %w", err)
	}
	if !warm {
		logger.Info("index_empty", "index_dir", cfg.IndexDir)
	}

	return &App{
		Config:  cfg,
		Catalog: cat,
		Index:   index,
		Queue:   queue,

		Analyzer:  analyzer,
		Indexer:   indexer,
		Searcher:  usecase.NewSearchReferencesUseCase(embedder, index, cfg.RetrievalTopK),
		Rebuilds:  usecase.NewRequestRebuildUseCase(rebuildQueue, cat),
		Reviewer:  usecase.NewReviewDocumentUseCase(analyzer, review.NewAnnotator()),
		Exporter:  xlsx.NewExporter(),
		Executor:  executor,
		IndexWarm: warm,

		logger:       logger,
		snapshotPath: storage.Path(flat.SnapshotName),
		snapshotMod:  modTime(storage.Path(flat.SnapshotName)),

		closeFn: func() {
			if queue != nil {
				queue.Close()
			}
		},
	}, nil
}

func newEmbedder(cfg config.Config, executor *resilience.Executor) (ports.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "", "ollama":
		client := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaEmbedModel, ollama.Options{
			ResilienceExecutor: executor,
		})
		return ollama.NewEmbedder(client, cfg.EmbedBatchSize, cfg.EmbeddingDimension), nil
	case "openai":
		embedder, err := openai.NewEmbedder(openai.Options{
			APIKey:             cfg.OpenAIAPIKey,
			BaseURL:            cfg.OpenAIBaseURL,
			Model:              cfg.OpenAIEmbedModel,
			Dimension:          cfg.EmbeddingDimension,
			BatchSize:          cfg.EmbedBatchSize,
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, err
		}
		return embedder, nil
	default:
		return nil, fmt.Errorf("unsupported EMBEDDING_PROVIDER %q", cfg.EmbeddingProvider)
	}
}

// ReloadIndex picks up a snapshot written by another process. An unchanged snapshot is not
// read again; a missing or corrupt one leaves the loaded index in place.
func (a *App) ReloadIndex(ctx context.Context) (bool, error) {
	mod := modTime(a.snapshotPath)
	if mod.IsZero() || !mod.After(a.snapshotMod) {
		return false, nil
	}
	ok, err := a.Indexer.LoadIndex(ctx)
	if err != nil {
		return false, err
	}
	a.snapshotMod = mod
	if ok {
		stats := a.Index.Stats()
		a.logger.Info("index_reloaded", "chunks", stats.Chunks, "sources", stats.Sources)
	}
	return ok, nil
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
