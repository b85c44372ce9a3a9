package openai

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/resilience"
)

const defaultBatchSize = 64

type Options struct {
	APIKey             string
	BaseURL            string
	Model              string
	Dimension          int
	BatchSize          int
	ResilienceExecutor *resilience.Executor
}

type Embedder struct {
	client    *goopenai.Client
	model     string
	dimension int
	batchSize int
	executor  *resilience.Executor
}

func NewEmbedder(opts Options) (*Embedder, error) {
	if opts.APIKey == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "openai embedder", errors.New("OPENAI_API_KEY not set"))
	}
	cfg := goopenai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	model := opts.Model
	if model == "" {
		model = string(goopenai.SmallEmbedding3)
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Embedder{
		client:    goopenai.NewClientWithConfig(cfg),
		model:     model,
		dimension: opts.Dimension,
		batchSize: batchSize,
		executor:  opts.ResilienceExecutor,
	}, nil
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var resp goopenai.EmbeddingResponse
	call := func(callCtx context.Context) error {
		var err error
		resp, err = e.client.CreateEmbeddings(callCtx, goopenai.EmbeddingRequest{
			Model: goopenai.EmbeddingModel(e.model),
			Input: texts,
		})
		if err != nil {
			return fmt.Errorf("create openai embeddings: %w", err)
		}
		return nil
	}

	var err error
	if e.executor != nil {
		err = e.executor.Execute(ctx, "openai.embed", call, classifyOpenAIError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, resilience.WrapTemporary("openai embed", err, classifyOpenAIError)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}
	results := make([][]float32, len(resp.Data))
	for _, datum := range resp.Data {
		if datum.Index < 0 || datum.Index >= len(results) {
			return nil, fmt.Errorf("openai embedding index %d out of range", datum.Index)
		}
		if e.dimension > 0 && len(datum.Embedding) != e.dimension {
			return nil, fmt.Errorf("openai embedding dimension mismatch: expected %d, got %d", e.dimension, len(datum.Embedding))
		}
		results[datum.Index] = datum.Embedding
	}
	return results, nil
}

// classifyOpenAIError maps go-openai status errors onto the shared HTTP policy.
func classifyOpenAIError(err error) resilience.ErrorClassification {
	var apiErr *goopenai.APIError
	var reqErr *goopenai.RequestError
	switch {
	case errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0:
		return resilience.ClassifyHTTPError(&resilience.StatusError{StatusCode: apiErr.HTTPStatusCode})
	case errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0:
		return resilience.ClassifyHTTPError(&resilience.StatusError{StatusCode: reqErr.HTTPStatusCode})
	}
	return resilience.ClassifyHTTPError(err)
}
