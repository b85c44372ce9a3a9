package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/core/ports"
)

type RequestRebuildUseCase struct {
	queue   ports.RebuildQueue
	sources ports.SourceCatalog
}

// NewRequestRebuildUseCase accepts a nil queue; requests then fail with ErrQueueUnavailable.
func NewRequestRebuildUseCase(queue ports.RebuildQueue, sources ports.SourceCatalog) *RequestRebuildUseCase {
	return &RequestRebuildUseCase{queue: queue, sources: sources}
}

func (uc *RequestRebuildUseCase) RequestRebuild(ctx context.Context, category string) (*domain.RebuildRequest, error) {
	if uc.queue == nil {
		return nil, domain.WrapError(domain.ErrQueueUnavailable, "request rebuild", errors.New("NATS_URL not configured"))
	}
	if len(uc.sources.Sources(category)) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "request rebuild", unknownCategory(uc.sources, category))
	}

	req := domain.RebuildRequest{
		ID:          uuid.NewString(),
		Category:    category,
		RequestedAt: time.Now().UTC(),
	}
	if err := uc.queue.PublishRebuildRequested(ctx, req); err != nil {
		return nil, fmt.Errorf("publish rebuild request: %w", err)
	}
	return &req, nil
}

func unknownCategory(sources ports.SourceCatalog, category string) error {
	return fmt.Errorf("no sources for category %q (known: %s)", category, strings.Join(sources.Categories(), ", "))
}
