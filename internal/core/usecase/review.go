package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/core/ports"
)

type ReviewDocumentUseCase struct {
	analyzer  ports.DocumentAnalyzer
	annotator ports.DocumentAnnotator
}

func NewReviewDocumentUseCase(analyzer ports.DocumentAnalyzer, annotator ports.DocumentAnnotator) *ReviewDocumentUseCase {
	return &ReviewDocumentUseCase{analyzer: analyzer, annotator: annotator}
}

// Review analyzes a single document and appends its findings to it. Unreadable input is
// returned as an invalid-input error since there is nothing to annotate.
func (uc *ReviewDocumentUseCase) Review(ctx context.Context, filename string, data []byte) (*domain.ReviewedDocument, error) {
	doc := uc.analyzer.ParseDocument(ctx, filename, data)
	if doc.Failed() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "review document", fmt.Errorf("%s: %s", filename, doc.Error))
	}
	issues := uc.analyzer.DetectRedFlags(doc)

	name, annotated, err := uc.annotator.Annotate(filename, doc.RawText, data, issues)
	if err != nil {
		return nil, fmt.Errorf("annotate document: %w", err)
	}
	return &domain.ReviewedDocument{Filename: name, Data: annotated, Issues: issues}, nil
}
