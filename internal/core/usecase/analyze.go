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

type AnalyzeDocumentsUseCase struct {
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
	sections   ports.SectionExtractor
	detector   ports.RedFlagDetector
	catalog    ports.ProcessCatalog
	now        func() time.Time
}

func NewAnalyzeDocumentsUseCase(
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	sections ports.SectionExtractor,
	detector ports.RedFlagDetector,
	catalog ports.ProcessCatalog,
) *AnalyzeDocumentsUseCase {
	return &AnalyzeDocumentsUseCase{
		extractor:  extractor,
		classifier: classifier,
		sections:   sections,
		detector:   detector,
		catalog:    catalog,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for run and report timestamps.
func (uc *AnalyzeDocumentsUseCase) WithClock(now func() time.Time) *AnalyzeDocumentsUseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// ParseDocument extracts text and, when that succeeds, classifies it and pulls out sections.
// Failures are carried on the returned document.
func (uc *AnalyzeDocumentsUseCase) ParseDocument(ctx context.Context, filename string, data []byte) domain.ExtractedDocument {
	doc := uc.extractor.Extract(ctx, filename, data)
	if doc.Failed() {
		doc.DocumentType = domain.TypeUnknown
		return doc
	}
	doc.DocumentType = uc.classifier.Classify(doc.RawText)
	doc.Sections = uc.sections.ExtractSections(doc.RawText)
	return doc
}

func (uc *AnalyzeDocumentsUseCase) DetectRedFlags(doc domain.ExtractedDocument) []domain.RedFlag {
	if doc.Failed() {
		return []domain.RedFlag{domain.DocumentErrorFlag(doc.Error)}
	}
	flags := uc.detector.Detect(doc)
	if flags == nil {
		flags = []domain.RedFlag{}
	}
	return flags
}

func (uc *AnalyzeDocumentsUseCase) IdentifyProcess(docs []domain.ExtractedDocument) string {
	return IdentifyProcess(uc.catalog.Processes(), docs)
}

func (uc *AnalyzeDocumentsUseCase) CheckCompleteness(docs []domain.ExtractedDocument, processKey string) domain.CompletenessResult {
	return CheckCompleteness(uc.catalog, docs, processKey)
}

// AnalyzeBatch runs the whole pipeline over an ordered batch. An empty processKey lets the
// batch pick its own process. Per-document problems never fail the batch.
func (uc *AnalyzeDocumentsUseCase) AnalyzeBatch(ctx context.Context, processKey string, files []domain.UploadedFile) (*domain.BatchAnalysis, error) {
	if len(files) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "analyze batch", errors.New("no files uploaded"))
	}

	extracted, err := uc.parseAll(ctx, files)
	if err != nil {
		return nil, err
	}

	processKey = strings.TrimSpace(processKey)
	if processKey == "" {
		processKey = uc.IdentifyProcess(extracted)
	}

	analyzed := make([]domain.AnalyzedDocument, 0, len(extracted))
	for _, doc := range extracted {
		analyzed = append(analyzed, domain.AnalyzedDocument{
			ExtractedDocument: doc,
			Issues:            uc.DetectRedFlags(doc),
		})
	}

	return &domain.BatchAnalysis{
		RunID:        uuid.NewString(),
		ProcessKey:   processKey,
		Documents:    analyzed,
		Completeness: uc.CheckCompleteness(extracted, processKey),
		AnalyzedAt:   uc.now(),
	}, nil
}

func (uc *AnalyzeDocumentsUseCase) GenerateReport(batch *domain.BatchAnalysis) domain.Report {
	return BuildReport(batch, uc.now())
}

func (uc *AnalyzeDocumentsUseCase) Processes() []domain.ChecklistProcess {
	return uc.catalog.Processes()
}

func (uc *AnalyzeDocumentsUseCase) Process(key string) (domain.ChecklistProcess, error) {
	process, ok := uc.catalog.Process(key)
	if !ok {
		return domain.ChecklistProcess{}, domain.WrapError(domain.ErrProcessNotFound, "get process", fmt.Errorf("key %q", key))
	}
	return process, nil
}

func (uc *AnalyzeDocumentsUseCase) parseAll(ctx context.Context, files []domain.UploadedFile) ([]domain.ExtractedDocument, error) {
	docs := make([]domain.ExtractedDocument, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("parse documents: %w", err)
		}
		docs = append(docs, uc.ParseDocument(ctx, file.Filename, file.Data))
	}
	return docs, nil
}
