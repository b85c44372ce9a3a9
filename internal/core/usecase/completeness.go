package usecase

import (
	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/core/ports"
)

// IdentifyProcess scores each process by the share of classified documents it accepts.
// The first process in catalog order wins ties; no match at all yields ProcessUnknown.
func IdentifyProcess(processes []domain.ChecklistProcess, docs []domain.ExtractedDocument) string {
	types := classifiedTypes(docs)
	if len(types) == 0 {
		return domain.ProcessUnknown
	}

	best := domain.ProcessUnknown
	bestScore := 0.0
	for _, process := range processes {
		matches := 0
		for _, docType := range types {
			if process.Accepts(docType) {
				matches++
			}
		}
		score := float64(matches) / float64(len(types))
		if matches > 0 && score > bestScore {
			best = process.Key
			bestScore = score
		}
	}
	return best
}

// CheckCompleteness compares the classified document types against the process checklist.
// It is a pure function of its inputs.
func CheckCompleteness(catalog ports.ProcessCatalog, docs []domain.ExtractedDocument, processKey string) domain.CompletenessResult {
	result := domain.CompletenessResult{
		Process:           processKey,
		DocumentsUploaded: len(docs),
		MissingDocuments:  []string{},
	}
	if processKey == domain.ProcessUnknown || processKey == "" {
		return result
	}
	process, ok := catalog.Process(processKey)
	if !ok {
		return result
	}

	present := make(map[string]bool)
	for _, docType := range classifiedTypes(docs) {
		present[docType] = true
	}
	for _, required := range process.RequiredDocuments {
		if !present[required] {
			result.MissingDocuments = append(result.MissingDocuments, required)
		}
	}

	result.RequiredDocuments = len(process.RequiredDocuments)
	if result.RequiredDocuments > 0 {
		completed := result.RequiredDocuments - len(result.MissingDocuments)
		result.CompletionRate = float64(completed) / float64(result.RequiredDocuments)
	}
	return result
}

func classifiedTypes(docs []domain.ExtractedDocument) []string {
	types := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Classified() {
			types = append(types, doc.DocumentType)
		}
	}
	return types
}
