package domain

const ProcessUnknown = "unknown"

type ChecklistProcess struct {
	Key               string   `json:"key"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	RequiredDocuments []string `json:"required_documents"`
	OptionalDocuments []string `json:"optional_documents"`
	Keywords          []string `json:"process_keywords,omitempty"`
}

// Accepts reports whether docType belongs to the required or optional set.
func (p ChecklistProcess) Accepts(docType string) bool {
	for _, t := range p.RequiredDocuments {
		if t == docType {
			return true
		}
	}
	for _, t := range p.OptionalDocuments {
		if t == docType {
			return true
		}
	}
	return false
}

type CompletenessResult struct {
	Process           string   `json:"process"`
	DocumentsUploaded int      `json:"documents_uploaded"`
	RequiredDocuments int      `json:"required_documents"`
	MissingDocuments  []string `json:"missing_documents"`
	CompletionRate    float64  `json:"completion_rate"`
}
