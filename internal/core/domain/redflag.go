package domain

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

const (
	FlagEmptyDocument       = "empty_document"
	FlagDocumentError       = "document_error"
	FlagJurisdictionError   = "jurisdiction_error"
	FlagMissingJurisdiction = "missing_jurisdiction"
	FlagMissingSignature    = "missing_signature"
	FlagMissingClause       = "missing_clause"
	FlagMissingDate         = "missing_date"
)

type RedFlag struct {
	Type       string   `json:"type"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
}

// DocumentErrorFlag describes a document that could not be read at all.
func DocumentErrorFlag(reason string) RedFlag {
	if reason == "" {
		reason = "Unknown error"
	}
	return RedFlag{
		Type:       FlagDocumentError,
		Severity:   SeverityHigh,
		Message:    reason,
		Suggestion: "Please check the document format and try again",
	}
}
