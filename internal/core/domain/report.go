package domain

type Report struct {
	Timestamp       string           `json:"timestamp"`
	AnalysisSummary AnalysisSummary  `json:"analysis_summary"`
	DocumentDetails []DocumentDetail `json:"document_details"`
	IssuesSummary   IssuesSummary    `json:"issues_summary"`
	Recommendations []string         `json:"recommendations"`
}

type AnalysisSummary struct {
	Process           string   `json:"process"`
	DocumentsUploaded int      `json:"documents_uploaded"`
	RequiredDocuments int      `json:"required_documents"`
	MissingDocuments  []string `json:"missing_documents"`
	CompletionRate    float64  `json:"completion_rate"`
}

type DocumentDetail struct {
	Filename       string    `json:"filename"`
	DocumentType   string    `json:"document_type"`
	WordCount      int       `json:"word_count"`
	ParagraphCount int       `json:"paragraph_count"`
	IssuesFound    []RedFlag `json:"issues_found"`
}

type IssuesSummary struct {
	TotalIssues    int `json:"total_issues"`
	HighSeverity   int `json:"high_severity"`
	MediumSeverity int `json:"medium_severity"`
	LowSeverity    int `json:"low_severity"`
}
