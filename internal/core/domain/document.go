package domain

import "time"

type DocumentFormat string

const (
	FormatDOCX DocumentFormat = "docx"
	FormatPDF  DocumentFormat = "pdf"
)

const (
	TypeUnknown                 = "unknown"
	TypeArticlesOfAssociation   = "articles_of_association"
	TypeMemorandumOfAssociation = "memorandum_of_association"
	TypeBoardResolution         = "board_resolution"
	TypeShareholderResolution   = "shareholder_resolution"
	TypeIncorporationForm       = "incorporation_form"
	TypeUBODeclaration          = "ubo_declaration"
	TypeRegisterMembers         = "register_members"
	TypeEmploymentContract      = "employment_contract"
	TypeLicenseApplication      = "license_application"
	TypeCompliancePolicy        = "compliance_policy"
	TypeCommercialAgreement     = "commercial_agreement"
)

// Extraction failures recorded on ExtractedDocument.Error.
const (
	ExtractionUnsupported = "unsupported format"
	ExtractionUnreadable  = "unreadable"
	ExtractionTooLarge    = "file too large"
)

// ExtractedDocument is the per-file output of parsing. A non-empty Error means the
// document has no usable text and the remaining fields hold their zero values.
type ExtractedDocument struct {
	Filename       string            `json:"filename"`
	Format         DocumentFormat    `json:"format,omitempty"`
	RawText        string            `json:"raw_text,omitempty"`
	DocumentType   string            `json:"document_type"`
	Sections       map[string]string `json:"sections,omitempty"`
	WordCount      int               `json:"word_count"`
	ParagraphCount int               `json:"paragraph_count"`
	Error          string            `json:"error,omitempty"`
}

func (d ExtractedDocument) Failed() bool {
	return d.Error != ""
}

// Classified reports whether the document carries a known document type.
func (d ExtractedDocument) Classified() bool {
	return !d.Failed() && d.DocumentType != "" && d.DocumentType != TypeUnknown
}

type AnalyzedDocument struct {
	ExtractedDocument
	Issues []RedFlag `json:"issues"`
}

type BatchAnalysis struct {
	RunID        string             `json:"run_id"`
	ProcessKey   string             `json:"process"`
	Documents    []AnalyzedDocument `json:"documents"`
	Completeness CompletenessResult `json:"completeness"`
	AnalyzedAt   time.Time          `json:"analyzed_at"`
}

// UploadedFile is one caller-supplied file of an analysis batch.
type UploadedFile struct {
	Filename string
	Data     []byte
}

// ReviewedDocument is an uploaded file returned with its findings appended as review notes.
type ReviewedDocument struct {
	Filename string
	Data     []byte
	Issues   []RedFlag
}
