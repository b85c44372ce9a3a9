package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

var (
	adgmMarkers = []string{"adgm", "abu dhabi global market"}

	otherJurisdictionMarkers = []string{
		"uae federal", "dubai courts", "dubai international financial centre",
		"difc", "emirates", "sharjah", "federal law",
	}

	signatureTerms  = []string{"signature", "signed", "executed", "witness"}
	resolutionTerms = []string{"resolved", "resolution", "decided"}

	// dateToken accepts a 19xx/20xx year, the word "date" or "day of".
	dateToken = regexp.MustCompile(`\b(?:19|20)\d{2}\b|date|day of`)
)

// FlagRule is one independent red-flag check over lowercased content.
type FlagRule struct {
	Order int
	Name  string
	Check func(doc domain.ExtractedDocument, content string) []domain.RedFlag
}

// DefaultFlagRules runs after the empty-content short circuit.
var DefaultFlagRules = []FlagRule{
	{Order: 1, Name: "jurisdiction", Check: checkJurisdiction},
	{Order: 2, Name: "signature", Check: checkSignature},
	{Order: 3, Name: "articles_clauses", Check: checkArticlesClauses},
	{Order: 4, Name: "resolution_language", Check: checkResolutionLanguage},
	{Order: 5, Name: "date", Check: checkDate},
}

type RedFlagDetector struct {
	rules []FlagRule
}

func NewRedFlagDetector(table []FlagRule) *RedFlagDetector {
	ordered := make([]FlagRule, len(table))
	copy(ordered, table)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
	return &RedFlagDetector{rules: ordered}
}

func NewDefaultRedFlagDetector() *RedFlagDetector {
	return NewRedFlagDetector(DefaultFlagRules)
}

func (d *RedFlagDetector) Detect(doc domain.ExtractedDocument) []domain.RedFlag {
	content := strings.ToLower(doc.RawText)
	if strings.TrimSpace(content) == "" {
		return []domain.RedFlag{{
			Type:       domain.FlagEmptyDocument,
			Severity:   domain.SeverityHigh,
			Message:    "Document appears to be empty or unreadable",
			Suggestion: "Please check the document format and content",
		}}
	}

	flags := make([]domain.RedFlag, 0, len(d.rules))
	for _, rule := range d.rules {
		flags = append(flags, rule.Check(doc, content)...)
	}
	return flags
}

func checkJurisdiction(_ domain.ExtractedDocument, content string) []domain.RedFlag {
	if containsAny(content, adgmMarkers) {
		return nil
	}
	if containsAny(content, otherJurisdictionMarkers) {
		return []domain.RedFlag{{
			Type:       domain.FlagJurisdictionError,
			Severity:   domain.SeverityHigh,
			Message:    "Document references non-ADGM jurisdiction",
			Suggestion: "Update jurisdiction clause to specify ADGM Courts and regulations",
		}}
	}
	return []domain.RedFlag{{
		Type:       domain.FlagMissingJurisdiction,
		Severity:   domain.SeverityMedium,
		Message:    "No clear ADGM jurisdiction specified",
		Suggestion: "Add explicit reference to ADGM jurisdiction and governing law",
	}}
}

func checkSignature(_ domain.ExtractedDocument, content string) []domain.RedFlag {
	if containsAny(content, signatureTerms) {
		return nil
	}
	return []domain.RedFlag{{
		Type:       domain.FlagMissingSignature,
		Severity:   domain.SeverityMedium,
		Message:    "No signature section found",
		Suggestion: "Add proper signatory section with witness requirements",
	}}
}

func checkArticlesClauses(doc domain.ExtractedDocument, content string) []domain.RedFlag {
	if doc.DocumentType != domain.TypeArticlesOfAssociation {
		return nil
	}
	var flags []domain.RedFlag
	// "capital" also covers "share capital".
	if !strings.Contains(content, "capital") {
		flags = append(flags, domain.RedFlag{
			Type:       domain.FlagMissingClause,
			Severity:   domain.SeverityHigh,
			Message:    "Share capital clause appears to be missing",
			Suggestion: "Include detailed share capital structure and nominal value",
		})
	}
	if !strings.Contains(content, "registered office") {
		flags = append(flags, domain.RedFlag{
			Type:       domain.FlagMissingClause,
			Severity:   domain.SeverityHigh,
			Message:    "Registered office clause appears to be missing",
			Suggestion: "Include registered office address within ADGM",
		})
	}
	return flags
}

func checkResolutionLanguage(doc domain.ExtractedDocument, content string) []domain.RedFlag {
	if doc.DocumentType != domain.TypeBoardResolution || containsAny(content, resolutionTerms) {
		return nil
	}
	return []domain.RedFlag{{
		Type:       domain.FlagMissingClause,
		Severity:   domain.SeverityMedium,
		Message:    "Resolution language appears to be missing",
		Suggestion: `Include proper resolution language (e.g., "IT WAS RESOLVED THAT...")`,
	}}
}

func checkDate(_ domain.ExtractedDocument, content string) []domain.RedFlag {
	if dateToken.MatchString(content) {
		return nil
	}
	return []domain.RedFlag{{
		Type:       domain.FlagMissingDate,
		Severity:   domain.SeverityLow,
		Message:    "No date found in document",
		Suggestion: "Include execution date for legal validity",
	}}
}

func containsAny(content string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(content, term) {
			return true
		}
	}
	return false
}
