package rules

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const maxSectionRunes = 200

// SectionRule lists label patterns for one section. Patterns are tried in order.
type SectionRule struct {
	Order    int
	Name     string
	Patterns []string
}

var DefaultSections = []SectionRule{
	{Order: 1, Name: "company_name", Patterns: []string{"company name", "name of the company", "proposed company name"}},
	{Order: 2, Name: "jurisdiction", Patterns: []string{"jurisdiction", "governing law", "courts?"}},
	{Order: 3, Name: "registered_office", Patterns: []string{"registered office", "office address"}},
	{Order: 4, Name: "share_capital", Patterns: []string{"share capital", "capital", "nominal value"}},
	{Order: 5, Name: "directors", Patterns: []string{"director[s]?", "appointment of director[s]?"}},
}

type compiledSection struct {
	name     string
	patterns []*regexp.Regexp
}

type SectionExtractor struct {
	sections []compiledSection
}

// NewSectionExtractor compiles each label into `label[:\s]+(.*?)(?:\n|\.)`, case-insensitive and dot-all.
func NewSectionExtractor(table []SectionRule) (*SectionExtractor, error) {
	ordered := make([]SectionRule, len(table))
	copy(ordered, table)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	out := &SectionExtractor{sections: make([]compiledSection, 0, len(ordered))}
	for _, rule := range ordered {
		section := compiledSection{name: rule.Name}
		for _, label := range rule.Patterns {
			re, err := regexp.Compile(`(?is)` + label + `[:\s]+(.*?)(?:\n|\.)`)
			if err != nil {
				return nil, err
			}
			section.patterns = append(section.patterns, re)
		}
		out.sections = append(out.sections, section)
	}
	return out, nil
}

func MustDefaultSectionExtractor() *SectionExtractor {
	extractor, err := NewSectionExtractor(DefaultSections)
	if err != nil {
		panic(err)
	}
	return extractor
}

// ExtractSections omits sections none of whose patterns match.
func (e *SectionExtractor) ExtractSections(text string) map[string]string {
	out := make(map[string]string)
	for _, section := range e.sections {
		for _, re := range section.patterns {
			match := re.FindStringSubmatch(text)
			if match == nil {
				continue
			}
			out[section.name] = truncateRunes(strings.TrimSpace(match[1]), maxSectionRunes)
			break
		}
	}
	return out
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
