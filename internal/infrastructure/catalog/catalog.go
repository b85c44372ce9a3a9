package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

//go:embed checklists.yaml
var defaultChecklists []byte

//go:embed sources.yaml
var defaultSources []byte

type processRecord struct {
	Order             int      `yaml:"order"`
	Name              string   `yaml:"name"`
	Description       string   `yaml:"description"`
	RequiredDocuments []string `yaml:"required_documents"`
	OptionalDocuments []string `yaml:"optional_documents"`
	ProcessKeywords   []string `yaml:"process_keywords"`
}

type checklistFile struct {
	Processes map[string]processRecord `yaml:"processes"`
}

type sourcesFile struct {
	Sources []domain.ReferenceSource `yaml:"sources"`
}

// Catalog holds checklist processes and reference sources. It is read-only after Load.
type Catalog struct {
	processes []domain.ChecklistProcess
	byKey     map[string]int
	sources   []domain.ReferenceSource
}

// Load reads both catalogs. Empty paths select the embedded defaults.
func Load(checklistPath, sourcesPath string) (*Catalog, error) {
	checklists, err := readOrDefault(checklistPath, defaultChecklists)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCatalog, "read checklist catalog", err)
	}
	sources, err := readOrDefault(sourcesPath, defaultSources)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCatalog, "read source catalog", err)
	}
	return Parse(checklists, sources)
}

func Parse(checklists, sources []byte) (*Catalog, error) {
	processes, err := parseProcesses(checklists)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCatalog, "parse checklist catalog", err)
	}
	refs, err := parseSources(sources)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCatalog, "parse source catalog", err)
	}

	byKey := make(map[string]int, len(processes))
	for i, p := range processes {
		byKey[p.Key] = i
	}
	return &Catalog{processes: processes, byKey: byKey, sources: refs}, nil
}

func (c *Catalog) Processes() []domain.ChecklistProcess {
	out := make([]domain.ChecklistProcess, len(c.processes))
	copy(out, c.processes)
	return out
}

func (c *Catalog) Process(key string) (domain.ChecklistProcess, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return domain.ChecklistProcess{}, false
	}
	return c.processes[i], true
}

// Sources returns every source when category is empty.
func (c *Catalog) Sources(category string) []domain.ReferenceSource {
	category = strings.TrimSpace(category)
	out := make([]domain.ReferenceSource, 0, len(c.sources))
	for _, s := range c.sources {
		if category == "" || s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

// Categories lists source categories in catalog order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range c.sources {
		if !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	return out
}

func readOrDefault(path string, fallback []byte) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return fallback, nil
	}
	return os.ReadFile(path)
}

func parseProcesses(raw []byte) ([]domain.ChecklistProcess, error) {
	var file checklistFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	if len(file.Processes) == 0 {
		return nil, errors.New("no processes defined")
	}

	type keyed struct {
		key string
		rec processRecord
	}
	records := make([]keyed, 0, len(file.Processes))
	for key, rec := range file.Processes {
		records = append(records, keyed{key: key, rec: rec})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].rec.Order != records[j].rec.Order {
			return records[i].rec.Order < records[j].rec.Order
		}
		return records[i].key < records[j].key
	})

	out := make([]domain.ChecklistProcess, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.key) == "" || r.key == domain.ProcessUnknown {
			return nil, fmt.Errorf("invalid process key %q", r.key)
		}
		if strings.TrimSpace(r.rec.Name) == "" {
			return nil, fmt.Errorf("process %q: name is required", r.key)
		}
		for _, t := range append(append([]string{}, r.rec.RequiredDocuments...), r.rec.OptionalDocuments...) {
			if strings.TrimSpace(t) == "" {
				return nil, fmt.Errorf("process %q: empty document type", r.key)
			}
		}
		out = append(out, domain.ChecklistProcess{
			Key:               r.key,
			Name:              r.rec.Name,
			Description:       r.rec.Description,
			RequiredDocuments: dedupe(r.rec.RequiredDocuments),
			OptionalDocuments: dedupe(r.rec.OptionalDocuments),
			Keywords:          dedupe(r.rec.ProcessKeywords),
		})
	}
	return out, nil
}

func parseSources(raw []byte) ([]domain.ReferenceSource, error) {
	var file sourcesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(file.Sources))
	out := make([]domain.ReferenceSource, 0, len(file.Sources))
	for i, s := range file.Sources {
		s.URL = strings.TrimSpace(s.URL)
		if s.URL == "" {
			return nil, fmt.Errorf("source %d: url is required", i)
		}
		if s.Key == "" {
			s.Key = s.URL
		}
		if seen[s.Key] {
			return nil, fmt.Errorf("duplicate source key %q", s.Key)
		}
		seen[s.Key] = true
		out = append(out, s)
	}
	return out, nil
}

// dedupe keeps the first occurrence so the list behaves as an ordered set.
func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
