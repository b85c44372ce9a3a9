package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	c, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	processes := c.Processes()
	if len(processes) != 3 || processes[0].Key != "company_incorporation" {
		t.Fatalf("unexpected processes: %+v", processes)
	}
	inc, ok := c.Process("company_incorporation")
	if !ok {
		t.Fatalf("company_incorporation not found")
	}
	want := []string{domain.TypeArticlesOfAssociation, domain.TypeBoardResolution, domain.TypeUBODeclaration}
	if len(inc.RequiredDocuments) != len(want) {
		t.Fatalf("unexpected required documents: %v", inc.RequiredDocuments)
	}
	for i := range want {
		if inc.RequiredDocuments[i] != want[i] {
			t.Fatalf("required[%d] = %q, want %q", i, inc.RequiredDocuments[i], want[i])
		}
	}

	if n := len(c.Sources("")); n != 13 {
		t.Fatalf("expected 13 sources, got %d", n)
	}
	if n := len(c.Sources("checklists")); n != 2 {
		t.Fatalf("expected 2 checklist sources, got %d", n)
	}
	if n := len(c.Sources("nope")); n != 0 {
		t.Fatalf("expected no sources for unknown category, got %d", n)
	}
	categories := c.Categories()
	if len(categories) == 0 || categories[0] == "" {
		t.Fatalf("unexpected categories: %v", categories)
	}
	for _, category := range categories {
		if len(c.Sources(category)) == 0 {
			t.Fatalf("category %q lists no sources", category)
		}
	}
}

func TestLoadMissingFileIsCatalogError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	if !domain.IsKind(err, domain.ErrCatalog) {
		t.Fatalf("expected ErrCatalog, got %v", err)
	}
}

func TestLoadCorruptFileIsCatalogError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checklists.yaml")
	if err := os.WriteFile(path, []byte("processes: [unterminated"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := Load(path, "")
	if !domain.IsKind(err, domain.ErrCatalog) {
		t.Fatalf("expected ErrCatalog, got %v", err)
	}
}

func TestParseOrdersProcessesAndDedupes(t *testing.T) {
	checklists := []byte(`
processes:
  zeta:
    order: 1
    name: Zeta
    required_documents: [a, a, b]
  alpha:
    order: 2
    name: Alpha
`)
	c, err := Parse(checklists, []byte("sources: []"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	processes := c.Processes()
	if processes[0].Key != "zeta" || processes[1].Key != "alpha" {
		t.Fatalf("unexpected order: %s, %s", processes[0].Key, processes[1].Key)
	}
	if len(processes[0].RequiredDocuments) != 2 {
		t.Fatalf("expected deduped required documents, got %v", processes[0].RequiredDocuments)
	}
}

func TestParseRejectsNamelessProcess(t *testing.T) {
	_, err := Parse([]byte("processes:\n  x:\n    order: 1\n"), []byte("sources: []"))
	if !domain.IsKind(err, domain.ErrCatalog) {
		t.Fatalf("expected ErrCatalog, got %v", err)
	}
}
