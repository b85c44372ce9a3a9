package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

type extractorFake struct {
	docs map[string]domain.ExtractedDocument
}

func (f *extractorFake) Extract(_ context.Context, filename string, _ []byte) domain.ExtractedDocument {
	if doc, ok := f.docs[filename]; ok {
		doc.Filename = filename
		return doc
	}
	return domain.ExtractedDocument{Filename: filename, DocumentType: domain.TypeUnknown, Error: `unsupported format: ".txt"`}
}

// classifierFake maps the first word of the text to a document type.
type classifierFake struct {
	calls int
}

func (f *classifierFake) Classify(text string) string {
	f.calls++
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return domain.TypeUnknown
	}
	return fields[0]
}

type sectionsFake struct{}

func (sectionsFake) ExtractSections(text string) map[string]string {
	return map[string]string{"company_name": strings.ToUpper(text[:3])}
}

type detectorFake struct {
	flags map[string][]domain.RedFlag
	seen  []string
}

func (f *detectorFake) Detect(doc domain.ExtractedDocument) []domain.RedFlag {
	f.seen = append(f.seen, doc.Filename)
	return f.flags[doc.Filename]
}

type catalogFake struct {
	processes []domain.ChecklistProcess
}

func (f *catalogFake) Processes() []domain.ChecklistProcess {
	return f.processes
}

func (f *catalogFake) Process(key string) (domain.ChecklistProcess, bool) {
	for _, p := range f.processes {
		if p.Key == key {
			return p, true
		}
	}
	return domain.ChecklistProcess{}, false
}

func testCatalog() *catalogFake {
	return &catalogFake{processes: []domain.ChecklistProcess{
		{
			Key:               "company_incorporation",
			Name:              "Company Incorporation",
			RequiredDocuments: []string{domain.TypeArticlesOfAssociation, domain.TypeBoardResolution, domain.TypeUBODeclaration},
			OptionalDocuments: []string{domain.TypeMemorandumOfAssociation, domain.TypeRegisterMembers},
		},
		{
			Key:               "licensing",
			Name:              "Business Licensing",
			RequiredDocuments: []string{domain.TypeLicenseApplication},
			OptionalDocuments: []string{domain.TypeCompliancePolicy, domain.TypeBoardResolution},
		},
		{
			Key:               "employment_setup",
			Name:              "Employment Setup",
			RequiredDocuments: []string{domain.TypeEmploymentContract},
		},
		{
			Key:  "notification",
			Name: "Notification Only",
		},
	}}
}

func classified(docType string) domain.ExtractedDocument {
	return domain.ExtractedDocument{DocumentType: docType, RawText: docType}
}

type sourceCatalogFake struct {
	sources map[string][]domain.ReferenceSource
}

func (f *sourceCatalogFake) Sources(category string) []domain.ReferenceSource {
	if category == "" {
		var all []domain.ReferenceSource
		for _, s := range f.sources {
			all = append(all, s...)
		}
		return all
	}
	return f.sources[category]
}

func (f *sourceCatalogFake) Categories() []string {
	out := make([]string, 0, len(f.sources))
	for category := range f.sources {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

type fetcherFake struct {
	docs []domain.SourceDocument
	err  error
	got  []domain.ReferenceSource
}

func (f *fetcherFake) Fetch(_ context.Context, sources []domain.ReferenceSource) ([]domain.SourceDocument, error) {
	f.got = sources
	return f.docs, f.err
}

// chunkerFake splits on "|".
type chunkerFake struct{}

func (chunkerFake) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return strings.Split(text, "|")
}

type embedderFake struct {
	err      error
	short    bool
	queries  []string
	embedded int
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.embedded += len(texts)
	n := len(texts)
	if f.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.queries = append(f.queries, text)
	return []float32{float32(len(text)), 1}, nil
}

type vectorIndexFake struct {
	chunks     []domain.IndexChunk
	replaceErr error
	loadOK     bool
	loadErr    error
	lastLimit  int
}

func (f *vectorIndexFake) Replace(_ context.Context, chunks []domain.IndexChunk) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.chunks = chunks
	return nil
}

func (f *vectorIndexFake) Load(context.Context) (bool, error) {
	return f.loadOK, f.loadErr
}

func (f *vectorIndexFake) Search(_ context.Context, _ []float32, limit int) ([]domain.SearchResult, error) {
	f.lastLimit = limit
	out := []domain.SearchResult{}
	for i, c := range f.chunks {
		if i == limit {
			break
		}
		out = append(out, domain.SearchResult{Text: c.Text, Metadata: c.Metadata, Score: float64(i)})
	}
	return out, nil
}

func (f *vectorIndexFake) Stats() domain.IndexStats {
	urls := map[string]bool{}
	for _, c := range f.chunks {
		urls[c.Metadata.URL] = true
	}
	dim := 0
	if len(f.chunks) > 0 {
		dim = len(f.chunks[0].Vector)
	}
	return domain.IndexStats{Sources: len(urls), Chunks: len(f.chunks), Dimension: dim}
}

type queueFake struct {
	published []domain.RebuildRequest
	err       error
}

func (f *queueFake) PublishRebuildRequested(_ context.Context, req domain.RebuildRequest) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, req)
	return nil
}

func (f *queueFake) SubscribeRebuildRequested(context.Context, func(context.Context, domain.RebuildRequest) error) error {
	return nil
}

type annotatorFake struct {
	flags []domain.RedFlag
	err   error
}

func (f *annotatorFake) Annotate(filename string, _ string, data []byte, flags []domain.RedFlag) (string, []byte, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	f.flags = flags
	return "reviewed_" + filename, append(append([]byte{}, data...), []byte(" +notes")...), nil
}

func referenceSources() *sourceCatalogFake {
	return &sourceCatalogFake{sources: map[string][]domain.ReferenceSource{
		"company_formation": {{Key: "guidance", URL: "https://www.adgm.com/a", Category: "company_formation"}},
		"employment":        {{Key: "contract", URL: "https://www.adgm.com/b", Category: "employment"}},
	}}
}
