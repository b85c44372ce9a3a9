package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Paragraph is a single run of text written into a generated document.
type Paragraph struct {
	Text string
	Bold bool
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// Build writes a minimal DOCX package holding the given paragraphs.
func Build(paragraphs []Paragraph) ([]byte, error) {
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="` + wordNamespace + `"><w:body>`)
	if err := writeParagraphs(&body, paragraphs); err != nil {
		return nil, err
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{documentPart, body.String()},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := io.WriteString(w, part.content); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return buf.Bytes(), nil
}

// AppendParagraphs copies a DOCX package and inserts paragraphs at the end of its body,
// ahead of the final section properties.
func AppendParagraphs(data []byte, paragraphs []Paragraph) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx container: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	found := false
	for _, file := range reader.File {
		content, err := readZipFile(file)
		if err != nil {
			return nil, err
		}
		if file.Name == documentPart {
			found = true
			content, err = insertIntoBody(content, paragraphs)
			if err != nil {
				return nil, err
			}
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: file.Name, Method: zip.Deflate, Modified: file.Modified})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", file.Name, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("write %s: %w", file.Name, err)
		}
	}
	if !found {
		return nil, ErrMissingDocumentPart
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return buf.Bytes(), nil
}

func insertIntoBody(document []byte, paragraphs []Paragraph) ([]byte, error) {
	prefix := wordPrefix(document)

	var extra strings.Builder
	if err := writePrefixedParagraphs(&extra, prefix, paragraphs); err != nil {
		return nil, err
	}

	text := string(document)
	bodyEnd := strings.LastIndex(text, "</"+prefix+"body>")
	if bodyEnd < 0 {
		return nil, fmt.Errorf("docx: document body not found")
	}
	insertAt := bodyEnd
	if sect := strings.LastIndex(text[:bodyEnd], "<"+prefix+"sectPr"); sect >= 0 {
		insertAt = sect
	}
	return []byte(text[:insertAt] + extra.String() + text[insertAt:]), nil
}

// wordPrefix finds the element prefix bound to the wordprocessing namespace, usually "w:".
func wordPrefix(document []byte) string {
	marker := `="` + wordNamespace + `"`
	text := string(document)
	idx := strings.Index(text, marker)
	if idx < 0 {
		return "w:"
	}
	start := strings.LastIndex(text[:idx], "xmlns")
	if start < 0 {
		return "w:"
	}
	decl := text[start:idx]
	if decl == "xmlns" {
		return ""
	}
	return strings.TrimPrefix(decl, "xmlns:") + ":"
}

func writeParagraphs(sb *strings.Builder, paragraphs []Paragraph) error {
	return writePrefixedParagraphs(sb, "w:", paragraphs)
}

func writePrefixedParagraphs(sb *strings.Builder, prefix string, paragraphs []Paragraph) error {
	for _, p := range paragraphs {
		var escaped bytes.Buffer
		if err := xml.EscapeText(&escaped, []byte(p.Text)); err != nil {
			return fmt.Errorf("escape paragraph text: %w", err)
		}
		sb.WriteString("<" + prefix + "p><" + prefix + "r>")
		if p.Bold {
			sb.WriteString("<" + prefix + "rPr><" + prefix + "b/></" + prefix + "rPr>")
		}
		sb.WriteString("<" + prefix + `t xml:space="preserve">`)
		sb.Write(escaped.Bytes())
		sb.WriteString("</" + prefix + "t></" + prefix + "r></" + prefix + "p>")
	}
	return nil
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.Name, err)
	}
	return content, nil
}
