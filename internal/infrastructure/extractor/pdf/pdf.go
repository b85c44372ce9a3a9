package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Strategy extracts text from a parsed PDF.
type Strategy struct {
	Name    string
	Extract func(reader *pdf.Reader) (string, error)
}

// DefaultStrategies tries row-ordered layout text first and the raw content stream second.
var DefaultStrategies = []Strategy{
	{Name: "layout", Extract: layoutText},
	{Name: "plain", Extract: plainText},
}

// Text runs strategies in order and returns the first non-blank result.
// The returned error joins the failures of every strategy when none produced text.
func Text(data []byte, strategies []Strategy) (string, error) {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}

	var failures []string
	for _, strategy := range strategies {
		text, err := runStrategy(data, strategy)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", strategy.Name, err))
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
		failures = append(failures, strategy.Name+": empty output")
	}
	return "", fmt.Errorf("pdf text extraction failed (%s)", strings.Join(failures, "; "))
}

func runStrategy(data []byte, strategy Strategy) (text string, err error) {
	// the pdf package panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	return strategy.Extract(reader)
}

func layoutText(reader *pdf.Reader) (string, error) {
	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("read rows of page %d: %w", i, err)
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			if s := strings.TrimSpace(line.String()); s != "" {
				lines = append(lines, s)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(pages, "\n"), nil
}

func plainText(reader *pdf.Reader) (string, error) {
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract plain text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read plain text: %w", err)
	}
	return buf.String(), nil
}
