// Package plaintext turns downloaded text bodies into UTF-8 strings.
package plaintext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

var errBinary = errors.New("body is not text")

// Decode converts body to UTF-8 using the charset named in contentType, a byte order mark,
// or UTF-8 when neither is present. Bodies containing NUL bytes are rejected as binary.
func Decode(body []byte, contentType string) (string, error) {
	if bytes.IndexByte(body, 0) >= 0 && !hasUTF16BOM(body) {
		return "", errBinary
	}
	if utf8.Valid(body) && !strings.Contains(strings.ToLower(contentType), "charset=") {
		return clean(string(body)), nil
	}

	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("decode %q: %w", contentType, err)
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode %q: %w", contentType, err)
	}
	if !utf8.Valid(text) {
		return "", errBinary
	}
	return clean(string(text)), nil
}

func clean(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}

func hasUTF16BOM(body []byte) bool {
	return bytes.HasPrefix(body, []byte{0xFF, 0xFE}) || bytes.HasPrefix(body, []byte{0xFE, 0xFF})
}
