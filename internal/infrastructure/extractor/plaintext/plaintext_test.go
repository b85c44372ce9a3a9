package plaintext

import "testing"

func TestDecodeStripsBOM(t *testing.T) {
	got, err := Decode(append([]byte{0xEF, 0xBB, 0xBF}, []byte("  hello  ")...), "text/plain")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != "hello" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestDecodeUsesDeclaredCharset(t *testing.T) {
	latin1 := []byte("Soci\xe9t\xe9 Anonyme")
	got, err := Decode(latin1, "text/plain; charset=iso-8859-1")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != "Société Anonyme" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestDecodeUTF16WithBOM(t *testing.T) {
	body := []byte{0xFF, 0xFE, 'A', 0, 'D', 0, 'G', 0, 'M', 0}
	got, err := Decode(body, "text/plain")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != "ADGM" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestDecodeRejectsBinary(t *testing.T) {
	if _, err := Decode([]byte{0x89, 'P', 'N', 'G', 0x00, 0x01}, "application/octet-stream"); err == nil {
		t.Fatalf("expected error for binary body")
	}
}
