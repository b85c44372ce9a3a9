package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLoggerIncludesService(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "adgm-api", "info", "")
	logger.Info("index_built", "chunks", 12)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at info level, got %d", len(lines))
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["service"] != "adgm-api" || entry["msg"] != "index_built" || entry["chunks"] != float64(12) {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestTextLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, "adgmctl", "debug", "TEXT").Debug("reference_fetched", "url", "https://www.adgm.com")
	out := buf.String()
	if !strings.Contains(out, "msg=reference_fetched") || !strings.Contains(out, "service=adgmctl") {
		t.Fatalf("unexpected text output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("WARNING").String() != "WARN" || parseLevel("bogus").String() != "INFO" {
		t.Fatalf("unexpected level parsing")
	}
}
