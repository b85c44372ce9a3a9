package httpadapter

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestIDMiddlewareReplacesOversizedID(t *testing.T) {
	var seen string
	handler := requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDBytes+1))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if len(seen) != 36 || res.Header().Get(requestIDHeader) != seen {
		t.Fatalf("expected a fresh uuid, got %q (header %q)", seen, res.Header().Get(requestIDHeader))
	}
}

func TestRecoverMiddlewareAnswers500(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	handler := recoverMiddleware(logger, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil sections map")
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/v1/analyses", nil))

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil || body["error"] != "internal error" {
		t.Fatalf("unexpected body %q: %v", res.Body.String(), err)
	}
	if !strings.Contains(logs.String(), `"msg":"panic_recovered"`) {
		t.Fatalf("expected panic_recovered log, got %s", logs.String())
	}
}

func TestAccessLogRecordsStatusAndIssueCount(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	handler := accessLogMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(issueCountHeader, "3")
		w.WriteHeader(http.StatusCreated)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("docx"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/reviews", strings.NewReader("payload")))

	var entry map[string]any
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", logs.String(), err)
	}
	if entry["msg"] != "http_request" || entry["status"] != float64(http.StatusCreated) {
		t.Fatalf("unexpected access log: %v", entry)
	}
	if entry["issues"] != "3" || entry["bytes_out"] != float64(4) || entry["bytes_in"] != float64(7) {
		t.Fatalf("missing size or issue attributes: %v", entry)
	}
}
