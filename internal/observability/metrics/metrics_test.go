package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestMiddlewareNormalizesUnknownPaths(t *testing.T) {
	m := NewHTTPServerMetrics("adgm-api", "/v1/analyses")
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	for _, path := range []string{"/v1/analyses", "/wp-admin/x"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, path, nil))
	}

	body := scrape(t, m.Handler())
	if !strings.Contains(body, `adgm_http_requests_total{method="POST",path="/v1/analyses",service="adgm-api",status="418"} 1`) {
		t.Fatalf("missing known route sample:\n%s", body)
	}
	if !strings.Contains(body, `path="other"`) || strings.Contains(body, "wp-admin") {
		t.Fatalf("expected unknown path to collapse into other:\n%s", body)
	}
}

func TestMiddlewareCollapsesKeyedRoutes(t *testing.T) {
	m := NewHTTPServerMetrics("adgm-api", "/v1/processes/")
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/processes/company_incorporation", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/processes/a/b", nil))

	body := scrape(t, m.Handler())
	if !strings.Contains(body, `path="/v1/processes/{key}",service="adgm-api",status="200"} 1`) {
		t.Fatalf("expected keyed route sample:\n%s", body)
	}
	if !strings.Contains(body, `path="other"`) {
		t.Fatalf("expected nested path to collapse into other:\n%s", body)
	}
}

func TestRecordAnalysisAndResilience(t *testing.T) {
	m := NewHTTPServerMetrics("adgm-api")
	m.RecordAnalysis(&domain.BatchAnalysis{
		Documents: []domain.AnalyzedDocument{{
			ExtractedDocument: domain.ExtractedDocument{DocumentType: domain.TypeBoardResolution},
			Issues:            []domain.RedFlag{{Type: domain.FlagMissingDate, Severity: domain.SeverityLow}},
		}},
		Completeness: domain.CompletenessResult{Process: "company_incorporation", CompletionRate: 1.0 / 3.0},
	})
	m.RecordSearch(3, 20*time.Millisecond)
	m.ObserveRetry("ollama.embed", 1)
	m.ObserveOutcome("ollama.embed", errors.New("boom"))
	m.ObserveBreakerState("ollama.embed", "open")

	body := scrape(t, m.Handler())
	for _, want := range []string{
		`adgm_analysis_runs_total{process="company_incorporation",service="adgm-api"} 1`,
		`adgm_analysis_issues_total{service="adgm-api",severity="low",type="missing_date"} 1`,
		`adgm_reference_search_results_count{service="adgm-api"} 1`,
		`adgm_resilience_retries_total{attempt="1",operation="ollama.embed",service="adgm-api"} 1`,
		`adgm_resilience_calls_total{operation="ollama.embed",outcome="error",service="adgm-api"} 1`,
		`adgm_resilience_breaker_open{operation="ollama.embed",service="adgm-api"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %s in:\n%s", want, body)
		}
	}
}

func TestWorkerMetrics(t *testing.T) {
	m := NewWorkerMetrics("adgm-worker")
	m.StartRebuild(time.Now().Add(-2 * time.Second))
	m.FinishRebuild(3*time.Second, nil)
	m.SetIndexStats(domain.IndexStats{Sources: 4, Chunks: 37})

	body := scrape(t, m.Handler())
	for _, want := range []string{
		`adgm_worker_index_rebuild_total{service="adgm-worker",status="success"} 1`,
		`adgm_worker_index_rebuild_in_flight{service="adgm-worker"} 0`,
		`adgm_index_chunks{service="adgm-worker"} 37`,
		`adgm_worker_queue_lag_seconds_count{service="adgm-worker"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %s in:\n%s", want, body)
		}
	}
}
