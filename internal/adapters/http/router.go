package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/adgm-corporate-agent/internal/config"
	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/core/ports"
	"github.com/kirillkom/adgm-corporate-agent/internal/observability/metrics"
)

const (
	docxContentType    = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	issueCountHeader   = "X-Issue-Count"
	multipartMemory    = 32 << 20
	defaultMaxUploads  = 20
	defaultMaxFileSize = 10
)

// Routes lists the paths served by the router. Metrics label any other path as "other".
var Routes = []string{
	"/healthz",
	"/metrics",
	"/v1/processes",
	"/v1/processes/",
	"/v1/processes/identify",
	"/v1/analyses",
	"/v1/references/search",
	"/v1/references/rebuild",
	"/v1/reviews",
}

type Router struct {
	cfg      config.Config
	analyzer ports.DocumentAnalyzer
	searcher ports.ReferenceSearcher
	rebuilds ports.RebuildRequester
	reviewer ports.DocumentReviewer
	exporter ports.ReportExporter
	metrics  *metrics.HTTPServerMetrics
	logger   *slog.Logger
}

func NewRouter(
	cfg config.Config,
	analyzer ports.DocumentAnalyzer,
	searcher ports.ReferenceSearcher,
	rebuilds ports.RebuildRequester,
	reviewer ports.DocumentReviewer,
	exporter ports.ReportExporter,
) *Router {
	return &Router{
		cfg:      cfg,
		analyzer: analyzer,
		searcher: searcher,
		rebuilds: rebuilds,
		reviewer: reviewer,
		exporter: exporter,
		logger:   slog.Default(),
	}
}

func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) WithLogger(logger *slog.Logger) *Router {
	if logger != nil {
		rt.logger = logger
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	mux.HandleFunc("/v1/processes", rt.listProcesses)
	mux.HandleFunc("/v1/processes/", rt.getProcess)
	mux.HandleFunc("/v1/processes/identify", rt.identifyProcess)
	mux.HandleFunc("/v1/analyses", rt.analyze)
	mux.HandleFunc("/v1/references/search", rt.searchReferences)
	mux.HandleFunc("/v1/references/rebuild", rt.requestRebuild)
	mux.HandleFunc("/v1/reviews", rt.reviewDocument)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = recoverMiddleware(rt.logger, handler)
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) listProcesses(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"processes": rt.analyzer.Processes()})
}

func (rt *Router) getProcess(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	key := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/processes/"), "/")
	if key == "" {
		writeError(w, http.StatusBadRequest, "process key is required")
		return
	}
	process, err := rt.analyzer.Process(key)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, process)
}

func (rt *Router) identifyProcess(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	files, err := rt.readUploads(w, r, "files")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	docs := make([]domain.ExtractedDocument, 0, len(files))
	for _, file := range files {
		docs = append(docs, rt.analyzer.ParseDocument(r.Context(), file.Filename, file.Data))
	}
	key := rt.analyzer.IdentifyProcess(docs)

	type identifiedDocument struct {
		Filename     string `json:"filename"`
		DocumentType string `json:"document_type"`
		Error        string `json:"error,omitempty"`
	}
	identified := make([]identifiedDocument, 0, len(docs))
	for _, doc := range docs {
		identified = append(identified, identifiedDocument{
			Filename:     doc.Filename,
			DocumentType: doc.DocumentType,
			Error:        doc.Error,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"process":      key,
		"documents":    identified,
		"completeness": rt.analyzer.CheckCompleteness(docs, key),
	})
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	files, err := rt.readUploads(w, r, "files")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.FormValue("format")))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported report format %q", format))
		return
	}

	batch, err := rt.analyzer.AnalyzeBatch(r.Context(), strings.TrimSpace(r.FormValue("process")), files)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordAnalysis(batch)
	}
	report := rt.analyzer.GenerateReport(batch)

	if format == "xlsx" {
		if rt.exporter == nil {
			writeError(w, http.StatusNotImplemented, "report export is not configured")
			return
		}
		data, err := rt.exporter.Export(report)
		if err != nil {
			rt.writeDomainError(w, r, err)
			return
		}
		writeAttachment(w, rt.exporter.ContentType(), "adgm_report_"+batch.RunID+".xlsx", data)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"analysis": batch,
		"report":   report,
	})
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (rt *Router) searchReferences(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req searchRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start := time.Now()
	results, err := rt.searcher.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordSearch(len(results), time.Since(start))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": results,
	})
}

type rebuildRequest struct {
	Category string `json:"category"`
}

func (rt *Router) requestRebuild(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req rebuildRequest
	if err := decodeJSONBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	queued, err := rt.rebuilds.RequestRebuild(r.Context(), strings.TrimSpace(req.Category))
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, queued)
}

func (rt *Router) reviewDocument(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	files, err := rt.readUploads(w, r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one multipart field 'file' is required")
		return
	}

	reviewed, err := rt.reviewer.Review(r.Context(), files[0].Filename, files[0].Data)
	if err != nil {
		rt.writeDomainError(w, r, err)
		return
	}
	w.Header().Set(issueCountHeader, fmt.Sprintf("%d", len(reviewed.Issues)))
	writeAttachment(w, docxContentType, reviewed.Filename, reviewed.Data)
}

// readUploads reads every part of the given multipart field. Each file is capped one byte past
// the configured limit so the extractor can still report it as too large.
func (rt *Router) readUploads(w http.ResponseWriter, r *http.Request, field string) ([]domain.UploadedFile, error) {
	maxFiles := rt.cfg.APIMaxUploadFiles
	if maxFiles <= 0 {
		maxFiles = defaultMaxUploads
	}
	maxFileSizeMB := rt.cfg.MaxFileSizeMB
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = defaultMaxFileSize
	}
	perFile := int64(maxFileSizeMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxFiles)*(perFile+1)+(1<<20))

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, fmt.Errorf("multipart form is required")
	}

	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, fmt.Errorf("multipart field '%s' is required", field)
	}
	if len(headers) > maxFiles {
		return nil, fmt.Errorf("at most %d files can be uploaded at once", maxFiles)
	}

	files := make([]domain.UploadedFile, 0, len(headers))
	for _, header := range headers {
		data, err := readPart(header, perFile+1)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", header.Filename, err)
		}
		files = append(files, domain.UploadedFile{Filename: header.Filename, Data: data})
	}
	return files, nil
}

func readPart(header *multipart.FileHeader, limit int64) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, limit))
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, out any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func (rt *Router) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error_kind", domain.KindName(err),
			"error", err,
		)
	}
	writeError(w, status, err.Error())
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
