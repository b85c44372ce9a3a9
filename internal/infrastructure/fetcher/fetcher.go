// Package fetcher downloads reference sources over HTTP and reduces them to plain text.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/extractor"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/extractor/htmltext"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/resilience"
)

const (
	SourceLabel      = "ADGM Official"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	defaultTimeout  = 30 * time.Second
	defaultInterval = time.Second
	defaultMinChars = 100
	maxBodyBytes    = 32 << 20

	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// BinaryExtractor reads text out of downloaded PDF and DOCX files.
type BinaryExtractor interface {
	Text(format domain.DocumentFormat, data []byte) (string, error)
}

// Options zero values select the defaults. A negative Interval disables rate limiting.
type Options struct {
	Timeout            time.Duration
	Interval           time.Duration
	UserAgent          string
	MinChars           int
	HTTPClient         *http.Client
	ResilienceExecutor *resilience.Executor
	Logger             *slog.Logger
}

type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	userAgent string
	minChars  int
	binary    BinaryExtractor
	executor  *resilience.Executor
	logger    *slog.Logger
}

func New(binary BinaryExtractor, options Options) *Fetcher {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	interval := options.Interval
	if interval == 0 {
		interval = defaultInterval
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	userAgent := strings.TrimSpace(options.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	minChars := options.MinChars
	if minChars <= 0 {
		minChars = defaultMinChars
	}
	client := options.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:    client,
		limiter:   rate.NewLimiter(limit, 1),
		timeout:   timeout,
		userAgent: userAgent,
		minChars:  minChars,
		binary:    binary,
		executor:  options.ResilienceExecutor,
		logger:    logger,
	}
}

// Fetch visits sources sequentially. A source that fails or yields too little text is
// logged and skipped; only cancellation aborts the run.
func (f *Fetcher) Fetch(ctx context.Context, sources []domain.ReferenceSource) ([]domain.SourceDocument, error) {
	documents := make([]domain.SourceDocument, 0, len(sources))
	for _, source := range sources {
		if err := f.limiter.Wait(ctx); err != nil {
			return documents, err
		}

		doc, err := f.fetchOne(ctx, source.URL)
		if err != nil {
			if ctx.Err() != nil {
				return documents, ctx.Err()
			}
			f.logger.Warn("reference_fetch_failed", "url", source.URL, "error", err)
			continue
		}
		if len(strings.TrimSpace(doc.Content)) <= f.minChars {
			f.logger.Info("reference_fetch_skipped", "url", source.URL, "reason", "insufficient content", "chars", len(doc.Content))
			continue
		}
		f.logger.Info("reference_fetched", "url", source.URL, "content_type", doc.ContentType, "chars", len(doc.Content))
		documents = append(documents, doc)
	}
	return documents, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, rawURL string) (domain.SourceDocument, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return domain.SourceDocument{}, fmt.Errorf("invalid source url %q", rawURL)
	}

	var (
		body        []byte
		contentType string
	)
	call := func(callCtx context.Context) error {
		var callErr error
		body, contentType, callErr = f.download(callCtx, rawURL)
		return callErr
	}
	if f.executor != nil {
		err = f.executor.Execute(ctx, "reference.fetch/"+parsed.Host, call, resilience.ClassifyHTTPError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.SourceDocument{}, err
	}

	text, err := f.toText(contentType, body)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("extract %s: %w", contentType, err)
	}
	return domain.SourceDocument{
		URL:         rawURL,
		Source:      SourceLabel,
		Domain:      parsed.Host,
		ContentType: contentType,
		Content:     extractor.Normalize(text),
	}, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, "", resilience.NewStatusError("reference", "fetch", resp, 512)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, "", errors.New("response body too large")
	}
	return body, strings.ToLower(resp.Header.Get("Content-Type")), nil
}

func (f *Fetcher) toText(contentType string, body []byte) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	switch {
	case strings.Contains(mediaType, "text/html"):
		return htmltext.Text(bytes.NewReader(body))
	case strings.Contains(mediaType, "application/pdf"):
		return f.binary.Text(domain.FormatPDF, body)
	case strings.Contains(mediaType, contentTypeDOCX):
		return f.binary.Text(domain.FormatDOCX, body)
	default:
		return plaintext.Decode(body, contentType)
	}
}
