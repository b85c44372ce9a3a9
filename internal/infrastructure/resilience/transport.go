package resilience

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

// StatusError is a non-2xx response from a remote HTTP dependency.
type StatusError struct {
	Service    string
	Operation  string
	StatusCode int
	Status     string
	Body       string
	// RetryAfter is the parsed Retry-After header, zero when absent.
	RetryAfter time.Duration
}

// NewStatusError captures resp as a StatusError, keeping at most bodyLimit bytes of the body.
func NewStatusError(service, operation string, resp *http.Response, bodyLimit int64) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, bodyLimit))
	return &StatusError{
		Service:    service,
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(raw)),
		RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}
}

func (e *StatusError) Error() string {
	if e == nil {
		return "remote status error"
	}
	status := e.Status
	if status == "" {
		status = strconv.Itoa(e.StatusCode)
	}
	msg := strings.TrimSpace(e.Service+" "+e.Operation) + " status: " + status
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// ParseRetryAfter accepts delay-seconds or an HTTP date. Unparseable or past values yield zero.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	at, err := http.ParseTime(value)
	if err != nil || !at.After(now) {
		return 0
	}
	return at.Sub(now)
}

// ClassifyHTTPError retries network failures, open breakers and transient statuses.
// Cancellation and client errors fail fast without counting against the breaker.
func ClassifyHTTPError(err error) ErrorClassification {
	var statusErr *StatusError
	switch {
	case err == nil:
		return ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorClassification{}
	case IsCircuitOpen(err):
		return ErrorClassification{Retryable: true, RecordFailure: true}
	case errors.As(err, &statusErr):
		if !IsRetryableHTTPStatus(statusErr.StatusCode) {
			return ErrorClassification{}
		}
		return ErrorClassification{Retryable: true, RecordFailure: true, RetryAfter: statusErr.RetryAfter}
	}

	var netErr net.Error
	return ErrorClassification{Retryable: errors.As(err, &netErr), RecordFailure: true}
}

func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// WrapTemporary tags transient failures with domain.ErrTemporary so adapters answer 503.
func WrapTemporary(operation string, err error, classifier ErrorClassifier) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifier == nil {
		classifier = ClassifyHTTPError
	}
	if !classifier(err).Retryable && !IsCircuitOpen(err) {
		return err
	}
	return domain.WrapError(domain.ErrTemporary, operation, err)
}
