package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/infrastructure/resilience"
)

const (
	DefaultSubject = "adgm.index.rebuild"
	workerGroup    = "index-workers"
	headerCategory = "Adgm-Category"
)

// Queue carries index rebuild requests. Workers share a queue group, so each request is
// handled by exactly one of them.
type Queue struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
	logger   *slog.Logger
}

// Options zero values select the defaults: 2s connect timeout, 2s reconnect wait and 60
// reconnect attempts. The client keeps retrying when the server is not up yet.
type Options struct {
	ConnectTimeout     time.Duration
	ReconnectWait      time.Duration
	MaxReconnects      int
	FailFast           bool
	ResilienceExecutor *resilience.Executor
	Logger             *slog.Logger
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(url, connectOptions(options, logger)...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
		logger:   logger,
	}, nil
}

func connectOptions(options Options, logger *slog.Logger) []nats.Option {
	orDefault := func(d, def time.Duration) time.Duration {
		if d <= 0 {
			return def
		}
		return d
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	return []nats.Option{
		nats.Name("adgm-corporate-agent"),
		nats.Timeout(orDefault(options.ConnectTimeout, 2*time.Second)),
		nats.ReconnectWait(orDefault(options.ReconnectWait, 2*time.Second)),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(!options.FailFast),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Info("nats_closed")
		}),
	}
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishRebuildRequested(ctx context.Context, req domain.RebuildRequest) error {
	msg, err := encodeRebuildRequest(q.subject, req)
	if err != nil {
		return err
	}
	call := func(_ context.Context) error {
		if err := q.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return resilience.WrapTemporary("nats publish", err, classifyNATSError)
	}
	return nil
}

// SubscribeRebuildRequested blocks until ctx is done, then drains the subscription and
// waits for an in-flight rebuild to finish. The handler context is not cancelled by ctx;
// callers bound it themselves. Requests queued before an equivalent rebuild started are
// acknowledged without running again.
func (q *Queue) SubscribeRebuildRequested(ctx context.Context, handler func(context.Context, domain.RebuildRequest) error) error {
	var inflight sync.WaitGroup
	sub, err := q.conn.QueueSubscribe(q.subject, workerGroup, q.rebuildHandler(ctx, newCoalescer(), &inflight, handler))
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", q.subject, err)
	}
	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain: %w", err)
	}
	inflight.Wait()
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func (q *Queue) rebuildHandler(ctx context.Context, seen *coalescer, inflight *sync.WaitGroup, handler func(context.Context, domain.RebuildRequest) error) nats.MsgHandler {
	handlerCtx := context.WithoutCancel(ctx)
	return func(msg *nats.Msg) {
		if ctx.Err() != nil {
			return
		}
		inflight.Add(1)
		defer inflight.Done()

		req, err := decodeRebuildRequest(msg)
		if err != nil {
			q.logger.Error("rebuild_request_invalid", "subject", msg.Subject, "error", err)
			return
		}
		if seen.covered(req) {
			q.logger.Info("rebuild_request_coalesced", "request_id", req.ID, "category", req.Category)
			return
		}

		started := time.Now()
		if err := handler(handlerCtx, req); err != nil {
			q.logger.Error("rebuild_request_failed", "request_id", req.ID, "category", req.Category, "error", err)
			return
		}
		seen.done(req, started)
	}
}

// coalescer remembers the scope and start time of the last successful rebuild. Every
// rebuild replaces the whole index, so only the last one says what the index holds. The
// empty category is a full rebuild and covers every category. Subscription callbacks run
// one at a time, so no locking is needed.
type coalescer struct {
	scope   string
	started time.Time
}

func newCoalescer() *coalescer {
	return &coalescer{}
}

func (c *coalescer) covered(req domain.RebuildRequest) bool {
	if req.RequestedAt.IsZero() || c.started.IsZero() {
		return false
	}
	if c.scope != "" && c.scope != req.Category {
		return false
	}
	return req.RequestedAt.Before(c.started)
}

func (c *coalescer) done(req domain.RebuildRequest, started time.Time) {
	c.scope = req.Category
	c.started = started
}

func encodeRebuildRequest(subject string, req domain.RebuildRequest) (*nats.Msg, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode rebuild request: %w", err)
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, req.ID)
	if req.Category != "" {
		msg.Header.Set(headerCategory, req.Category)
	}
	return msg, nil
}

func decodeRebuildRequest(msg *nats.Msg) (domain.RebuildRequest, error) {
	var req domain.RebuildRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		return domain.RebuildRequest{}, fmt.Errorf("decode rebuild request: %w", err)
	}
	if req.ID == "" {
		req.ID = msg.Header.Get(nats.MsgIdHdr)
	}
	if req.ID == "" {
		return domain.RebuildRequest{}, errors.New("rebuild request without id")
	}
	return req, nil
}

var transientNATSErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrConnectionReconnecting,
	nats.ErrDisconnected,
}

func classifyNATSError(err error) resilience.ErrorClassification {
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	for _, transient := range transientNATSErrors {
		if errors.Is(err, transient) {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}
