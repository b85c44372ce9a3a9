package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrorClassification tells the executor how to treat a failed attempt. RetryAfter carries a
// server-provided delay hint, such as an HTTP Retry-After header.
type ErrorClassification struct {
	Retryable     bool
	RecordFailure bool
	RetryAfter    time.Duration
}

type ErrorClassifier func(err error) ErrorClassification

// Observer receives retry and breaker events, typically to feed metrics. Operations are
// reported without their scope suffix.
type Observer interface {
	ObserveRetry(operation string, attempt int)
	ObserveBreakerState(operation string, state string)
	ObserveOutcome(operation string, err error)
}

// Executor runs remote calls with retries and one circuit breaker per operation key.
// A key may carry a scope after a slash ("reference.fetch/www.adgm.com") so that one
// failing host does not open the breaker for the others.
type Executor struct {
	cfg      Config
	observer Observer
	logger   *slog.Logger
	jitter   func() float64

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewExecutor(cfg Config) *Executor {
	return &Executor{
		cfg:      cfg.normalize(),
		logger:   slog.Default(),
		jitter:   rand.Float64,
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

// WithObserver and WithLogger must be called before the executor is shared between goroutines.
func (e *Executor) WithObserver(observer Observer) *Executor {
	e.observer = observer
	return e
}

func (e *Executor) WithLogger(logger *slog.Logger) *Executor {
	if logger != nil {
		e.logger = logger
	}
	return e
}

func (e *Executor) Execute(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classifier ErrorClassifier,
) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	key := strings.TrimSpace(operation)
	if key == "" {
		key = "unknown"
	}
	if classifier == nil {
		classifier = defaultClassifier
	}

	var err error
	if e.cfg.BreakerEnabled {
		_, err = e.breaker(key, classifier).Execute(func() (struct{}, error) {
			return struct{}{}, e.retry(ctx, key, fn, classifier)
		})
	} else {
		err = e.retry(ctx, key, fn, classifier)
	}
	if e.observer != nil {
		e.observer.ObserveOutcome(family(key), err)
	}
	return err
}

func (e *Executor) retry(ctx context.Context, key string, fn func(context.Context) error, classifier ErrorClassifier) error {
	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		class := classifier(err)
		if !class.Retryable || attempt >= e.cfg.RetryMaxAttempts {
			return err
		}

		wait := e.wait(attempt, class.RetryAfter)
		e.logger.Warn("retry_attempt",
			"operation", key,
			"attempt", attempt,
			"max_attempts", e.cfg.RetryMaxAttempts,
			"backoff_ms", float64(wait.Microseconds())/1000.0,
			"error", err,
		)
		if e.observer != nil {
			e.observer.ObserveRetry(family(key), attempt)
		}
		if !sleep(ctx, wait) {
			return err
		}
	}
}

// wait grows the backoff exponentially per attempt, spreads it by the jitter fraction and
// never goes below a server hint. The result is capped at RetryMaxBackoff.
func (e *Executor) wait(attempt int, hint time.Duration) time.Duration {
	backoff := float64(e.cfg.RetryInitialBackoff)
	for i := 1; i < attempt; i++ {
		backoff *= e.cfg.RetryMultiplier
		if backoff >= float64(e.cfg.RetryMaxBackoff) {
			backoff = float64(e.cfg.RetryMaxBackoff)
			break
		}
	}
	if e.cfg.RetryJitter > 0 {
		backoff -= backoff * e.cfg.RetryJitter * e.jitter()
	}

	wait := time.Duration(backoff)
	if hint > wait {
		wait = hint
	}
	return min(wait, e.cfg.RetryMaxBackoff)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (e *Executor) breaker(key string, classifier ErrorClassifier) *gobreaker.CircuitBreaker[struct{}] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[key]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        key,
		MaxRequests: e.cfg.BreakerHalfOpenMaxCalls,
		Timeout:     e.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= e.cfg.BreakerMinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= e.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classifier(err).RecordFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
			if e.observer != nil {
				e.observer.ObserveBreakerState(family(name), to.String())
			}
		},
	})
	e.breakers[key] = cb
	return cb
}

func family(key string) string {
	if i := strings.IndexByte(key, '/'); i > 0 {
		return key[:i]
	}
	return key
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func defaultClassifier(error) ErrorClassification {
	return ErrorClassification{RecordFailure: true}
}
