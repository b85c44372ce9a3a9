package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// resilienceCollectors implements resilience.Observer on top of a service registry.
type resilienceCollectors struct {
	service string

	retriesTotal  *prometheus.CounterVec
	outcomesTotal *prometheus.CounterVec
	breakerState  *prometheus.GaugeVec
}

func newResilienceCollectors(registry *prometheus.Registry, service string) *resilienceCollectors {
	retriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "retries_total",
			Help:      "Retries performed per remote operation.",
		},
		[]string{"service", "operation", "attempt"},
	)
	outcomesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "calls_total",
			Help:      "Remote calls by final outcome.",
		},
		[]string{"service", "operation", "outcome"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_open",
			Help:      "1 while the circuit breaker of an operation is open or half-open.",
		},
		[]string{"service", "operation"},
	)
	registry.MustRegister(retriesTotal, outcomesTotal, breakerState)
	return &resilienceCollectors{
		service:       service,
		retriesTotal:  retriesTotal,
		outcomesTotal: outcomesTotal,
		breakerState:  breakerState,
	}
}

func (c *resilienceCollectors) ObserveRetry(operation string, attempt int) {
	c.retriesTotal.WithLabelValues(c.service, operation, strconv.Itoa(attempt)).Inc()
}

func (c *resilienceCollectors) ObserveBreakerState(operation string, state string) {
	value := 1.0
	if state == "closed" {
		value = 0
	}
	c.breakerState.WithLabelValues(c.service, operation).Set(value)
}

func (c *resilienceCollectors) ObserveOutcome(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.outcomesTotal.WithLabelValues(c.service, operation, outcome).Inc()
}
