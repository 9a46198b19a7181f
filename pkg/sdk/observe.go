package propdex

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels recorded for each Client method.
const (
	opCreate      = "create"
	opCreateBatch = "create_batch"
	opGet         = "get"
	opUpdate      = "update"
	opDelete      = "delete"
	opListByOwner = "list_by_owner"
	opSearch      = "search"
)

// sdkMetrics holds the listing client metrics:
// call counts by outcome, call latency and how many listings each call returned.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	listings   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propdex",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Listing client calls by operation and outcome (ok, not_found, forbidden, invalid, error).",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "propdex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "Listing client call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		listings: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "propdex",
			Subsystem: "sdk",
			Name:      "listings_returned",
			Help:      "Listings returned per successful call.",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.listings); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one,
// so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("register metric: %w", err)
	}
	return nil
}

// outcome classifies an error into the status label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthenticated):
		return "forbidden"
	case errors.Is(err, ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}

// observer logs and measures listing client calls. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records one call. n is the number of listings returned, ignored on error.
// Caller-side outcomes (not found, forbidden, invalid) log at debug; only failures warn.
func (o *observer) observe(op string, start time.Time, n int, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := outcome(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
		if err == nil {
			o.metrics.listings.WithLabelValues(op).Observe(float64(n))
		}
	}

	if o.logger == nil {
		return
	}
	switch status {
	case "ok":
		o.logger.Debug("listing operation completed", "op", op, "duration", dur, "listings", n)
	case "error":
		o.logger.Warn("listing operation failed", "op", op, "duration", dur, "error", err)
	default:
		o.logger.Debug("listing operation rejected", "op", op, "duration", dur, "status", status, "error", err)
	}
}
