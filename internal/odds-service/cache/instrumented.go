package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics groups the cache collectors. Build it once per registry.
type Metrics struct {
	Ops     *prometheus.CounterVec
	Latency *prometheus.HistogramVec
}

// NewMetrics creates and registers the cache collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odds_cache_operations_total",
			Help: "cache operations by op and result",
		}, []string{"op", "result"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "odds_cache_operation_seconds",
			Help:    "cache operation latency",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"op"}),
	}
	reg.MustRegister(m.Ops, m.Latency)
	return m
}

// Instrumented wraps a Cache with timing, hit/miss counters and debug logs.
// It changes no behaviour of the wrapped cache.
type Instrumented struct {
	next    Cache
	log     *zap.Logger
	metrics *Metrics
}

func NewInstrumented(next Cache, log *zap.Logger, m *Metrics) *Instrumented {
	return &Instrumented{next: next, log: log, metrics: m}
}

func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	v, hit, err := i.next.Get(ctx, key)
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case hit:
		result = "hit"
	}
	i.observe("get", result, key, start, err)
	return v, hit, err
}

func (i *Instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value, ttl)
	result := "ok"
	if err != nil {
		result = "error"
	}
	i.observe("set", result, key, start, err)
	return err
}

func (i *Instrumented) Delete(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	existed, err := i.next.Delete(ctx, key)
	result := "absent"
	switch {
	case err != nil:
		result = "error"
	case existed:
		result = "deleted"
	}
	i.observe("delete", result, key, start, err)
	return existed, err
}

func (i *Instrumented) observe(op, result, key string, start time.Time, err error) {
	elapsed := time.Since(start)
	if i.metrics != nil {
		i.metrics.Ops.WithLabelValues(op, result).Inc()
		i.metrics.Latency.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	if err != nil {
		// the caller decides whether the failure matters
		return
	}
	i.log.Debug("cache op",
		zap.String("op", op),
		zap.String("result", result),
		zap.String("key", key),
		zap.Duration("latency", elapsed),
	)
}
