package fetchcache

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics instruments the cache. All record methods tolerate a nil
// receiver and an unregistered state, so wiring is optional.
type Metrics struct {
	mu         sync.RWMutex
	registered bool

	hitsTotal          metric.Int64Counter
	missesTotal        metric.Int64Counter
	fetchesTotal       metric.Int64Counter
	invalidationsTotal metric.Int64Counter
}

// NewMetrics creates an unregistered instrument set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsName returns the metrics group name.
func (m *Metrics) MetricsName() string {
	return "fetchcache"
}

// RegisterMetrics registers all cache instruments with the Meter.
func (m *Metrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	var err error
	m.hitsTotal, err = meter.Int64Counter(
		"fetchcache_hits_total",
		metric.WithDescription("Collection cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	m.missesTotal, err = meter.Int64Counter(
		"fetchcache_misses_total",
		metric.WithDescription("Collection cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return err
	}

	m.fetchesTotal, err = meter.Int64Counter(
		"fetchcache_fetches_total",
		metric.WithDescription("Network fetches actually performed"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	m.invalidationsTotal, err = meter.Int64Counter(
		"fetchcache_invalidations_total",
		metric.WithDescription("Subject invalidations"),
		metric.WithUnit("{invalidation}"),
	)
	if err != nil {
		return err
	}

	m.registered = true
	return nil
}

// IsRegistered reports whether RegisterMetrics completed.
func (m *Metrics) IsRegistered() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registered
}

// RecordHit counts a cache hit.
func (m *Metrics) RecordHit(ctx context.Context, subject string) {
	if !m.IsRegistered() {
		return
	}
	m.hitsTotal.Add(ctx, 1, metric.WithAttributes(subjectAttr(subject)))
}

// RecordMiss counts a cache miss.
func (m *Metrics) RecordMiss(ctx context.Context, subject string) {
	if !m.IsRegistered() {
		return
	}
	m.missesTotal.Add(ctx, 1, metric.WithAttributes(subjectAttr(subject)))
}

// RecordFetch counts a fetch that actually reached the network.
func (m *Metrics) RecordFetch(ctx context.Context, subject string) {
	if !m.IsRegistered() {
		return
	}
	m.fetchesTotal.Add(ctx, 1, metric.WithAttributes(subjectAttr(subject)))
}

// RecordInvalidation counts a subject invalidation.
func (m *Metrics) RecordInvalidation(ctx context.Context, subject string) {
	if !m.IsRegistered() {
		return
	}
	m.invalidationsTotal.Add(ctx, 1, metric.WithAttributes(subjectAttr(subject)))
}

func subjectAttr(subject string) attribute.KeyValue {
	return attribute.String("subject", normalizeSubject(subject))
}
