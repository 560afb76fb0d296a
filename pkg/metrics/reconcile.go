package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics records snapshot build outcomes.
type ReconcileMetrics struct {
	duration   *prometheus.HistogramVec
	skipped    *prometheus.CounterVec
	cacheHits  prometheus.Counter
	cacheMiss  prometheus.Counter
	ordersSeen *prometheus.CounterVec
}

// NewReconcileMetrics registers the snapshot metrics on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapshot_build_duration_seconds",
		Help:    "Duration of analytics snapshot builds in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"cache"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_records_skipped_total",
		Help: "Sale records dropped during normalization.",
	}, []string{"source", "reason"})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_cache_hits_total",
		Help: "Snapshot requests served from cache.",
	})
	cacheMiss := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_cache_misses_total",
		Help: "Snapshot requests that rebuilt from source records.",
	})
	ordersSeen := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_orders_total",
		Help: "Deduplicated orders folded per snapshot build.",
	}, []string{"source"})
	reg.MustRegister(duration, skipped, cacheHits, cacheMiss, ordersSeen)
	return &ReconcileMetrics{
		duration:   duration,
		skipped:    skipped,
		cacheHits:  cacheHits,
		cacheMiss:  cacheMiss,
		ordersSeen: ordersSeen,
	}
}

// ObserveBuild records how long a snapshot build took. cache is "hit" or "miss".
func (m *ReconcileMetrics) ObserveBuild(cache string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(cache)).Observe(duration.Seconds())
}

// IncSkipped increments the skip counter for the given source and reason.
func (m *ReconcileMetrics) IncSkipped(source, reason string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(source), normalizeLabel(reason)).Inc()
}

// IncCacheHit counts a snapshot served from cache.
func (m *ReconcileMetrics) IncCacheHit() {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.Inc()
}

// IncCacheMiss counts a snapshot rebuilt from source records.
func (m *ReconcileMetrics) IncCacheMiss() {
	if m == nil || m.cacheMiss == nil {
		return
	}
	m.cacheMiss.Inc()
}

// AddOrders counts deduplicated orders attributed to the given source.
func (m *ReconcileMetrics) AddOrders(source string, n int) {
	if m == nil || m.ordersSeen == nil || n <= 0 {
		return
	}
	m.ordersSeen.WithLabelValues(normalizeLabel(source)).Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
