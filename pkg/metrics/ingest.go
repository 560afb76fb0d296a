package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics records sale-record ingest outcomes.
type IngestMetrics struct {
	ingested *prometheus.CounterVec
	failures *prometheus.CounterVec
	flushes  prometheus.Counter
}

// NewIngestMetrics registers the ingest metrics on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	ingested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_records_total",
		Help: "Sale records accepted per source.",
	}, []string{"source"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_failures_total",
		Help: "Sale records rejected per source.",
	}, []string{"source"})
	flushes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_flushes_total",
		Help: "Buffered write flushes to the database.",
	})
	reg.MustRegister(ingested, failures, flushes)
	return &IngestMetrics{
		ingested: ingested,
		failures: failures,
		flushes:  flushes,
	}
}

// IncIngested increments the accepted counter for the named source.
func (m *IngestMetrics) IncIngested(source string) {
	if m == nil || m.ingested == nil {
		return
	}
	m.ingested.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncFailure increments the rejected counter for the named source.
func (m *IngestMetrics) IncFailure(source string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncFlush counts one buffered flush.
func (m *IngestMetrics) IncFlush() {
	if m == nil || m.flushes == nil {
		return
	}
	m.flushes.Inc()
}
