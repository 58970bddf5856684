package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics handles engine metrics and monitoring. A nil *Metrics is valid and
// records nothing, so wiring it is optional for library consumers.
type Metrics struct {
	tickDuration prometheus.Histogram
	alpha        prometheus.Gauge
	nodeCount    prometheus.Gauge
	edgeCount    prometheus.Gauge
	traversals   *prometheus.CounterVec
	ingested     *prometheus.CounterVec
	snapshots    prometheus.Counter
}

// NewMetrics creates a metrics instance registered on the given registerer
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_tick_duration_seconds",
			Help:      "Wall time per layout simulation tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		alpha: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulation_alpha",
			Help:      "Current simulation cooling scalar.",
		}),
		nodeCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Number of nodes in the graph store.",
		}),
		edgeCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Number of edges in the graph store.",
		}),
		traversals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traversals_total",
			Help:      "Traversal queries served, by operation.",
		}, []string{"operation"}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_total",
			Help:      "Catalog payloads ingested, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_recorded_total",
			Help:      "Temporal snapshots recorded.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.tickDuration, m.alpha, m.nodeCount, m.edgeCount,
			m.traversals, m.ingested, m.snapshots,
		)
	}
	return m
}

// ObserveTick records a completed simulation tick
func (m *Metrics) ObserveTick(duration time.Duration, alpha float64) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(duration.Seconds())
	m.alpha.Set(alpha)
}

// SetGraphSize records the current store size
func (m *Metrics) SetGraphSize(nodes, edges int) {
	if m == nil {
		return
	}
	m.nodeCount.Set(float64(nodes))
	m.edgeCount.Set(float64(edges))
}

// RecordTraversal counts a traversal query
func (m *Metrics) RecordTraversal(operation string) {
	if m == nil {
		return
	}
	m.traversals.WithLabelValues(operation).Inc()
}

// RecordIngested counts an ingested payload
func (m *Metrics) RecordIngested(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.ingested.WithLabelValues(kind, outcome).Inc()
}

// RecordSnapshot counts a recorded snapshot
func (m *Metrics) RecordSnapshot() {
	if m == nil {
		return
	}
	m.snapshots.Inc()
}
