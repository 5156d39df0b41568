// Package metrics exposes the dispatcher's Prometheus instruments.
//
// All Record methods are safe on a nil *Metrics so components can run without
// instrumentation in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dispatch"

// Geocode lookup sources.
const (
	SourceMemory   = "memory"
	SourceAddress  = "address"
	SourceStore    = "store"
	SourceProvider = "provider"
	SourceMiss     = "miss"
)

// Metrics holds all dispatcher metrics.
type Metrics struct {
	registry *prometheus.Registry

	CyclesTotal        *prometheus.CounterVec
	CycleDuration      prometheus.Histogram
	OptimizerAttempts  *prometheus.CounterVec
	GeocodeLookups     *prometheus.CounterVec
	AssignmentsWritten prometheus.Counter
	TasksTotal         *prometheus.CounterVec
	QueueDepth         prometheus.Gauge
	FeedState          *prometheus.GaugeVec
	BreakerState       prometheus.Gauge
}

// New creates the instruments on a private registry with Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Dispatch cycles by outcome",
		},
		[]string{"outcome"},
	)

	m.CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Dispatch cycle duration in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 180},
		},
	)

	m.OptimizerAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_attempts_total",
			Help:      "Route optimizer HTTP attempts by result",
		},
		[]string{"result"},
	)

	m.GeocodeLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_lookups_total",
			Help:      "Geocode resolutions by the layer that answered",
		},
		[]string{"source"},
	)

	m.AssignmentsWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_written_total",
			Help:      "Route stops inserted",
		},
	)

	m.TasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Dispatch tasks by final status",
		},
		[]string{"status"},
	)

	m.QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Dispatch tasks waiting for a worker",
		},
	)

	m.FeedState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_state",
			Help:      "1 for the change feed listener's current state",
		},
		[]string{"state"},
	)

	m.BreakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "optimizer_breaker_state",
			Help:      "Optimizer circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	registry.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.OptimizerAttempts,
		m.GeocodeLookups,
		m.AssignmentsWritten,
		m.TasksTotal,
		m.QueueDepth,
		m.FeedState,
		m.BreakerState,
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordCycle(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.CyclesTotal.WithLabelValues(outcome).Inc()
	m.CycleDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordOptimizerAttempt(result string) {
	if m == nil {
		return
	}
	m.OptimizerAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordGeocode(source string) {
	if m == nil {
		return
	}
	m.GeocodeLookups.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordAssignments(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.AssignmentsWritten.Add(float64(n))
}

func (m *Metrics) RecordTask(status string) {
	if m == nil {
		return
	}
	m.TasksTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

// SetFeedState marks state as current and clears the others.
func (m *Metrics) SetFeedState(state string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		m.FeedState.WithLabelValues(s).Set(0)
	}
	m.FeedState.WithLabelValues(state).Set(1)
}

func (m *Metrics) SetBreakerState(state int) {
	if m == nil {
		return
	}
	m.BreakerState.Set(float64(state))
}
