package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/DenisMSouza/abtest-sub000/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	resolutions     *prometheus.CounterVec
	resolutionTime  prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	sampleDraws     *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	fallbacks       prometheus.Counter
	staleDiscards   prometheus.Counter
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "abtest" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "abtest"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Total completed resolutions by winning source.",
		}, []string{"source"})

		p.resolutionTime = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "resolver",
			Name:      "resolution_duration_seconds",
			Help:      "Latency of resolution passes in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		})

		p.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "resolver",
			Name:      "cache_lookups_total",
			Help:      "Cache tier lookups by tier and outcome.",
		}, []string{"tier", "outcome"})

		p.sampleDraws = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "resolver",
			Name:      "sample_draws_total",
			Help:      "Fresh variant draws by experiment and variant.",
		}, []string{"experiment", "variant"})

		p.transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "manager",
			Name:      "state_transitions_total",
			Help:      "State machine transitions by from/to state.",
		}, []string{"from", "to"})

		p.fallbacks = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "manager",
			Name:      "fallbacks_total",
			Help:      "Failures absorbed by the configured fallback variant.",
		})

		p.staleDiscards = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "manager",
			Name:      "stale_resolutions_total",
			Help:      "Resolution results discarded by last-transition-wins.",
		})

		p.backendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "client",
			Name:      "backend_requests_total",
			Help:      "Backend HTTP requests by operation and result.",
		}, []string{"op", "result"})

		p.backendLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "client",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend HTTP request latency in seconds by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 11), // 5ms .. ~5s
		}, []string{"op"})

		p.reg.MustRegister(
			p.resolutions, p.resolutionTime, p.cacheLookups, p.sampleDraws,
			p.transitions, p.fallbacks, p.staleDiscards,
			p.backendRequests, p.backendLatency,
		)
	})
}

// RecordResolution records a completed resolution.
func (p *PrometheusCollector) RecordResolution(source types.Source, duration float64) {
	p.ensureRegistered()
	p.resolutions.WithLabelValues(source.String()).Inc()
	p.resolutionTime.Observe(duration)
}

// RecordCacheLookup records a cache tier lookup outcome.
func (p *PrometheusCollector) RecordCacheLookup(tier string, hit bool) {
	p.ensureRegistered()
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	p.cacheLookups.WithLabelValues(tier, outcome).Inc()
}

// RecordSampleDraw records a fresh variant draw.
func (p *PrometheusCollector) RecordSampleDraw(experimentID, variant string) {
	p.ensureRegistered()
	p.sampleDraws.WithLabelValues(experimentID, variant).Inc()
}

// RecordStateTransition records a state machine transition.
func (p *PrometheusCollector) RecordStateTransition(from, to types.State) {
	p.ensureRegistered()
	p.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

// RecordFallback records a fallback substitution.
func (p *PrometheusCollector) RecordFallback() {
	p.ensureRegistered()
	p.fallbacks.Inc()
}

// RecordStaleResolution records a discarded stale resolution.
func (p *PrometheusCollector) RecordStaleResolution() {
	p.ensureRegistered()
	p.staleDiscards.Inc()
}

// RecordBackendRequest records one backend HTTP round trip.
func (p *PrometheusCollector) RecordBackendRequest(op string, success bool, duration float64) {
	p.ensureRegistered()
	result := "failure"
	if success {
		result = "success"
	}
	p.backendRequests.WithLabelValues(op, result).Inc()
	p.backendLatency.WithLabelValues(op).Observe(duration)
}
