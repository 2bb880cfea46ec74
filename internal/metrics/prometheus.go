package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andy-wagner/gecco/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metric families are created lazily on first use so that constructing the
// collector never panics on duplicate registration in tests.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Corrector metrics
	stateTransitions *prometheus.CounterVec
	stateDuration    *prometheus.HistogramVec
	runDuration      prometheus.Histogram
	itemsDispatched  prometheus.Counter

	// Dispatch metrics
	itemsProcessed *prometheus.CounterVec
	itemDuration   *prometheus.HistogramVec
	queueDepth     prometheus.Gauge

	// Balancer metrics
	polls      *prometheus.CounterVec
	selections *prometheus.CounterVec

	// Wire metrics
	roundTrips    *prometheus.CounterVec
	roundTripTime *prometheus.HistogramVec
	reconnects    *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "gecco" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "gecco"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "corrector",
			Name:      "state_transitions_total",
			Help:      "Total run state transitions by from/to state.",
		}, []string{"from", "to"})

		p.stateDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "corrector",
			Name:      "state_duration_seconds",
			Help:      "Time spent in each run state in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms .. ~4.4m
		}, []string{"state"})

		p.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "corrector",
			Name:      "run_duration_seconds",
			Help:      "Total wall time of one document run in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		})

		p.itemsDispatched = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "corrector",
			Name:      "items_dispatched_total",
			Help:      "Total work items enqueued across runs.",
		})

		p.itemsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "dispatch",
			Name:      "items_processed_total",
			Help:      "Total processed work items by module and result.",
		}, []string{"module", "result"})

		p.itemDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "dispatch",
			Name:      "item_duration_seconds",
			Help:      "Processing time per work item in seconds by module.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"module"})

		p.queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "dispatch",
			Name:      "queue_depth",
			Help:      "Current dispatch queue depth.",
		})

		p.polls = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "balancer",
			Name:      "polls_total",
			Help:      "Total load polls by endpoint and result.",
		}, []string{"endpoint", "result"})

		p.selections = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "balancer",
			Name:      "selections_total",
			Help:      "Total endpoint selections by endpoint and mode (balanced|degraded).",
		}, []string{"endpoint", "mode"})

		p.roundTrips = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "wire",
			Name:      "round_trips_total",
			Help:      "Total client round trips by endpoint and result.",
		}, []string{"endpoint", "result"})

		p.roundTripTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "wire",
			Name:      "round_trip_seconds",
			Help:      "Client round trip latency in seconds by endpoint.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		}, []string{"endpoint"})

		p.reconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "wire",
			Name:      "reconnects_total",
			Help:      "Total client reconnects after transport failures by endpoint.",
		}, []string{"endpoint"})

		p.reg.MustRegister(p.stateTransitions)
		p.reg.MustRegister(p.stateDuration)
		p.reg.MustRegister(p.runDuration)
		p.reg.MustRegister(p.itemsDispatched)
		p.reg.MustRegister(p.itemsProcessed)
		p.reg.MustRegister(p.itemDuration)
		p.reg.MustRegister(p.queueDepth)
		p.reg.MustRegister(p.polls)
		p.reg.MustRegister(p.selections)
		p.reg.MustRegister(p.roundTrips)
		p.reg.MustRegister(p.roundTripTime)
		p.reg.MustRegister(p.reconnects)
	})
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}

// CorrectorMetrics implementation

// RecordStateTransition counts the transition and observes time spent in the
// previous state.
func (p *PrometheusCollector) RecordStateTransition(from, to types.State, duration float64) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
	p.stateDuration.WithLabelValues(from.String()).Observe(duration)
}

// RecordRunDuration observes the total run duration.
func (p *PrometheusCollector) RecordRunDuration(duration float64) {
	p.ensureRegistered()
	p.runDuration.Observe(duration)
}

// RecordItemsDispatched adds to the dispatched item counter.
func (p *PrometheusCollector) RecordItemsDispatched(count int) {
	p.ensureRegistered()
	p.itemsDispatched.Add(float64(count))
}

// DispatchMetrics implementation

// RecordItemProcessed counts one processed item by module and result.
func (p *PrometheusCollector) RecordItemProcessed(moduleID string, success bool) {
	p.ensureRegistered()
	p.itemsProcessed.WithLabelValues(moduleID, resultLabel(success)).Inc()
}

// RecordItemDuration observes per-item processing time by module.
func (p *PrometheusCollector) RecordItemDuration(moduleID string, duration float64) {
	p.ensureRegistered()
	p.itemDuration.WithLabelValues(moduleID).Observe(duration)
}

// RecordQueueDepth sets the queue depth gauge.
func (p *PrometheusCollector) RecordQueueDepth(depth int) {
	p.ensureRegistered()
	p.queueDepth.Set(float64(depth))
}

// BalancerMetrics implementation

// RecordPoll counts one load poll by endpoint and result.
func (p *PrometheusCollector) RecordPoll(endpoint string, success bool) {
	p.ensureRegistered()
	p.polls.WithLabelValues(endpoint, resultLabel(success)).Inc()
}

// RecordSelection counts one endpoint selection by mode.
func (p *PrometheusCollector) RecordSelection(endpoint string, degraded bool) {
	p.ensureRegistered()
	mode := "balanced"
	if degraded {
		mode = "degraded"
	}
	p.selections.WithLabelValues(endpoint, mode).Inc()
}

// WireMetrics implementation

// RecordRoundTrip counts and times one client round trip.
func (p *PrometheusCollector) RecordRoundTrip(endpoint string, duration float64, success bool) {
	p.ensureRegistered()
	p.roundTrips.WithLabelValues(endpoint, resultLabel(success)).Inc()
	p.roundTripTime.WithLabelValues(endpoint).Observe(duration)
}

// RecordReconnect counts one client reconnect.
func (p *PrometheusCollector) RecordReconnect(endpoint string) {
	p.ensureRegistered()
	p.reconnects.WithLabelValues(endpoint).Inc()
}
