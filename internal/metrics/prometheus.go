package metrics

import (
	"sync"

	"github.com/arloliu/pairwise/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metrics are registered lazily on first use so that constructing a collector
// never panics on duplicate registration during configuration experiments.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Trigger metrics
	triggerChecks     *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	statusDropped     prometheus.Counter

	// Round metrics
	roundDuration     *prometheus.HistogramVec
	roundAttempts     *prometheus.CounterVec
	populationSize    prometheus.Gauge
	matchedPairs      prometheus.Gauge
	shadowAbsorptions prometheus.Gauge
	unmatchedUsers    prometheus.Gauge

	// Store metrics
	storeOpDuration *prometheus.HistogramVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "pairwise" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "pairwise"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.triggerChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "trigger",
			Name:      "checks_total",
			Help:      "Total trigger checks by outcome (fired|skipped).",
		}, []string{"outcome"})

		p.statusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "trigger",
			Name:      "status_transitions_total",
			Help:      "Total round status transitions by from/to status.",
		}, []string{"from", "to"})

		p.statusDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "trigger",
			Name:      "status_changes_dropped_total",
			Help:      "Status notifications dropped because a subscriber was slow.",
		})

		p.roundDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "round",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of matching rounds in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"result"})

		p.roundAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "round",
			Name:      "attempts_total",
			Help:      "Total round attempts by result (success|failure).",
		}, []string{"result"})

		p.populationSize = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "round",
			Name:      "population_size",
			Help:      "Real-user population of the last round snapshot.",
		})

		p.matchedPairs = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "round",
			Name:      "matched_pairs",
			Help:      "Real pairs produced by the last successful round.",
		})

		p.shadowAbsorptions = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "round",
			Name:      "shadow_absorptions",
			Help:      "Users absorbed by the shadow in the last successful round.",
		})

		p.unmatchedUsers = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "round",
			Name:      "unmatched_users",
			Help:      "Users left unmatched by the last successful round.",
		})

		p.storeOpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Latency of store operations in seconds by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		}, []string{"operation"})

		p.reg.MustRegister(p.triggerChecks)
		p.reg.MustRegister(p.statusTransitions)
		p.reg.MustRegister(p.statusDropped)
		p.reg.MustRegister(p.roundDuration)
		p.reg.MustRegister(p.roundAttempts)
		p.reg.MustRegister(p.populationSize)
		p.reg.MustRegister(p.matchedPairs)
		p.reg.MustRegister(p.shadowAbsorptions)
		p.reg.MustRegister(p.unmatchedUsers)
		p.reg.MustRegister(p.storeOpDuration)
	})
}

// TriggerMetrics implementation

// RecordTriggerCheck increments the trigger check counter by outcome.
func (p *PrometheusCollector) RecordTriggerCheck(fired bool) {
	p.ensureRegistered()
	outcome := "skipped"
	if fired {
		outcome = "fired"
	}
	p.triggerChecks.WithLabelValues(outcome).Inc()
}

// RecordStatusTransition increments the status transition counter.
func (p *PrometheusCollector) RecordStatusTransition(from, to types.RoundStatus) {
	p.ensureRegistered()
	p.statusTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

// RecordStatusChangeDropped increments the dropped notification counter.
func (p *PrometheusCollector) RecordStatusChangeDropped() {
	p.ensureRegistered()
	p.statusDropped.Inc()
}

// RoundMetrics implementation

// RecordRoundDuration observes the round duration by result.
func (p *PrometheusCollector) RecordRoundDuration(duration float64, success bool) {
	p.ensureRegistered()
	p.roundDuration.WithLabelValues(resultLabel(success)).Observe(duration)
}

// RecordRoundAttempt increments the round attempt counter by result.
func (p *PrometheusCollector) RecordRoundAttempt(success bool) {
	p.ensureRegistered()
	p.roundAttempts.WithLabelValues(resultLabel(success)).Inc()
}

// RecordPopulationSize sets the population size gauge.
func (p *PrometheusCollector) RecordPopulationSize(count int) {
	p.ensureRegistered()
	p.populationSize.Set(float64(count))
}

// RecordMatchedPairs sets the matched pairs gauge.
func (p *PrometheusCollector) RecordMatchedPairs(count int) {
	p.ensureRegistered()
	p.matchedPairs.Set(float64(count))
}

// RecordShadowAbsorptions sets the shadow absorptions gauge.
func (p *PrometheusCollector) RecordShadowAbsorptions(count int) {
	p.ensureRegistered()
	p.shadowAbsorptions.Set(float64(count))
}

// RecordUnmatchedUsers sets the unmatched users gauge.
func (p *PrometheusCollector) RecordUnmatchedUsers(count int) {
	p.ensureRegistered()
	p.unmatchedUsers.Set(float64(count))
}

// StoreMetrics implementation

// RecordStoreOperationDuration observes store call latency by operation.
func (p *PrometheusCollector) RecordStoreOperationDuration(operation string, duration float64) {
	p.ensureRegistered()
	p.storeOpDuration.WithLabelValues(operation).Observe(duration)
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}
