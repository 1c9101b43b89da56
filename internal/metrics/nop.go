// Package metrics provides metrics collector implementations.
package metrics

import "github.com/arloliu/pairwise/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	collector := metrics.NewNop()
//	engine, err := pairwise.NewEngine(&cfg, store, matcher, pairwise.WithMetrics(collector))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// TriggerMetrics implementation

// RecordTriggerCheck discards the trigger check metric.
func (n *NopMetrics) RecordTriggerCheck(_ /* fired */ bool) {
	// No-op
}

// RecordStatusTransition discards the status transition metric.
func (n *NopMetrics) RecordStatusTransition(_ /* from */, _ /* to */ types.RoundStatus) {
	// No-op
}

// RecordStatusChangeDropped discards the status change dropped metric.
func (n *NopMetrics) RecordStatusChangeDropped() {
	// No-op
}

// RoundMetrics implementation

// RecordRoundDuration discards the round duration metric.
func (n *NopMetrics) RecordRoundDuration(_ /* duration */ float64, _ /* success */ bool) {
	// No-op
}

// RecordRoundAttempt discards the round attempt metric.
func (n *NopMetrics) RecordRoundAttempt(_ /* success */ bool) {
	// No-op
}

// RecordPopulationSize discards the population size metric.
func (n *NopMetrics) RecordPopulationSize(_ /* count */ int) {
	// No-op
}

// RecordMatchedPairs discards the matched pairs metric.
func (n *NopMetrics) RecordMatchedPairs(_ /* count */ int) {
	// No-op
}

// RecordShadowAbsorptions discards the shadow absorptions metric.
func (n *NopMetrics) RecordShadowAbsorptions(_ /* count */ int) {
	// No-op
}

// RecordUnmatchedUsers discards the unmatched users metric.
func (n *NopMetrics) RecordUnmatchedUsers(_ /* count */ int) {
	// No-op
}

// StoreMetrics implementation

// RecordStoreOperationDuration discards the store operation duration metric.
func (n *NopMetrics) RecordStoreOperationDuration(_ /* operation */ string, _ /* duration */ float64) {
	// No-op
}
