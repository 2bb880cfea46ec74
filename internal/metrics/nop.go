// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/andy-wagner/gecco/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external metrics
// collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// CorrectorMetrics implementation

// RecordStateTransition discards the state transition metric.
func (n *NopMetrics) RecordStateTransition(_ /* from */, _ /* to */ types.State, _ /* duration */ float64) {
	// No-op
}

// RecordRunDuration discards the run duration metric.
func (n *NopMetrics) RecordRunDuration(_ /* duration */ float64) {
	// No-op
}

// RecordItemsDispatched discards the dispatched item count metric.
func (n *NopMetrics) RecordItemsDispatched(_ /* count */ int) {
	// No-op
}

// DispatchMetrics implementation

// RecordItemProcessed discards the processed item metric.
func (n *NopMetrics) RecordItemProcessed(_ /* moduleID */ string, _ /* success */ bool) {
	// No-op
}

// RecordItemDuration discards the item duration metric.
func (n *NopMetrics) RecordItemDuration(_ /* moduleID */ string, _ /* duration */ float64) {
	// No-op
}

// RecordQueueDepth discards the queue depth metric.
func (n *NopMetrics) RecordQueueDepth(_ /* depth */ int) {
	// No-op
}

// BalancerMetrics implementation

// RecordPoll discards the load poll metric.
func (n *NopMetrics) RecordPoll(_ /* endpoint */ string, _ /* success */ bool) {
	// No-op
}

// RecordSelection discards the endpoint selection metric.
func (n *NopMetrics) RecordSelection(_ /* endpoint */ string, _ /* degraded */ bool) {
	// No-op
}

// WireMetrics implementation

// RecordRoundTrip discards the round trip metric.
func (n *NopMetrics) RecordRoundTrip(_ /* endpoint */ string, _ /* duration */ float64, _ /* success */ bool) {
	// No-op
}

// RecordReconnect discards the reconnect metric.
func (n *NopMetrics) RecordReconnect(_ /* endpoint */ string) {
	// No-op
}
