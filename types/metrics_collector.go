package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from internal goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better
// modularity.
type MetricsCollector interface {
	CorrectorMetrics
	DispatchMetrics
	BalancerMetrics
	WireMetrics
}

// CorrectorMetrics defines metrics for run-level coordinator operations.
type CorrectorMetrics interface {
	// RecordStateTransition records a run state transition and the time
	// spent in the previous state, in seconds.
	RecordStateTransition(from, to State, duration float64)

	// RecordRunDuration records the total wall time of one run, in seconds.
	RecordRunDuration(duration float64)

	// RecordItemsDispatched records how many work items a run enqueued.
	RecordItemsDispatched(count int)
}

// DispatchMetrics defines metrics for queue and worker-pool operations.
type DispatchMetrics interface {
	// RecordItemProcessed records one completed work item per module.
	RecordItemProcessed(moduleID string, success bool)

	// RecordItemDuration records the processing time of one work item, in
	// seconds, per module.
	RecordItemDuration(moduleID string, duration float64)

	// RecordQueueDepth sets the current dispatch queue depth (gauge).
	RecordQueueDepth(depth int)
}

// BalancerMetrics defines metrics for load-balancer operations.
type BalancerMetrics interface {
	// RecordPoll records one load poll against an endpoint.
	RecordPoll(endpoint string, success bool)

	// RecordSelection records an endpoint selection. degraded is true when
	// the balancer fell back to an unranked registration-order choice.
	RecordSelection(endpoint string, degraded bool)
}

// WireMetrics defines metrics for the line-protocol client.
type WireMetrics interface {
	// RecordRoundTrip records one request/response round trip, in seconds.
	RecordRoundTrip(endpoint string, duration float64, success bool)

	// RecordReconnect records a client reconnect after a transport failure.
	RecordReconnect(endpoint string)
}
