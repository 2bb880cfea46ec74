package types

import "context"

// Hooks defines callbacks for corrector lifecycle events.
//
// All hooks are optional and invoked synchronously on the goroutine that
// produced the event (the coordinator for state changes, a worker for item
// completion). Implementations should complete quickly and must be safe
// for concurrent calls; OnItemDone fires from every worker.
//
// Hook errors are logged but never fail the run.
type Hooks struct {
	// OnStateChanged is called when the run state transitions.
	OnStateChanged func(ctx context.Context, from, to State) error

	// OnItemDone is called after a work item finishes, with a nil err for
	// success or the per-item failure otherwise.
	OnItemDone func(ctx context.Context, moduleID, unitID string, err error) error

	// OnError is called when a recoverable error occurs outside item
	// processing (e.g. a failed load poll fallback).
	OnError func(ctx context.Context, err error) error
}
