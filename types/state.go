package types

// State represents the lifecycle state of a single correction run.
//
// States follow a strict forward progression:
//
//	StateIdle → StateInitializing → StateDispatching → StateDraining →
//	StateFinalizing → StatePersisted
//
// There are no backward transitions; every Run starts a fresh progression
// from StateIdle and ends at StatePersisted (or aborts with an error while
// the corrector returns to StateIdle).
type State int

const (
	// StateIdle means no run is in progress.
	StateIdle State = iota

	// StateInitializing means module Init callbacks are running sequentially.
	// Failures in this state are fatal to the run.
	StateInitializing

	// StateDispatching means the producer is enumerating document units and
	// enqueuing one work item per (module, matching unit) pair.
	StateDispatching

	// StateDraining means the worker pool is processing the queue to
	// exhaustion. The coordinator blocks until the drain barrier is reached.
	StateDraining

	// StateFinalizing means module Finish callbacks are running sequentially
	// against the fully-corrected document.
	StateFinalizing

	// StatePersisted means the document has been handed back to its adapter
	// for saving. Terminal.
	StatePersisted
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateInitializing:
		return "Initializing"
	case StateDispatching:
		return "Dispatching"
	case StateDraining:
		return "Draining"
	case StateFinalizing:
		return "Finalizing"
	case StatePersisted:
		return "Persisted"
	default:
		return "Unknown"
	}
}
