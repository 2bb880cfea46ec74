package types

import "errors"

// Sentinel errors shared between the root package and internal packages.
var (
	// ErrNoServerAvailable is returned by the load balancer when every
	// candidate endpoint failed to answer a load poll. Recoverable: callers
	// fall back to an unranked choice in registration order.
	ErrNoServerAvailable = errors.New("no module server available")

	// ErrQueueClosed is returned when enqueuing on a closed dispatch queue.
	ErrQueueClosed = errors.New("dispatch queue closed")

	// ErrModuleIsLocal is returned when a remote-only operation is invoked
	// on a local module.
	ErrModuleIsLocal = errors.New("module is local")

	// ErrUnknownUnit is returned by document adapters when an edit targets
	// a unit ID the document does not contain.
	ErrUnknownUnit = errors.New("unknown unit")
)
