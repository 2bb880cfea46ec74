package types

import "context"

// RoundTripper performs one request/response round trip against a remote
// module server. Implemented by wire.Client.
//
// Implementations are not required to be safe for concurrent use; the
// corrector gives every worker a private round tripper per endpoint.
type RoundTripper interface {
	// Communicate sends one single-line message and blocks until the
	// single-line response arrives. The message must not contain a newline.
	Communicate(ctx context.Context, msg string) (string, error)
}

// Module is a pluggable unit of correction logic.
//
// A module declares the unit granularity it consumes and whether it runs
// in-process or on remote servers, and implements the callbacks the
// corrector invokes around and during a run. New correction strategies are
// added by implementing this interface; the scheduler never changes.
//
// Locality invariant: Local() == true exactly when Endpoints() is empty.
// Corrector.Register rejects modules violating it.
//
// Run and RunRemote are invoked concurrently from multiple workers for
// different units and must only touch the shared document through the
// Editor. HandleRequest runs on the module server and is a pure function
// of the message; it must not assume access to the original document.
type Module interface {
	// ID returns the module identifier, unique within a corrector.
	ID() string

	// Unit returns the granularity of input the module consumes.
	Unit() UnitKind

	// Local reports whether the module executes in-process.
	Local() bool

	// Endpoints returns the candidate servers offering this module, in
	// registration order. Empty for local modules.
	Endpoints() []Endpoint

	// Init prepares the module on the document, typically declaring the
	// annotation types it will produce. Called sequentially before any
	// work item is dispatched; an error aborts the run.
	Init(doc Document) error

	// Run executes the module in-process on one unit, applying any results
	// through the editor.
	Run(ctx context.Context, unit Unit, editor Editor) error

	// RunRemote executes the module against a remote server through rt,
	// applying any results through the editor.
	RunRemote(ctx context.Context, rt RoundTripper, unit Unit, editor Editor) error

	// HandleRequest serves one client message on the module server and
	// returns the single-line response payload.
	HandleRequest(msg string) (string, error)

	// Finish post-processes the fully-corrected document. Called
	// sequentially after the drain barrier; errors are logged and counted
	// but do not abort the run.
	Finish(doc Document) error
}
