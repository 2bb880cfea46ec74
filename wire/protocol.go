package wire

import "errors"

// LoadQuery is the reserved request payload answered by the server with a
// numeric load indicator instead of being passed to the module handler.
// Module payloads must not collide with it.
const LoadQuery = "%%load%%"

// Sentinel errors of the wire layer.
var (
	// ErrEmbeddedNewline is returned when a payload contains a bare newline
	// and therefore cannot be framed as a single protocol line.
	ErrEmbeddedNewline = errors.New("wire: payload contains embedded newline")

	// ErrClientClosed is returned by Communicate after Close.
	ErrClientClosed = errors.New("wire: client closed")

	// ErrServerAlreadyStarted is returned when Start is called twice.
	ErrServerAlreadyStarted = errors.New("wire: server already started")

	// ErrServerStopped is returned when starting a server that was stopped.
	ErrServerStopped = errors.New("wire: server stopped")
)

// maxLineBytes bounds a single protocol line. Lines beyond this are a
// protocol violation and fail the connection.
const maxLineBytes = 4 << 20
