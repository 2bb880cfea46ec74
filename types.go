package gecco

import "github.com/andy-wagner/gecco/types"

// Type aliases re-export the shared types so callers only import the root
// package for normal use. The types package exists so internal packages can
// share these definitions without import cycles.
type (
	// State is the lifecycle state of a correction run.
	State = types.State

	// Endpoint is a network address hosting a remote module server.
	Endpoint = types.Endpoint

	// Module is a pluggable unit of correction logic.
	Module = types.Module

	// UnitKind is the granularity of document substructure a module
	// consumes.
	UnitKind = types.UnitKind

	// Unit is an opaque handle to a document substructure.
	Unit = types.Unit

	// Document is the externally supplied document abstraction.
	Document = types.Document

	// Annotation declares an annotation type a module produces.
	Annotation = types.Annotation

	// Edit is one structural edit to a document.
	Edit = types.Edit

	// EditOp enumerates the structural edit operations.
	EditOp = types.EditOp

	// Result is the outcome a module produced for one unit.
	Result = types.Result

	// Editor exposes the mutation primitives modules apply results with.
	Editor = types.Editor

	// RoundTripper performs one wire round trip against a module server.
	RoundTripper = types.RoundTripper

	// Logger is the leveled key-value logging interface.
	Logger = types.Logger

	// MetricsCollector records operational metrics.
	MetricsCollector = types.MetricsCollector

	// Hooks holds lifecycle event callbacks.
	Hooks = types.Hooks
)

// Re-exported state constants.
const (
	StateIdle         = types.StateIdle
	StateInitializing = types.StateInitializing
	StateDispatching  = types.StateDispatching
	StateDraining     = types.StateDraining
	StateFinalizing   = types.StateFinalizing
	StatePersisted    = types.StatePersisted
)

// Re-exported unit kinds.
const (
	UnitDocument  = types.UnitDocument
	UnitParagraph = types.UnitParagraph
	UnitSentence  = types.UnitSentence
	UnitToken     = types.UnitToken
)

// Re-exported edit operations.
const (
	OpSuggest   = types.OpSuggest
	OpFlagError = types.OpFlagError
	OpSplit     = types.OpSplit
	OpMerge     = types.OpMerge
)

// Unscored is the Result confidence value for unscored suggestions.
const Unscored = types.Unscored
