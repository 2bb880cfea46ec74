package types

// UnitKind is the granularity of document substructure a module consumes.
type UnitKind int

const (
	// UnitDocument addresses the whole document as a single unit.
	UnitDocument UnitKind = iota

	// UnitParagraph addresses one paragraph.
	UnitParagraph

	// UnitSentence addresses one sentence.
	UnitSentence

	// UnitToken addresses one token (word or punctuation).
	UnitToken
)

// String returns the string representation of the unit kind.
func (k UnitKind) String() string {
	switch k {
	case UnitDocument:
		return "document"
	case UnitParagraph:
		return "paragraph"
	case UnitSentence:
		return "sentence"
	case UnitToken:
		return "token"
	default:
		return "unknown"
	}
}

// Unit is an opaque handle to a document substructure of a given kind.
//
// A unit handle is only valid while the owning document is alive. Units are
// read-only views; all mutation goes through the Editor primitives.
type Unit interface {
	// ID returns the unit's identifier, unique within its document.
	ID() string

	// Kind returns the unit's granularity.
	Kind() UnitKind

	// Text returns the unit's current surface text.
	Text() string
}

// Annotation declares an annotation type a module will produce on a
// document, scoped to an annotation set.
type Annotation struct {
	Type string
	Set  string
}

// EditOp enumerates the structural edits the core can apply to a document.
type EditOp int

const (
	// OpSuggest attaches correction suggestions to the target unit.
	OpSuggest EditOp = iota

	// OpFlagError marks the target unit as erroneous without suggesting a
	// replacement.
	OpFlagError

	// OpSplit suggests splitting the target unit into Parts.
	OpSplit

	// OpMerge suggests merging Sources into the single text in Parts[0].
	OpMerge
)

// String returns the string representation of the edit operation.
func (op EditOp) String() string {
	switch op {
	case OpSuggest:
		return "suggest"
	case OpFlagError:
		return "flag_error"
	case OpSplit:
		return "split"
	case OpMerge:
		return "merge"
	default:
		return "unknown"
	}
}

// Edit is one structural edit to a document. Edits are built by the editor
// primitives and handed to Document.Apply as a single atomic operation;
// the document adapter must apply the whole edit or none of it.
type Edit struct {
	// Op selects the edit operation.
	Op EditOp

	// Target is the ID of the unit the edit applies to. For OpMerge it is
	// the first of Sources.
	Target string

	// Sources lists the unit IDs consumed by OpMerge, in document order.
	Sources []string

	// Parts carries the replacement texts for OpSplit, or the single merged
	// text for OpMerge.
	Parts []string

	// Result carries the suggestions and provenance attached by the edit.
	Result Result
}

// Document is the externally supplied structured-document abstraction the
// corrector operates on. The core never owns the document; it only mutates
// it through Apply during the processing window of one run.
//
// Contract for Units: the returned slice iterates units of the requested
// kind in document order. Units(UnitDocument) returns exactly one unit
// representing the whole document, so document-level modules receive a
// single work item per run.
//
// Apply is only ever invoked under the run's mutation lock; adapters do not
// need their own synchronization for it, though they may add some to allow
// concurrent readers.
type Document interface {
	// Declare registers an annotation type the caller will produce.
	// Declaring the same annotation twice is a no-op.
	Declare(ann Annotation)

	// Units returns the document's units of the given kind, in order.
	Units(kind UnitKind) []Unit

	// Apply performs one structural edit.
	Apply(edit Edit) error

	// Save persists the document through its owning store.
	Save() error
}

// Editor exposes the mutation primitives modules use to land results on
// the shared document. Every method acquires the run's mutation lock for
// the duration of the underlying Apply call only; module analysis happens
// outside the lock.
//
// Editors are safe for concurrent use by all workers of a run.
type Editor interface {
	// AddSuggestions attaches res.Suggestions to the unit.
	AddSuggestions(unit Unit, res Result) error

	// FlagError marks the unit as erroneous.
	FlagError(unit Unit, res Result) error

	// SuggestSplit suggests replacing the unit with parts.
	SuggestSplit(unit Unit, parts []string, res Result) error

	// SuggestMerge suggests replacing units (in document order) with the
	// single merged text.
	SuggestMerge(units []Unit, merged string, res Result) error
}
