package types

import "time"

// Result is the outcome a module produced for one unit: an ordered list of
// candidate corrections plus provenance identifying who produced them.
//
// Results are applied to the document as structural edits (see Edit); the
// document adapter decides how to materialize them (e.g. as suggestion
// annotations on the target unit).
type Result struct {
	// Suggestions is the ordered list of candidate replacement strings.
	// The first entry is the module's best candidate.
	Suggestions []string

	// Confidence is the module's confidence in the suggestions, in [0, 1].
	// A negative value means the module did not score its output.
	Confidence float64

	// Set is the annotation set the correction belongs to.
	Set string

	// Class is the correction class (e.g. "nonworderror", "confusible").
	Class string

	// Annotator identifies the module that produced the result.
	Annotator string

	// Timestamp records when the result was produced. The editor stamps it
	// at apply time when left zero.
	Timestamp time.Time
}

// Unscored is the Confidence value for results without a confidence score.
const Unscored float64 = -1
