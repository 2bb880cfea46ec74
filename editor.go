package gecco

import (
	"fmt"
	"sync"
	"time"

	"github.com/andy-wagner/gecco/types"
)

// editor is the run-scoped implementation of types.Editor. One mutex per
// run serializes every structural edit to the shared document; a module's
// analysis (local computation or remote round trip) happens outside the
// lock, only the Apply call runs inside it.
type editor struct {
	mu  sync.Mutex
	doc types.Document

	// now is stubbed in tests.
	now func() time.Time
}

var _ types.Editor = (*editor)(nil)

func newEditor(doc types.Document) *editor {
	return &editor{
		doc: doc,
		now: time.Now,
	}
}

// apply stamps the provenance timestamp if unset and performs the edit
// under the mutation lock.
func (e *editor) apply(edit types.Edit) error {
	if edit.Result.Timestamp.IsZero() {
		edit.Result.Timestamp = e.now()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.doc.Apply(edit)
}

// AddSuggestions attaches res.Suggestions to the unit.
func (e *editor) AddSuggestions(unit types.Unit, res types.Result) error {
	return e.apply(types.Edit{
		Op:     types.OpSuggest,
		Target: unit.ID(),
		Result: res,
	})
}

// FlagError marks the unit as erroneous.
func (e *editor) FlagError(unit types.Unit, res types.Result) error {
	return e.apply(types.Edit{
		Op:     types.OpFlagError,
		Target: unit.ID(),
		Result: res,
	})
}

// SuggestSplit suggests replacing the unit with parts.
func (e *editor) SuggestSplit(unit types.Unit, parts []string, res types.Result) error {
	if len(parts) < 2 {
		return fmt.Errorf("gecco: split needs at least 2 parts, got %d", len(parts))
	}

	return e.apply(types.Edit{
		Op:     types.OpSplit,
		Target: unit.ID(),
		Parts:  parts,
		Result: res,
	})
}

// SuggestMerge suggests replacing units (in document order) with the
// single merged text.
func (e *editor) SuggestMerge(units []types.Unit, merged string, res types.Result) error {
	if len(units) < 2 {
		return fmt.Errorf("gecco: merge needs at least 2 units, got %d", len(units))
	}

	sources := make([]string, 0, len(units))
	for _, u := range units {
		sources = append(sources, u.ID())
	}

	return e.apply(types.Edit{
		Op:      types.OpMerge,
		Target:  sources[0],
		Sources: sources,
		Parts:   []string{merged},
		Result:  res,
	})
}
