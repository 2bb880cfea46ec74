package document

import (
	"fmt"
	"strings"
	"sync"

	"github.com/andy-wagner/gecco/types"
)

// SuggestionRecord is one recorded edit on a unit of a Memory document.
type SuggestionRecord struct {
	// Op is the edit operation that produced the record.
	Op types.EditOp

	// Sources lists the unit IDs consumed by a merge.
	Sources []string

	// Parts carries split parts or the merged text.
	Parts []string

	// Result is the module output attached to the edit.
	Result types.Result
}

// Memory is an in-memory types.Document: ordered sentences of tokens,
// with edits recorded as suggestion annotations per target unit rather
// than applied destructively.
//
// Apply is called under the corrector's mutation lock, but Memory guards
// its state with its own RWMutex anyway so tests and hooks may read
// concurrently with a run.
type Memory struct {
	mu sync.RWMutex

	id        string
	sentences [][]*unit
	declared  []types.Annotation
	records   map[string][]SuggestionRecord
	saved     bool
}

type unit struct {
	id   string
	kind types.UnitKind
	text string
}

func (u *unit) ID() string           { return u.id }
func (u *unit) Kind() types.UnitKind { return u.kind }
func (u *unit) Text() string         { return u.text }

var _ types.Document = (*Memory)(nil)
var _ types.Unit = (*unit)(nil)

// NewMemory builds a document from pre-tokenized sentences. Token IDs are
// "<docID>.s<N>.w<M>" and sentence IDs "<docID>.s<N>", both 1-based.
func NewMemory(id string, sentences [][]string) *Memory {
	m := &Memory{
		id:      id,
		records: make(map[string][]SuggestionRecord),
	}

	for si, tokens := range sentences {
		sent := make([]*unit, 0, len(tokens))
		for wi, text := range tokens {
			sent = append(sent, &unit{
				id:   fmt.Sprintf("%s.s%d.w%d", id, si+1, wi+1),
				kind: types.UnitToken,
				text: text,
			})
		}
		m.sentences = append(m.sentences, sent)
	}

	return m
}

// FromText builds a document from plain text: sentences split on newlines,
// tokens on whitespace, with trailing sentence punctuation separated into
// its own token.
func FromText(id, text string) *Memory {
	var sentences [][]string

	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var tokens []string
		for _, f := range fields {
			trimmed := strings.TrimRight(f, ".,!?;:")
			if trimmed == "" || trimmed == f {
				tokens = append(tokens, f)

				continue
			}
			tokens = append(tokens, trimmed, f[len(trimmed):])
		}
		sentences = append(sentences, tokens)
	}

	return NewMemory(id, sentences)
}

// ID returns the document identifier.
func (m *Memory) ID() string {
	return m.id
}

// Declare registers an annotation type. Duplicate declarations are
// dropped.
func (m *Memory) Declare(ann types.Annotation) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.declared {
		if d == ann {
			return
		}
	}
	m.declared = append(m.declared, ann)
}

// Units returns the document's units of the requested kind in document
// order. UnitDocument yields a single unit whose text is the whole
// document; UnitSentence yields one unit per sentence. Paragraphs are not
// modeled, so UnitParagraph returns nil.
func (m *Memory) Units(kind types.UnitKind) []types.Unit {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch kind {
	case types.UnitToken:
		var out []types.Unit
		for _, sent := range m.sentences {
			for _, u := range sent {
				out = append(out, u)
			}
		}

		return out

	case types.UnitSentence:
		out := make([]types.Unit, 0, len(m.sentences))
		for si, sent := range m.sentences {
			out = append(out, &unit{
				id:   fmt.Sprintf("%s.s%d", m.id, si+1),
				kind: types.UnitSentence,
				text: joinTokens(sent),
			})
		}

		return out

	case types.UnitDocument:
		var parts []string
		for _, sent := range m.sentences {
			parts = append(parts, joinTokens(sent))
		}

		return []types.Unit{&unit{
			id:   m.id,
			kind: types.UnitDocument,
			text: strings.Join(parts, "\n"),
		}}

	default:
		return nil
	}
}

// Apply records one edit as a suggestion on its target unit. Split and
// merge are suggestion-style as well: the proposed parts or merged text
// are recorded, the token structure is left as-is.
//
// Returns:
//   - error: types.ErrUnknownUnit when the target or a merge source does
//     not name a unit of this document
func (m *Memory) Apply(edit types.Edit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasUnit(edit.Target) {
		return fmt.Errorf("%w: %s", types.ErrUnknownUnit, edit.Target)
	}
	for _, src := range edit.Sources {
		if !m.hasUnit(src) {
			return fmt.Errorf("%w: %s", types.ErrUnknownUnit, src)
		}
	}

	m.records[edit.Target] = append(m.records[edit.Target], SuggestionRecord{
		Op:      edit.Op,
		Sources: edit.Sources,
		Parts:   edit.Parts,
		Result:  edit.Result,
	})

	return nil
}

// Save marks the document persisted.
func (m *Memory) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saved = true

	return nil
}

// Annotations returns the recorded edits for one unit, in apply order.
func (m *Memory) Annotations(unitID string) []SuggestionRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.records[unitID]
	out := make([]SuggestionRecord, len(records))
	copy(out, records)

	return out
}

// AnnotationCount returns the total number of recorded edits across all
// units.
func (m *Memory) AnnotationCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, records := range m.records {
		total += len(records)
	}

	return total
}

// Declared returns the registered annotation declarations.
func (m *Memory) Declared() []types.Annotation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Annotation, len(m.declared))
	copy(out, m.declared)

	return out
}

// Saved reports whether Save has been called.
func (m *Memory) Saved() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.saved
}

// TokenCount returns the number of token units.
func (m *Memory) TokenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, sent := range m.sentences {
		total += len(sent)
	}

	return total
}

// hasUnit reports whether id names a token, sentence, or the document
// itself. Callers hold m.mu.
func (m *Memory) hasUnit(id string) bool {
	if id == m.id {
		return true
	}
	for si, sent := range m.sentences {
		if id == fmt.Sprintf("%s.s%d", m.id, si+1) {
			return true
		}
		for _, u := range sent {
			if u.id == id {
				return true
			}
		}
	}

	return false
}

func joinTokens(sent []*unit) string {
	parts := make([]string, 0, len(sent))
	for _, u := range sent {
		parts = append(parts, u.text)
	}

	return strings.Join(parts, " ")
}
