package document

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andy-wagner/gecco/types"
)

func TestFromTextSegmentation(t *testing.T) {
	doc := FromText("doc-1", "Dit is een zin.\nNog een zin!")

	tokens := doc.Units(types.UnitToken)
	texts := make([]string, 0, len(tokens))
	for _, u := range tokens {
		texts = append(texts, u.Text())
	}
	require.Equal(t, []string{"Dit", "is", "een", "zin", ".", "Nog", "een", "zin", "!"}, texts)

	require.Equal(t, "doc-1.s1.w1", tokens[0].ID())
	require.Equal(t, types.UnitToken, tokens[0].Kind())
	require.Equal(t, 9, doc.TokenCount())

	sentences := doc.Units(types.UnitSentence)
	require.Len(t, sentences, 2)
	require.Equal(t, "Dit is een zin .", sentences[0].Text())
	require.Equal(t, "doc-1.s2", sentences[1].ID())
}

func TestUnitsDocumentKindIsSingle(t *testing.T) {
	doc := NewMemory("doc-2", [][]string{{"hallo", "wereld"}, {"tweede", "zin"}})

	units := doc.Units(types.UnitDocument)
	require.Len(t, units, 1)
	require.Equal(t, "doc-2", units[0].ID())
	require.Equal(t, types.UnitDocument, units[0].Kind())
	require.Equal(t, "hallo wereld\ntweede zin", units[0].Text())
}

func TestApplyRecordsSuggestions(t *testing.T) {
	doc := NewMemory("doc-3", [][]string{{"een", "fout", "woord"}})

	err := doc.Apply(types.Edit{
		Op:     types.OpSuggest,
		Target: "doc-3.s1.w2",
		Result: types.Result{
			Suggestions: []string{"goed", "beter"},
			Class:       "nonworderror",
			Annotator:   "lexicon",
		},
	})
	require.NoError(t, err)

	records := doc.Annotations("doc-3.s1.w2")
	require.Len(t, records, 1)
	require.Equal(t, types.OpSuggest, records[0].Op)
	require.Equal(t, []string{"goed", "beter"}, records[0].Result.Suggestions)
	require.Empty(t, doc.Annotations("doc-3.s1.w1"))
}

func TestApplySplitAndMerge(t *testing.T) {
	doc := NewMemory("doc-4", [][]string{{"wel", "licht", "aaneen"}})

	err := doc.Apply(types.Edit{
		Op:     types.OpSplit,
		Target: "doc-4.s1.w3",
		Parts:  []string{"aan", "een"},
		Result: types.Result{Class: "runonerror"},
	})
	require.NoError(t, err)

	err = doc.Apply(types.Edit{
		Op:      types.OpMerge,
		Target:  "doc-4.s1.w1",
		Sources: []string{"doc-4.s1.w1", "doc-4.s1.w2"},
		Parts:   []string{"wellicht"},
		Result:  types.Result{Class: "spliterror"},
	})
	require.NoError(t, err)

	split := doc.Annotations("doc-4.s1.w3")
	require.Len(t, split, 1)
	require.Equal(t, []string{"aan", "een"}, split[0].Parts)

	merge := doc.Annotations("doc-4.s1.w1")
	require.Len(t, merge, 1)
	require.Equal(t, []string{"doc-4.s1.w1", "doc-4.s1.w2"}, merge[0].Sources)
	require.Equal(t, []string{"wellicht"}, merge[0].Parts)
	require.Equal(t, 2, doc.AnnotationCount())
}

func TestApplyUnknownUnit(t *testing.T) {
	doc := NewMemory("doc-5", [][]string{{"woord"}})

	err := doc.Apply(types.Edit{Op: types.OpSuggest, Target: "doc-5.s9.w9"})
	require.ErrorIs(t, err, types.ErrUnknownUnit)

	err = doc.Apply(types.Edit{
		Op:      types.OpMerge,
		Target:  "doc-5.s1.w1",
		Sources: []string{"doc-5.s1.w1", "doc-5.s1.w2"},
	})
	require.ErrorIs(t, err, types.ErrUnknownUnit)
}

func TestDeclareAndSave(t *testing.T) {
	doc := NewMemory("doc-6", [][]string{{"a"}})

	ann := types.Annotation{Type: "correction", Set: "spelling-set"}
	doc.Declare(ann)
	doc.Declare(ann)
	require.Equal(t, []types.Annotation{ann}, doc.Declared())

	require.False(t, doc.Saved())
	require.NoError(t, doc.Save())
	require.True(t, doc.Saved())
}
