package module

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andy-wagner/gecco/types"
)

const testModel = "wereld\t100\n" +
	"werelden\t10\n" +
	"weelde\t50\n" +
	"woord\t200\n" +
	"woorden\t80\n" +
	"zeldzaam\t5\n"

func newTestLexicon(t *testing.T, cfg LexiconConfig) *Lexicon {
	t.Helper()

	lex, err := NewLexiconFromReader("lexicon", cfg, strings.NewReader(testModel))
	require.NoError(t, err)

	return lex
}

// recordingEditor captures suggestion results per unit ID.
type recordingEditor struct {
	mu      sync.Mutex
	applied map[string]types.Result
}

func newRecordingEditor() *recordingEditor {
	return &recordingEditor{applied: make(map[string]types.Result)}
}

func (e *recordingEditor) AddSuggestions(unit types.Unit, res types.Result) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applied[unit.ID()] = res

	return nil
}

func (e *recordingEditor) FlagError(unit types.Unit, res types.Result) error {
	return e.AddSuggestions(unit, res)
}

func (e *recordingEditor) SuggestSplit(unit types.Unit, _ []string, res types.Result) error {
	return e.AddSuggestions(unit, res)
}

func (e *recordingEditor) SuggestMerge(units []types.Unit, _ string, res types.Result) error {
	return e.AddSuggestions(units[0], res)
}

type fakeUnit struct {
	id   string
	text string
}

func (u fakeUnit) ID() string           { return u.id }
func (u fakeUnit) Kind() types.UnitKind { return types.UnitToken }
func (u fakeUnit) Text() string         { return u.text }

func TestLexiconSuggestOrdering(t *testing.T) {
	lex := newTestLexicon(t, LexiconConfig{})

	// Both at distance 1: "woord" (freq 200) before "woorden" (freq 80).
	require.Equal(t, []string{"woord", "woorden"}, lex.Suggest("woorde"))

	// Distance beats frequency: "woorden" at distance 1 before the more
	// frequent "woord" at distance 2.
	require.Equal(t, []string{"woorden", "woord"}, lex.Suggest("woorded"))
}

func TestLexiconSuggestThresholds(t *testing.T) {
	tests := []struct {
		name  string
		cfg   LexiconConfig
		token string
		want  []string
	}{
		{
			name:  "token shorter than min length",
			cfg:   LexiconConfig{},
			token: "wrld",
			want:  nil,
		},
		{
			name:  "token longer than max length",
			cfg:   LexiconConfig{MaxLength: 6},
			token: "werelden",
			want:  nil,
		},
		{
			name:  "known token is left alone",
			cfg:   LexiconConfig{},
			token: "wereld",
			want:  nil,
		},
		{
			name:  "frequency threshold filters variants",
			cfg:   LexiconConfig{MinFreq: 100},
			token: "woorde",
			want:  []string{"woord"},
		},
		{
			name:  "suggestion cap",
			cfg:   LexiconConfig{MaxSuggestions: 1},
			token: "woorde",
			want:  []string{"woord"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lex := newTestLexicon(t, tt.cfg)
			require.Equal(t, tt.want, lex.Suggest(tt.token))
		})
	}
}

func TestLexiconCacheHit(t *testing.T) {
	lex := newTestLexicon(t, LexiconConfig{CacheSize: 16})

	first := lex.Suggest("woorde")
	require.NotEmpty(t, first)
	require.Equal(t, first, lex.Suggest("woorde"))
	require.Equal(t, 1, lex.cache.Len())
}

func TestLexiconReversedModel(t *testing.T) {
	model := "100;wereld\n50;weelde\n"
	lex, err := NewLexiconFromReader("lexicon", LexiconConfig{
		Delimiter: ";",
		Reversed:  true,
	}, strings.NewReader(model))
	require.NoError(t, err)

	require.Equal(t, 2, lex.Len())
	require.Equal(t, []string{"wereld"}, lex.Suggest("werald"))
}

func TestLexiconInvalidModel(t *testing.T) {
	_, err := NewLexiconFromReader("lexicon", LexiconConfig{},
		strings.NewReader("wereld\tnot-a-number\n"))
	require.ErrorIs(t, err, ErrInvalidModel)

	_, err = NewLexiconFromReader("lexicon", LexiconConfig{},
		strings.NewReader("no-delimiter-here\n"))
	require.ErrorIs(t, err, ErrInvalidModel)
}

func TestLexiconMissingModelFile(t *testing.T) {
	_, err := NewLexicon("lexicon", LexiconConfig{ModelPath: "/nonexistent/model.tsv"})
	require.Error(t, err)

	_, err = NewLexicon("lexicon", LexiconConfig{})
	require.ErrorIs(t, err, ErrModelPathRequired)
}

func TestLexiconRunAppliesSuggestions(t *testing.T) {
	lex := newTestLexicon(t, LexiconConfig{})
	editor := newRecordingEditor()

	err := lex.Run(context.Background(), fakeUnit{id: "t1", text: "werald"}, editor)
	require.NoError(t, err)

	res, ok := editor.applied["t1"]
	require.True(t, ok)
	require.Equal(t, []string{"wereld"}, res.Suggestions)
	require.Equal(t, "lexicon", res.Annotator)
	require.Equal(t, "nonworderror", res.Class)
	require.Equal(t, types.Unscored, res.Confidence)

	// A clean token produces no edit.
	err = lex.Run(context.Background(), fakeUnit{id: "t2", text: "wereld"}, editor)
	require.NoError(t, err)
	_, ok = editor.applied["t2"]
	require.False(t, ok)
}

func TestLexiconHandleRequestRoundTrip(t *testing.T) {
	lex := newTestLexicon(t, LexiconConfig{})

	resp, err := lex.HandleRequest("woorde")
	require.NoError(t, err)
	require.Equal(t, "woord\twoorden", resp)

	resp, err = lex.HandleRequest("wereld")
	require.NoError(t, err)
	require.Empty(t, resp)
}

type scriptedRT struct {
	resp string
	err  error
	sent string
}

func (rt *scriptedRT) Communicate(_ context.Context, msg string) (string, error) {
	rt.sent = msg

	return rt.resp, rt.err
}

func TestLexiconRunRemote(t *testing.T) {
	lex := newTestLexicon(t, LexiconConfig{})

	t.Run("multiple suggestions", func(t *testing.T) {
		rt := &scriptedRT{resp: "wereld\tweelde"}
		editor := newRecordingEditor()

		err := lex.RunRemote(context.Background(), rt, fakeUnit{id: "t1", text: "werald"}, editor)
		require.NoError(t, err)
		require.Equal(t, "werald", rt.sent)
		require.Equal(t, []string{"wereld", "weelde"}, editor.applied["t1"].Suggestions)
	})

	t.Run("empty response means no suggestions", func(t *testing.T) {
		rt := &scriptedRT{resp: ""}
		editor := newRecordingEditor()

		err := lex.RunRemote(context.Background(), rt, fakeUnit{id: "t2", text: "wereld"}, editor)
		require.NoError(t, err)
		require.Empty(t, editor.applied)
	})
}

func TestLexiconConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LexiconConfig)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*LexiconConfig) {}},
		{name: "negative distance", mutate: func(c *LexiconConfig) { c.MaxDistance = -1 }, wantErr: true},
		{name: "max below min length", mutate: func(c *LexiconConfig) { c.MaxLength = 2 }, wantErr: true},
		{name: "negative cache", mutate: func(c *LexiconConfig) { c.CacheSize = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultLexiconConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidModuleConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
