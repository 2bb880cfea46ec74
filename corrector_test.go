package gecco

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andy-wagner/gecco/document"
	geccotest "github.com/andy-wagner/gecco/testing"
	"github.com/andy-wagner/gecco/types"
	"github.com/andy-wagner/gecco/wire"
)

// fakeModule is a scriptable types.Module for corrector tests.
type fakeModule struct {
	id        string
	unit      types.UnitKind
	endpoints []types.Endpoint

	initErr   error
	finishErr error

	run    func(ctx context.Context, unit types.Unit, editor types.Editor) error
	handle func(msg string) (string, error)

	mu       sync.Mutex
	seen     []string
	finished bool
}

func (m *fakeModule) ID() string                  { return m.id }
func (m *fakeModule) Unit() types.UnitKind        { return m.unit }
func (m *fakeModule) Local() bool                 { return len(m.endpoints) == 0 }
func (m *fakeModule) Endpoints() []types.Endpoint { return m.endpoints }
func (m *fakeModule) Init(types.Document) error   { return m.initErr }

func (m *fakeModule) Finish(types.Document) error {
	m.mu.Lock()
	m.finished = true
	m.mu.Unlock()

	return m.finishErr
}

func (m *fakeModule) Run(ctx context.Context, unit types.Unit, editor types.Editor) error {
	m.mu.Lock()
	m.seen = append(m.seen, unit.ID())
	m.mu.Unlock()

	if m.run != nil {
		return m.run(ctx, unit, editor)
	}

	return nil
}

func (m *fakeModule) RunRemote(ctx context.Context, rt types.RoundTripper, unit types.Unit, editor types.Editor) error {
	m.mu.Lock()
	m.seen = append(m.seen, unit.ID())
	m.mu.Unlock()

	resp, err := rt.Communicate(ctx, unit.Text())
	if err != nil {
		return err
	}
	if resp == "" {
		return nil
	}

	return editor.AddSuggestions(unit, types.Result{
		Suggestions: strings.Split(resp, "\t"),
		Confidence:  types.Unscored,
		Annotator:   m.id,
	})
}

func (m *fakeModule) HandleRequest(msg string) (string, error) {
	if m.handle != nil {
		return m.handle(msg)
	}

	return msg, nil
}

func (m *fakeModule) seenUnits() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.seen))
	copy(out, m.seen)

	return out
}

func newTestCorrector(t *testing.T, opts ...Option) *Corrector {
	t.Helper()

	cfg := TestConfig()
	opts = append([]Option{WithLogger(geccotest.NewTestLogger(t))}, opts...)

	c, err := NewCorrector(&cfg, opts...)
	require.NoError(t, err)

	return c
}

func TestRegisterValidation(t *testing.T) {
	c := newTestCorrector(t)

	require.NoError(t, c.Register(&fakeModule{id: "a", unit: types.UnitToken}))
	require.ErrorIs(t, c.Register(&fakeModule{id: "a", unit: types.UnitToken}), ErrDuplicateModule)
	require.Len(t, c.Modules(), 1)

	// Remote module with endpoints is fine; the interface derives locality
	// from them, so a violation needs a broken implementation.
	require.NoError(t, c.Register(&fakeModule{
		id:        "b",
		unit:      types.UnitToken,
		endpoints: []types.Endpoint{{Host: "127.0.0.1", Port: 9000}},
	}))
	require.ErrorIs(t, c.Register(brokenLocality{}), ErrModuleLocality)
}

// brokenLocality claims to be local while carrying endpoints.
type brokenLocality struct{}

func (brokenLocality) ID() string                   { return "broken" }
func (brokenLocality) Unit() types.UnitKind         { return types.UnitToken }
func (brokenLocality) Local() bool                  { return true }
func (brokenLocality) Init(types.Document) error    { return nil }
func (brokenLocality) Finish(types.Document) error  { return nil }
func (brokenLocality) Endpoints() []types.Endpoint {
	return []types.Endpoint{{Host: "127.0.0.1", Port: 9000}}
}

func (brokenLocality) Run(context.Context, types.Unit, types.Editor) error { return nil }

func (brokenLocality) RunRemote(context.Context, types.RoundTripper, types.Unit, types.Editor) error {
	return nil
}

func (brokenLocality) HandleRequest(msg string) (string, error) { return msg, nil }

func TestRunGuards(t *testing.T) {
	c := newTestCorrector(t)

	_, err := c.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrDocumentRequired)

	doc := document.NewMemory("doc", [][]string{{"woord"}})
	_, err = c.Run(context.Background(), doc)
	require.ErrorIs(t, err, ErrModuleRequired)
}

func TestRunDispatchesEachPairExactlyOnce(t *testing.T) {
	c := newTestCorrector(t)

	tokens := &fakeModule{id: "tokens", unit: types.UnitToken}
	sentences := &fakeModule{id: "sentences", unit: types.UnitSentence}
	require.NoError(t, c.Register(tokens))
	require.NoError(t, c.Register(sentences))

	doc := document.NewMemory("doc", [][]string{
		{"een", "twee", "drie"},
		{"vier", "vijf"},
	})

	report, err := c.Run(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, Report{Items: 7}, report)

	seenTokens := tokens.seenUnits()
	require.Len(t, seenTokens, 5)
	require.ElementsMatch(t, []string{
		"doc.s1.w1", "doc.s1.w2", "doc.s1.w3", "doc.s2.w1", "doc.s2.w2",
	}, seenTokens)

	require.ElementsMatch(t, []string{"doc.s1", "doc.s2"}, sentences.seenUnits())
	require.True(t, doc.Saved())
}

func TestDocumentLevelModuleGetsOneItem(t *testing.T) {
	cfg := TestConfig()
	cfg.Workers = 8

	c, err := NewCorrector(&cfg)
	require.NoError(t, err)

	whole := &fakeModule{id: "whole", unit: types.UnitDocument}
	require.NoError(t, c.Register(whole))

	doc := document.NewMemory("doc", [][]string{{"a", "b"}, {"c"}})

	report, err := c.Run(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 1, report.Items)
	require.Equal(t, []string{"doc"}, whole.seenUnits())
}

func TestFailingModuleDoesNotBlockOthers(t *testing.T) {
	c := newTestCorrector(t)

	failing := &fakeModule{
		id:   "failing",
		unit: types.UnitToken,
		run: func(_ context.Context, unit types.Unit, _ types.Editor) error {
			if unit.Text() == "fout" {
				return errors.New("analysis blew up")
			}

			return nil
		},
	}
	panicking := &fakeModule{
		id:   "panicking",
		unit: types.UnitToken,
		run: func(_ context.Context, unit types.Unit, _ types.Editor) error {
			if unit.Text() == "fout" {
				panic("module bug")
			}

			return nil
		},
	}
	healthy := &fakeModule{
		id:   "healthy",
		unit: types.UnitToken,
		run: func(_ context.Context, unit types.Unit, editor types.Editor) error {
			return editor.AddSuggestions(unit, types.Result{
				Suggestions: []string{"ok"},
				Annotator:   "healthy",
			})
		},
	}
	require.NoError(t, c.Register(failing))
	require.NoError(t, c.Register(panicking))
	require.NoError(t, c.Register(healthy))

	doc := document.NewMemory("doc", [][]string{{"goed", "fout", "prima"}})

	report, err := c.Run(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 9, report.Items)
	require.Equal(t, 2, report.Failed)

	// The healthy module still annotated every token.
	for _, id := range []string{"doc.s1.w1", "doc.s1.w2", "doc.s1.w3"} {
		require.Len(t, doc.Annotations(id), 1, "unit %s", id)
	}
	require.Equal(t, types.StateIdle, c.State())
	require.True(t, doc.Saved())
}

func TestFinishErrorsAreCountedNotFatal(t *testing.T) {
	c := newTestCorrector(t)

	m := &fakeModule{id: "m", unit: types.UnitToken, finishErr: errors.New("finish failed")}
	require.NoError(t, c.Register(m))

	doc := document.NewMemory("doc", [][]string{{"woord"}})

	report, err := c.Run(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 1, report.FinishErrors)
	require.True(t, doc.Saved())
}

func TestInitFailureAbortsRun(t *testing.T) {
	c := newTestCorrector(t)

	ok := &fakeModule{id: "ok", unit: types.UnitToken}
	bad := &fakeModule{id: "bad", unit: types.UnitToken, initErr: errors.New("model missing")}
	require.NoError(t, c.Register(ok))
	require.NoError(t, c.Register(bad))

	doc := document.NewMemory("doc", [][]string{{"woord"}})

	_, err := c.Run(context.Background(), doc)
	require.Error(t, err)
	require.Empty(t, ok.seenUnits())
	require.False(t, doc.Saved())
	require.Equal(t, types.StateIdle, c.State())
}

func TestConcurrentEditStress(t *testing.T) {
	cfg := TestConfig()
	cfg.Workers = 8

	c, err := NewCorrector(&cfg)
	require.NoError(t, err)

	annotate := &fakeModule{id: "annotate", unit: types.UnitToken}
	annotate.run = func(_ context.Context, unit types.Unit, editor types.Editor) error {
		return editor.AddSuggestions(unit, types.Result{
			Suggestions: []string{"s-" + unit.ID()},
			Annotator:   "annotate",
		})
	}
	require.NoError(t, c.Register(annotate))

	const tokensPerSentence = 50
	sentences := make([][]string, 8)
	for i := range sentences {
		sentences[i] = make([]string, tokensPerSentence)
		for j := range sentences[i] {
			sentences[i][j] = fmt.Sprintf("w%d_%d", i, j)
		}
	}
	doc := document.NewMemory("doc", sentences)

	report, err := c.Run(context.Background(), doc)
	require.NoError(t, err)

	total := len(sentences) * tokensPerSentence
	require.Equal(t, total, report.Items)
	require.Zero(t, report.Failed)
	require.Equal(t, total, doc.AnnotationCount())

	// Every annotation is well-formed and attached to its own unit.
	for _, unit := range doc.Units(types.UnitToken) {
		records := doc.Annotations(unit.ID())
		require.Len(t, records, 1)
		require.Equal(t, []string{"s-" + unit.ID()}, records[0].Result.Suggestions)
		require.False(t, records[0].Result.Timestamp.IsZero())
	}
}

func TestStateProgressionViaHooks(t *testing.T) {
	var (
		mu          sync.Mutex
		transitions []string
	)
	hooks := &Hooks{
		OnStateChanged: func(_ context.Context, from, to State) error {
			mu.Lock()
			transitions = append(transitions, from.String()+">"+to.String())
			mu.Unlock()

			return nil
		},
	}

	c := newTestCorrector(t, WithHooks(hooks))
	require.NoError(t, c.Register(&fakeModule{id: "m", unit: types.UnitToken}))

	doc := document.NewMemory("doc", [][]string{{"woord"}})
	_, err := c.Run(context.Background(), doc)
	require.NoError(t, err)

	require.Equal(t, []string{
		"Idle>Initializing",
		"Initializing>Dispatching",
		"Dispatching>Draining",
		"Draining>Finalizing",
		"Finalizing>Persisted",
	}, transitions)
}

func TestRemoteEndToEnd(t *testing.T) {
	// The module server answers every token with a fixed suggestion,
	// except clean tokens which get none.
	handler := wire.HandlerFunc(func(msg string) (string, error) {
		if msg == "goed" {
			return "", nil
		}

		return "beter\tbest", nil
	})

	srv := wire.NewServer("127.0.0.1:0", handler)
	require.NoError(t, srv.Start(context.Background()))
	defer srv.Stop()

	host, port := splitAddr(t, srv.Addr().String())

	c := newTestCorrector(t)
	remote := &fakeModule{
		id:        "remote",
		unit:      types.UnitToken,
		endpoints: []types.Endpoint{{Host: host, Port: port}},
	}
	require.NoError(t, c.Register(remote))

	doc := document.NewMemory("doc", [][]string{{"goed", "slegt", "slechd"}})

	report, err := c.Run(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 3, report.Items)
	require.Zero(t, report.Failed)

	require.Empty(t, doc.Annotations("doc.s1.w1"))
	for _, id := range []string{"doc.s1.w2", "doc.s1.w3"} {
		records := doc.Annotations(id)
		require.Len(t, records, 1)
		require.Equal(t, []string{"beter", "best"}, records[0].Result.Suggestions)
		require.Equal(t, "remote", records[0].Result.Annotator)
	}
}

func TestRemoteDegradedWhenPollsFail(t *testing.T) {
	// A prober that always fails forces the degraded first-endpoint path.
	prober := func(_ context.Context, _ Endpoint) (float64, error) {
		return 0, errors.New("poll refused")
	}

	handler := wire.HandlerFunc(func(msg string) (string, error) {
		return "vast", nil
	})
	srv := wire.NewServer("127.0.0.1:0", handler)
	require.NoError(t, srv.Start(context.Background()))
	defer srv.Stop()

	host, port := splitAddr(t, srv.Addr().String())

	var errCount int
	hooks := &Hooks{
		OnError: func(_ context.Context, err error) error {
			if errors.Is(err, ErrNoServerAvailable) {
				errCount++
			}

			return nil
		},
	}

	cfg := TestConfig()
	cfg.Workers = 1

	c, err := NewCorrector(&cfg, WithLoadProber(prober), WithHooks(hooks))
	require.NoError(t, err)

	remote := &fakeModule{
		id:   "remote",
		unit: types.UnitToken,
		endpoints: []types.Endpoint{
			{Host: host, Port: port},
			{Host: "127.0.0.1", Port: 1}, // never reachable
		},
	}
	require.NoError(t, c.Register(remote))

	doc := document.NewMemory("doc", [][]string{{"woord"}})

	report, err := c.Run(context.Background(), doc)
	require.NoError(t, err)
	require.Zero(t, report.Failed)
	require.Len(t, doc.Annotations("doc.s1.w1"), 1)
	require.Positive(t, errCount)
}

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()

	idx := strings.LastIndex(addr, ":")
	require.Positive(t, idx)

	var port int
	_, err := fmt.Sscanf(addr[idx+1:], "%d", &port)
	require.NoError(t, err)

	return addr[:idx], port
}
