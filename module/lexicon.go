package module

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/andy-wagner/gecco/internal/cache"
	"github.com/andy-wagner/gecco/types"
)

// LexiconConfig holds lexicon module settings.
type LexiconConfig struct {
	// ModelPath is the lexicon model file: one "word<delimiter>frequency"
	// entry per line. Required when loading through NewLexicon.
	ModelPath string `yaml:"model_path"`

	// Delimiter separates word and frequency in a model line.
	// Default: tab.
	Delimiter string `yaml:"delimiter"`

	// Reversed indicates the model lines are "frequency<delimiter>word".
	Reversed bool `yaml:"reversed"`

	// MaxDistance is the maximum Levenshtein distance between a token and
	// a suggested variant. Default: 2.
	MaxDistance int `yaml:"max_distance"`

	// MinFreq is the minimum lexicon frequency a variant needs to be
	// suggested. Default: 1.
	MinFreq int64 `yaml:"min_freq"`

	// MinLength and MaxLength bound the token lengths (in runes) the
	// module considers. Tokens outside the range are skipped.
	// Defaults: 5 and 25.
	MinLength int `yaml:"min_length"`
	MaxLength int `yaml:"max_length"`

	// MaxSuggestions caps the number of suggestions per token. Default: 5.
	MaxSuggestions int `yaml:"max_suggestions"`

	// CacheSize bounds the per-token suggestion cache. Zero disables
	// caching. Default: 1000.
	CacheSize int `yaml:"cache_size"`

	// Set is the annotation set suggestions are filed under.
	// Default: "gecco-lexicon".
	Set string `yaml:"set"`

	// Servers lists the remote servers offering this module. Empty means
	// the module runs in-process.
	Servers []types.Endpoint `yaml:"servers"`
}

// DefaultLexiconConfig returns a config with default values.
func DefaultLexiconConfig() LexiconConfig {
	cfg := LexiconConfig{}
	SetLexiconDefaults(&cfg)

	return cfg
}

// SetLexiconDefaults fills zero-valued fields of cfg with defaults.
func SetLexiconDefaults(cfg *LexiconConfig) {
	if cfg.Delimiter == "" {
		cfg.Delimiter = "\t"
	}
	if cfg.MaxDistance == 0 {
		cfg.MaxDistance = 2
	}
	if cfg.MinFreq == 0 {
		cfg.MinFreq = 1
	}
	if cfg.MinLength == 0 {
		cfg.MinLength = 5
	}
	if cfg.MaxLength == 0 {
		cfg.MaxLength = 25
	}
	if cfg.MaxSuggestions == 0 {
		cfg.MaxSuggestions = 5
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = 1000
	}
	if cfg.Set == "" {
		cfg.Set = "gecco-lexicon"
	}
}

// Validate checks the config for inconsistent values.
func (cfg *LexiconConfig) Validate() error {
	if cfg.MaxDistance < 1 {
		return fmt.Errorf("%w: max_distance must be at least 1, got %d",
			ErrInvalidModuleConfig, cfg.MaxDistance)
	}
	if cfg.MinFreq < 1 {
		return fmt.Errorf("%w: min_freq must be at least 1, got %d",
			ErrInvalidModuleConfig, cfg.MinFreq)
	}
	if cfg.MinLength < 1 || cfg.MaxLength < cfg.MinLength {
		return fmt.Errorf("%w: length bounds [%d, %d] are invalid",
			ErrInvalidModuleConfig, cfg.MinLength, cfg.MaxLength)
	}
	if cfg.MaxSuggestions < 1 {
		return fmt.Errorf("%w: max_suggestions must be at least 1, got %d",
			ErrInvalidModuleConfig, cfg.MaxSuggestions)
	}
	if cfg.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must not be negative, got %d",
			ErrInvalidModuleConfig, cfg.CacheSize)
	}

	return nil
}

// Lexicon is a variant-lookup spelling module: for each token it suggests
// known lexicon words within a bounded edit distance, ordered by distance,
// then frequency (descending), then lexicographically.
//
// The frequency table is read-only after load, so Run and HandleRequest
// are safe for concurrent use.
type Lexicon struct {
	id    string
	cfg   LexiconConfig
	freq  map[string]int64
	words []string
	cache *cache.FIFO[uint64, []string]
}

var _ types.Module = (*Lexicon)(nil)

// NewLexicon creates a lexicon module and loads its model from
// cfg.ModelPath. Defaults are applied to cfg first.
//
// Returns:
//   - *Lexicon: The loaded module
//   - error: ErrModelPathRequired, a config validation error, a file open
//     error, or ErrInvalidModel for unparseable model lines
func NewLexicon(id string, cfg LexiconConfig) (*Lexicon, error) {
	SetLexiconDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ModelPath == "" {
		return nil, ErrModelPathRequired
	}

	file, err := os.Open(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("open lexicon model: %w", err)
	}
	defer file.Close()

	return newLexicon(id, cfg, file)
}

// NewLexiconFromReader creates a lexicon module reading its model from r
// instead of cfg.ModelPath. Used by tests and embedded models.
func NewLexiconFromReader(id string, cfg LexiconConfig, r io.Reader) (*Lexicon, error) {
	SetLexiconDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return newLexicon(id, cfg, r)
}

func newLexicon(id string, cfg LexiconConfig, r io.Reader) (*Lexicon, error) {
	l := &Lexicon{
		id:    id,
		cfg:   cfg,
		freq:  make(map[string]int64),
		cache: cache.NewFIFO[uint64, []string](cfg.CacheSize),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)

	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		word, freqField, ok := strings.Cut(line, cfg.Delimiter)
		if !ok {
			return nil, fmt.Errorf("%w: line %d: missing delimiter", ErrInvalidModel, lineno)
		}
		if cfg.Reversed {
			word, freqField = freqField, word
		}

		freq, err := strconv.ParseInt(freqField, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad frequency %q", ErrInvalidModel, lineno, freqField)
		}

		if _, dup := l.freq[word]; !dup {
			l.words = append(l.words, word)
		}
		l.freq[word] += freq
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon model: %w", err)
	}

	return l, nil
}

// ID returns the module identifier.
func (l *Lexicon) ID() string { return l.id }

// Unit returns types.UnitToken; the lexicon corrects individual tokens.
func (l *Lexicon) Unit() types.UnitKind { return types.UnitToken }

// Local reports whether the module runs in-process.
func (l *Lexicon) Local() bool { return len(l.cfg.Servers) == 0 }

// Endpoints returns the configured remote servers.
func (l *Lexicon) Endpoints() []types.Endpoint { return l.cfg.Servers }

// Len returns the number of distinct lexicon entries.
func (l *Lexicon) Len() int { return len(l.words) }

// Init declares the correction annotation on the document.
func (l *Lexicon) Init(doc types.Document) error {
	doc.Declare(types.Annotation{Type: "correction", Set: l.cfg.Set})

	return nil
}

// Run corrects one token in-process.
func (l *Lexicon) Run(_ context.Context, unit types.Unit, editor types.Editor) error {
	suggestions := l.Suggest(unit.Text())
	if len(suggestions) == 0 {
		return nil
	}

	return editor.AddSuggestions(unit, l.result(suggestions))
}

// RunRemote corrects one token by querying a module server. The wire
// request is the raw token; the response is the suggestions joined by
// tabs, empty when the server has none.
func (l *Lexicon) RunRemote(ctx context.Context, rt types.RoundTripper, unit types.Unit, editor types.Editor) error {
	resp, err := rt.Communicate(ctx, unit.Text())
	if err != nil {
		return fmt.Errorf("lexicon query: %w", err)
	}
	if resp == "" {
		return nil
	}

	return editor.AddSuggestions(unit, l.result(strings.Split(resp, "\t")))
}

// HandleRequest serves one token lookup on the module server side.
func (l *Lexicon) HandleRequest(msg string) (string, error) {
	return strings.Join(l.Suggest(msg), "\t"), nil
}

// Finish is a no-op; the lexicon has no post-processing.
func (l *Lexicon) Finish(types.Document) error { return nil }

func (l *Lexicon) result(suggestions []string) types.Result {
	return types.Result{
		Suggestions: suggestions,
		Confidence:  types.Unscored,
		Set:         l.cfg.Set,
		Class:       "nonworderror",
		Annotator:   l.id,
	}
}

// Suggest returns correction candidates for token, ordered by edit
// distance, then frequency (descending), then lexicographically. Tokens
// outside the configured length bounds or already present in the lexicon
// get no suggestions.
func (l *Lexicon) Suggest(token string) []string {
	runes := []rune(token)
	if len(runes) < l.cfg.MinLength || len(runes) > l.cfg.MaxLength {
		return nil
	}
	if _, known := l.freq[token]; known {
		return nil
	}

	key := xxh3.HashString(token)
	if cached, ok := l.cache.Get(key); ok {
		return cached
	}

	type candidate struct {
		word     string
		distance int
		freq     int64
	}

	var candidates []candidate
	for _, word := range l.words {
		freq := l.freq[word]
		if freq < l.cfg.MinFreq {
			continue
		}

		wordRunes := []rune(word)
		if diff := len(wordRunes) - len(runes); diff > l.cfg.MaxDistance || diff < -l.cfg.MaxDistance {
			continue
		}

		distance := levenshtein(runes, wordRunes, l.cfg.MaxDistance)
		if distance < 0 {
			continue
		}

		candidates = append(candidates, candidate{word: word, distance: distance, freq: freq})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		if candidates[i].freq != candidates[j].freq {
			return candidates[i].freq > candidates[j].freq
		}

		return candidates[i].word < candidates[j].word
	})

	if len(candidates) > l.cfg.MaxSuggestions {
		candidates = candidates[:l.cfg.MaxSuggestions]
	}

	suggestions := make([]string, 0, len(candidates))
	for _, c := range candidates {
		suggestions = append(suggestions, c.word)
	}

	l.cache.Put(key, suggestions)

	return suggestions
}

// levenshtein computes the edit distance between a and b, returning -1 as
// soon as it can prove the distance exceeds maxDist.
func levenshtein(a, b []rune, maxDist int) int {
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j
		rowMin := curr[0]

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
			if curr[i] < rowMin {
				rowMin = curr[i]
			}
		}

		if rowMin > maxDist {
			return -1
		}
		prev, curr = curr, prev
	}

	if prev[len(a)] > maxDist {
		return -1
	}

	return prev[len(a)]
}
