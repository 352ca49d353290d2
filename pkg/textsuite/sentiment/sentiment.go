// Package sentiment scores English text with an embedded polarity and
// subjectivity lexicon.
//
// Each known word contributes its polarity and subjectivity. An
// intensifier ("very", "extremely") scales the next sentiment word and a
// negator ("not", "never") flips it and halves it. Scores are averaged over
// the sentiment words found.
//
// Analyzer is safe for concurrent use. History is safe for concurrent use.
package sentiment

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

//go:embed lexicon.tsv
var rawLexicon string

// maxInputBytes bounds the analyzed text. Longer input is truncated.
const maxInputBytes = 1 << 20

// lookahead is how many tokens a modifier stays active for.
const lookahead = 3

const negationFactor = -0.5

type entry struct {
	polarity     float64
	subjectivity float64
}

var lexicon = parseLexicon(rawLexicon)

var intensifiers = map[string]float64{
	"very":       1.3,
	"really":     1.2,
	"extremely":  1.5,
	"incredibly": 1.4,
	"absolutely": 1.4,
	"truly":      1.2,
	"quite":      1.1,
	"super":      1.3,
	"highly":     1.3,
}

var negators = map[string]struct{}{
	"not": {}, "never": {}, "no": {}, "cannot": {}, "can't": {},
	"don't": {}, "doesn't": {}, "didn't": {}, "isn't": {}, "wasn't": {},
	"aren't": {}, "weren't": {}, "won't": {}, "nothing": {},
}

// parseLexicon parses tab-separated "word\tpolarity\tsubjectivity" lines.
func parseLexicon(raw string) map[string]entry {
	m := make(map[string]entry, 128)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 3 {
			continue
		}
		pol, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}
		subj, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			continue
		}
		m[strings.TrimSpace(parts[0])] = entry{polarity: pol, subjectivity: subj}
	}
	return m
}

// Category is the bucketed polarity.
type Category int

const (
	VeryNegative Category = iota - 2
	Negative
	Neutral
	Positive
	VeryPositive
)

var categoryNames = map[Category]string{
	VeryNegative: "Very Negative",
	Negative:     "Negative",
	Neutral:      "Neutral",
	Positive:     "Positive",
	VeryPositive: "Very Positive",
}

var categoryFromName = map[string]Category{
	"Very Negative": VeryNegative,
	"Negative":      Negative,
	"Neutral":       Neutral,
	"Positive":      Positive,
	"Very Positive": VeryPositive,
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// MarshalJSON encodes the category as its display name.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a display name into a Category.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := categoryFromName[s]
	if !ok {
		return fmt.Errorf("sentiment: unknown category %q", s)
	}
	*c = v
	return nil
}

// Categorize maps a polarity onto the five buckets.
func Categorize(polarity float64) Category {
	switch {
	case polarity > 0.7:
		return VeryPositive
	case polarity > 0.3:
		return Positive
	case polarity > -0.3:
		return Neutral
	case polarity > -0.7:
		return Negative
	default:
		return VeryNegative
	}
}

// Result holds one sentiment analysis.
type Result struct {
	Text         string   `json:"text"`
	Polarity     float64  `json:"polarity"`     // -1.0 to +1.0
	Subjectivity float64  `json:"subjectivity"` // 0.0 to 1.0
	Sentiment    Category `json:"sentiment"`
	Matched      int      `json:"matched"` // sentiment words found
}

// Analyzer scores text.
type Analyzer struct{}

// NewAnalyzer returns an analyzer over the embedded lexicon.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze scores text. Text without sentiment words is Neutral with zero
// polarity and subjectivity.
func (a *Analyzer) Analyze(text string) Result {
	res := Result{Text: text, Sentiment: Neutral}
	if len(text) > maxInputBytes {
		text = text[:maxInputBytes]
	}

	var (
		polSum  float64
		subjSum float64
		scale   = 1.0
		negated = false
		ttl     = 0
	)
	for _, tok := range words(text) {
		if f, ok := intensifiers[tok]; ok {
			scale *= f
			ttl = lookahead
			continue
		}
		if _, ok := negators[tok]; ok {
			negated = !negated
			ttl = lookahead
			continue
		}
		e, ok := lexicon[tok]
		if !ok {
			if ttl > 0 {
				ttl--
				if ttl == 0 {
					scale, negated = 1.0, false
				}
			}
			continue
		}

		pol := e.polarity * scale
		subj := e.subjectivity * scale
		if negated {
			pol *= negationFactor
		}
		polSum += clamp(pol, -1, 1)
		subjSum += clamp(subj, 0, 1)
		res.Matched++
		scale, negated, ttl = 1.0, false, 0
	}

	if res.Matched == 0 {
		return res
	}
	n := float64(res.Matched)
	res.Polarity = round(clamp(polSum/n, -1, 1))
	res.Subjectivity = round(clamp(subjSum/n, 0, 1))
	res.Sentiment = Categorize(res.Polarity)
	return res
}

// words lowercases text and splits it into letter runs, keeping inner
// apostrophes so "don't" stays one token.
func words(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\'' && r != '’'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(strings.ReplaceAll(f, "’", "'"), "'")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// History keeps the results of one session in memory.
type History struct {
	// Limit bounds the kept results; the oldest are dropped first. Zero
	// keeps everything.
	Limit int

	mu      sync.Mutex
	results []Result
}

// Add appends a result.
func (h *History) Add(r Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, r)
	if h.Limit > 0 && len(h.results) > h.Limit {
		h.results = append([]Result(nil), h.results[len(h.results)-h.Limit:]...)
	}
}

// All returns a copy of the results, oldest first.
func (h *History) All() []Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Result, len(h.results))
	copy(out, h.results)
	return out
}

// Clear drops every result.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = nil
}
