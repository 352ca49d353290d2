package ingest

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"

	"github.com/cognicore/textsuite/pkg/textsuite/stoplist"
)

// Normalizer turns raw text into a token stream: non-word characters and
// digits are stripped, the rest is lowercased and stopwords are dropped.
type Normalizer struct {
	stopwords map[string]struct{}
	stem      bool
}

// NewNormalizer creates a normalizer over the built-in English stoplist.
func NewNormalizer() *Normalizer {
	return &Normalizer{stopwords: stoplist.English()}
}

// NewNormalizerWithStopwords creates a normalizer with its own stopword set.
// The set is copied and lowercased.
func NewNormalizerWithStopwords(stopwords []string) *Normalizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{stopwords: stops}
}

// NewNormalizerFromManager snapshots the manager's current stoplist.
func NewNormalizerFromManager(m *stoplist.Manager) *Normalizer {
	return &Normalizer{stopwords: m.Set()}
}

// WithStemming returns a copy of n that reduces every kept token to its
// English snowball stem.
func (n *Normalizer) WithStemming() *Normalizer {
	return &Normalizer{stopwords: n.stopwords, stem: true}
}

// Normalize never fails; empty or whitespace-only text yields an empty
// (non-nil) stream.
func (n *Normalizer) Normalize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))

	// Non-word runes become spaces and whitespace runs collapse to one
	// space. Digits are dropped after the collapse, so "a 3 b" keeps two
	// separators and still splits into two tokens.
	space := false
	for _, r := range text {
		if !isWordRune(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		if unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}

	fields := strings.Fields(b.String())
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if n.isStopword(f) {
			continue
		}
		if n.stem {
			f = english.Stem(f, false)
			if f == "" {
				continue
			}
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Join re-joins a token stream into text that normalizes back to the same
// stream.
func (n *Normalizer) Join(tokens []string) string {
	return strings.Join(tokens, " ")
}

// IsStopword reports whether word is in this normalizer's stoplist.
func (n *Normalizer) IsStopword(word string) bool {
	return n.isStopword(strings.ToLower(word))
}

func (n *Normalizer) isStopword(word string) bool {
	_, ok := n.stopwords[word]
	return ok
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}
