package ingest

import (
	"regexp"
	"strings"
)

// DefaultSentencesPerPassage groups sentences into passages for fitting.
const DefaultSentencesPerPassage = 1

var sentenceBoundary = regexp.MustCompile(`[.!?]+\s+|\n\s*\n`)

// Pipeline orchestrates the preprocessing flow:
// text → sentences → passages → normalized token streams
type Pipeline struct {
	normalizer          *Normalizer
	sentencesPerPassage int
}

// NewPipeline creates a preprocessing pipeline. A non-positive
// sentencesPerPassage falls back to DefaultSentencesPerPassage.
func NewPipeline(normalizer *Normalizer, sentencesPerPassage int) *Pipeline {
	if sentencesPerPassage <= 0 {
		sentencesPerPassage = DefaultSentencesPerPassage
	}
	return &Pipeline{
		normalizer:          normalizer,
		sentencesPerPassage: sentencesPerPassage,
	}
}

// Normalizer returns the normalizer used by the pipeline.
func (p *Pipeline) Normalizer() *Normalizer {
	return p.normalizer
}

// ProcessedDoc represents a document after preprocessing
type ProcessedDoc struct {
	// Tokens is the token stream of the whole document.
	Tokens []string
	// Passages holds one non-empty token stream per passage, in text order.
	Passages [][]string
}

// Empty reports whether the document produced no tokens.
func (d ProcessedDoc) Empty() bool {
	return len(d.Tokens) == 0
}

// Process runs a document through the pipeline
func (p *Pipeline) Process(text string) ProcessedDoc {
	doc := ProcessedDoc{
		Tokens:   p.normalizer.Normalize(text),
		Passages: [][]string{},
	}
	if len(doc.Tokens) == 0 {
		return doc
	}

	sentences := SplitSentences(text)
	for i := 0; i < len(sentences); i += p.sentencesPerPassage {
		end := i + p.sentencesPerPassage
		if end > len(sentences) {
			end = len(sentences)
		}
		tokens := p.normalizer.Normalize(strings.Join(sentences[i:end], " "))
		if len(tokens) == 0 {
			continue
		}
		doc.Passages = append(doc.Passages, tokens)
	}
	return doc
}

// SplitSentences breaks text at sentence punctuation followed by whitespace
// and at blank lines. Trailing text without punctuation is kept as the last
// sentence; empty pieces are dropped.
func SplitSentences(text string) []string {
	parts := sentenceBoundary.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		sentences = append(sentences, s)
	}
	return sentences
}
