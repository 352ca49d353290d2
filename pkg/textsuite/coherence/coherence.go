package coherence

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/lda"
	"github.com/cognicore/textsuite/pkg/textsuite/pmi"
	"github.com/cognicore/textsuite/pkg/textsuite/vocab"
)

// Measure names a coherence pipeline.
type Measure string

const (
	CV    Measure = "c_v"
	CNPMI Measure = "c_npmi"
	UMass Measure = "u_mass"
)

// Default sliding window sizes per measure.
const (
	DefaultCVWindow    = 110
	DefaultCNPMIWindow = 10
	DefaultTopN        = 10
)

// ParseMeasure maps a configured name to a Measure. An empty name is c_v.
func ParseMeasure(name string) (Measure, error) {
	switch Measure(name) {
	case "", CV:
		return CV, nil
	case CNPMI:
		return CNPMI, nil
	case UMass:
		return UMass, nil
	}
	return "", fmt.Errorf("coherence measure %q: %w", name, internalerr.ErrInvalidConfig)
}

// Scorer computes topic coherence from co-occurrence statistics over the
// token streams a model was fitted on.
type Scorer struct {
	Measure Measure
	// Window is the sliding window size; 0 picks the measure default.
	// u_mass ignores it.
	Window int
	// TopN is the number of words taken from each topic.
	TopN int

	calc *pmi.Calculator
}

// NewScorer creates a scorer for measure with its default window.
func NewScorer(measure Measure) *Scorer {
	return &Scorer{Measure: measure, TopN: DefaultTopN, calc: pmi.NewCalculator(pmi.DefaultEpsilon)}
}

func (s *Scorer) window() int {
	if s.Window > 0 {
		return s.Window
	}
	if s.Measure == CNPMI {
		return DefaultCNPMIWindow
	}
	return DefaultCVWindow
}

func (s *Scorer) calculator() *pmi.Calculator {
	if s.calc == nil {
		s.calc = pmi.NewCalculator(pmi.DefaultEpsilon)
	}
	return s.calc
}

// ScoreModel scores the top words of every topic in model against texts.
// The dictionary and corpus must come from the same batch as the model.
func (s *Scorer) ScoreModel(model lda.Model, dict *vocab.Dictionary, corpus vocab.Corpus, texts [][]string) float64 {
	if model == nil || dict == nil || dict.Len() == 0 || len(corpus) == 0 {
		return 0
	}
	topN := s.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	topics := make([][]string, 0, model.NumTopics())
	for k := 0; k < model.NumTopics(); k++ {
		words := model.ShowTopic(k, topN)
		tokens := make([]string, len(words))
		for i, w := range words {
			tokens[i] = w.Word
		}
		topics = append(topics, tokens)
	}
	return s.Score(topics, texts)
}

// Score returns the mean coherence of topics over texts. Degenerate input
// (no topics or no tokens) scores 0.
func (s *Scorer) Score(topics [][]string, texts [][]string) float64 {
	if len(topics) == 0 || !hasTokens(texts) {
		return 0
	}
	topN := s.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	trimmed := make([][]string, 0, len(topics))
	relevant := make(map[string]struct{})
	for _, t := range topics {
		if len(t) > topN {
			t = t[:topN]
		}
		trimmed = append(trimmed, t)
		for _, w := range t {
			relevant[w] = struct{}{}
		}
	}

	var per func([]string) float64
	switch s.Measure {
	case UMass:
		counter := pmi.AccumulateDocuments(texts, relevant)
		per = func(t []string) float64 { return s.umass(counter, t) }
	case CNPMI:
		counter := pmi.AccumulateWindows(texts, s.window(), relevant)
		per = func(t []string) float64 { return s.npmiMean(counter, t) }
	default:
		counter := pmi.AccumulateWindows(texts, s.window(), relevant)
		per = func(t []string) float64 { return s.cv(counter, t) }
	}

	scores := make([]float64, 0, len(trimmed))
	for _, t := range trimmed {
		v := per(t)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		scores = append(scores, v)
	}
	return mean(scores)
}

// cv is the indirect cosine confirmation over one-set segmentation: each
// word's NPMI context vector against the summed vector of the whole topic.
func (s *Scorer) cv(counter *pmi.Counter, topic []string) float64 {
	if len(topic) == 0 {
		return 0
	}
	vectors := make([][]float64, len(topic))
	for i, w := range topic {
		vec := make([]float64, len(topic))
		for j, other := range topic {
			vec[j] = s.calculator().PairNPMI(counter, w, other)
		}
		vectors[i] = vec
	}

	whole := make([]float64, len(topic))
	for _, v := range vectors {
		floats.Add(whole, v)
	}

	sims := make([]float64, len(vectors))
	for i, v := range vectors {
		sims[i] = cosine(v, whole)
	}
	return mean(sims)
}

// npmiMean averages direct NPMI over one-one segmentation.
func (s *Scorer) npmiMean(counter *pmi.Counter, topic []string) float64 {
	var vals []float64
	for i, wi := range topic {
		for j, wj := range topic {
			if i == j {
				continue
			}
			vals = append(vals, s.calculator().PairNPMI(counter, wi, wj))
		}
	}
	return mean(vals)
}

// umass averages log conditional probabilities over one-preceding
// segmentation: every word against each higher ranked word.
func (s *Scorer) umass(counter *pmi.Counter, topic []string) float64 {
	var vals []float64
	for i := 1; i < len(topic); i++ {
		for j := 0; j < i; j++ {
			nAB := counter.GetPairCount(topic[i], topic[j])
			vals = append(vals, s.calculator().LogConditional(nAB, counter.GetTokenCount(topic[j])))
		}
	}
	return mean(vals)
}

func cosine(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return floats.Sum(vals) / float64(len(vals))
}

func hasTokens(texts [][]string) bool {
	for _, t := range texts {
		if len(t) > 0 {
			return true
		}
	}
	return false
}
