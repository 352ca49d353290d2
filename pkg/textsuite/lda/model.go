package lda

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/vocab"
)

// WordProb is one entry of a topic's word distribution.
type WordProb struct {
	ID          int
	Word        string
	Probability float64
}

// TopicProb is one entry of a document's topic distribution. TopicID is
// 0-based.
type TopicProb struct {
	TopicID     int
	Probability float64
}

// Model is a fitted topic model. It is immutable and safe for concurrent
// reads once Fit returns.
type Model interface {
	// NumTopics returns the topic count after clamping.
	NumTopics() int
	// ShowTopic returns the topN most probable words of a topic, highest
	// first, ties broken by vocabulary id.
	ShowTopic(topicID, topN int) []WordProb
	// DocumentTopics infers the topic mixture of a bag of words, dropping
	// topics below the minimum probability. Entries are ordered by topic id.
	DocumentTopics(bow vocab.BagOfWords) []TopicProb
}

// Backend fits a model with an already normalized config.
type Backend func(ctx context.Context, corpus vocab.Corpus, dict *vocab.Dictionary, cfg Config) (Model, error)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]Backend)
)

// Register makes a backend available by name. Backends register
// themselves from init.
func Register(name string, b Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = b
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("lda backend %q not registered: %w", name, internalerr.ErrInvalidConfig)
	}
	return b, nil
}

// Backends lists the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Fit trains a topic model over corpus. The caller must not pass an empty
// corpus or vocabulary; doing so is an input error. NumTopics is clamped
// to [1, vocabulary size]. Any numerical failure is reported as
// ErrAnalysisFailed and no model is returned.
func Fit(ctx context.Context, corpus vocab.Corpus, dict *vocab.Dictionary, cfg Config) (Model, error) {
	if dict == nil || dict.Len() == 0 || len(corpus) == 0 {
		return nil, fmt.Errorf("fit on empty corpus: %w", internalerr.ErrInvalidInput)
	}
	cfg = cfg.normalized(dict.Len())

	backend, err := Lookup(cfg.Backend)
	if err != nil {
		return nil, err
	}

	model, err := backend(ctx, corpus, dict, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s fit: %v: %w", cfg.Backend, err, internalerr.ErrAnalysisFailed)
	}
	return model, nil
}

// phiModel serves both query operations from a dense topic-word matrix.
type phiModel struct {
	dict  *vocab.Dictionary
	phi   [][]float64 // K x V, rows sum to 1
	minP  float64
	infer func(bow vocab.BagOfWords) []float64
}

func (m *phiModel) NumTopics() int { return len(m.phi) }

func (m *phiModel) ShowTopic(topicID, topN int) []WordProb {
	if topicID < 0 || topicID >= len(m.phi) || topN <= 0 {
		return nil
	}
	row := m.phi[topicID]
	ids := make([]int, len(row))
	for i := range ids {
		ids[i] = i
	}
	sort.SliceStable(ids, func(a, b int) bool {
		return row[ids[a]] > row[ids[b]]
	})
	if topN > len(ids) {
		topN = len(ids)
	}
	out := make([]WordProb, topN)
	for i := 0; i < topN; i++ {
		id := ids[i]
		out[i] = WordProb{ID: id, Word: m.dict.Token(id), Probability: row[id]}
	}
	return out
}

func (m *phiModel) DocumentTopics(bow vocab.BagOfWords) []TopicProb {
	theta := m.infer(bow)
	out := make([]TopicProb, 0, len(theta))
	for k, p := range theta {
		if p >= m.minP {
			out = append(out, TopicProb{TopicID: k, Probability: p})
		}
	}
	return out
}

// normalizeRows scales each row to sum to 1 and rejects non-finite or
// all-zero rows.
func normalizeRows(rows [][]float64) error {
	for k, row := range rows {
		sum := 0.0
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("topic %d has invalid weight %v", k, v)
			}
			sum += v
		}
		if sum == 0 {
			return fmt.Errorf("topic %d has no mass", k)
		}
		for i := range row {
			row[i] /= sum
		}
	}
	return nil
}
