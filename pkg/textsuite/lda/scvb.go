package lda

import (
	"context"
	"fmt"
	"sync"

	"github.com/james-bowman/nlp"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/textsuite/pkg/textsuite/vocab"
)

func init() {
	Register("scvb", fitSCVB)
}

// fitSCVB delegates to the stochastic collapsed variational Bayes
// implementation in james-bowman/nlp. Processes is pinned to 1 so a fixed
// seed gives a fixed model.
func fitSCVB(ctx context.Context, corpus vocab.Corpus, dict *vocab.Dictionary, cfg Config) (Model, error) {
	v := dict.Len()
	td := termDocMatrix(corpus, v)

	model := nlp.NewLatentDirichletAllocation(cfg.NumTopics)
	model.Iterations = cfg.Passes * cfg.Iterations
	model.TransformationPasses = cfg.InferenceIterations
	model.Alpha = cfg.Alpha
	model.Eta = cfg.Eta
	model.Processes = 1
	model.Rnd = rand.New(rand.NewSource(uint64(cfg.Seed)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := model.FitTransform(td); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	comps := model.Components()
	rows, cols := comps.Dims()
	if rows != cfg.NumTopics || cols != v {
		return nil, fmt.Errorf("components are %dx%d, want %dx%d", rows, cols, cfg.NumTopics, v)
	}
	phi := make([][]float64, rows)
	for k := range phi {
		phi[k] = mat.Row(nil, k, comps)
	}
	if err := normalizeRows(phi); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	m := &phiModel{dict: dict, phi: phi, minP: cfg.MinimumProbability}
	m.infer = func(bow vocab.BagOfWords) []float64 {
		mu.Lock()
		defer mu.Unlock()
		model.Rnd = rand.New(rand.NewSource(uint64(cfg.Seed)))
		return transformOne(model, bow, v, cfg.NumTopics)
	}
	return m, nil
}

// termDocMatrix lays the corpus out as words x documents, the orientation
// the nlp package expects.
func termDocMatrix(corpus vocab.Corpus, v int) *mat.Dense {
	td := mat.NewDense(v, len(corpus), nil)
	for d, bow := range corpus {
		for _, e := range bow {
			if e.ID < v {
				td.Set(e.ID, d, float64(e.Count))
			}
		}
	}
	return td
}

// transformOne infers one bag. The caller serializes access and reseeds the
// model's random source. An empty bag or a failed transform yields the
// uniform mixture.
func transformOne(model *nlp.LatentDirichletAllocation, bow vocab.BagOfWords, v, k int) []float64 {
	uniform := func() []float64 {
		theta := make([]float64, k)
		for i := range theta {
			theta[i] = 1 / float64(k)
		}
		return theta
	}
	if bow.Total() == 0 {
		return uniform()
	}

	out, err := model.Transform(termDocMatrix(vocab.Corpus{bow}, v))
	if err != nil {
		return uniform()
	}
	theta := mat.Col(nil, 0, out)
	rows := [][]float64{theta}
	if err := normalizeRows(rows); err != nil {
		return uniform()
	}
	return rows[0]
}
