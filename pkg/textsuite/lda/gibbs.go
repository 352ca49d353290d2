package lda

import (
	"context"
	"math/rand"

	"github.com/cognicore/textsuite/pkg/textsuite/vocab"
)

func init() {
	Register("gibbs", fitGibbs)
}

// gibbsState holds the collapsed sampler counts.
type gibbsState struct {
	k     int
	v     int
	alpha float64
	eta   float64
	probs []float64
	rng   *rand.Rand

	docs [][]int // token word ids per document
	z    [][]int // topic assignment per token
	nkw  [][]int // topic x word
	nk   []int   // tokens per topic
	ndk  [][]int // document x topic
}

// fitGibbs runs a seeded collapsed Gibbs sampler for Passes*Iterations
// sweeps on a single goroutine.
func fitGibbs(ctx context.Context, corpus vocab.Corpus, dict *vocab.Dictionary, cfg Config) (Model, error) {
	s := &gibbsState{
		k:     cfg.NumTopics,
		v:     dict.Len(),
		alpha: cfg.Alpha,
		eta:   cfg.Eta,
		probs: make([]float64, cfg.NumTopics),
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
	s.nkw = make([][]int, s.k)
	for k := range s.nkw {
		s.nkw[k] = make([]int, s.v)
	}
	s.nk = make([]int, s.k)

	for _, bow := range corpus {
		doc := expand(bow)
		z := make([]int, len(doc))
		ndk := make([]int, s.k)
		for i, w := range doc {
			t := s.rng.Intn(s.k)
			z[i] = t
			ndk[t]++
			s.nkw[t][w]++
			s.nk[t]++
		}
		s.docs = append(s.docs, doc)
		s.z = append(s.z, z)
		s.ndk = append(s.ndk, ndk)
	}

	for pass := 0; pass < cfg.Passes; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for it := 0; it < cfg.Iterations; it++ {
			s.sweep()
		}
	}

	vEta := float64(s.v) * s.eta
	phi := make([][]float64, s.k)
	for k := range phi {
		row := make([]float64, s.v)
		denom := float64(s.nk[k]) + vEta
		for w := range row {
			row[w] = (float64(s.nkw[k][w]) + s.eta) / denom
		}
		phi[k] = row
	}
	if err := normalizeRows(phi); err != nil {
		return nil, err
	}

	m := &phiModel{dict: dict, phi: phi, minP: cfg.MinimumProbability}
	m.infer = func(bow vocab.BagOfWords) []float64 {
		return foldIn(phi, bow, cfg)
	}
	return m, nil
}

func (s *gibbsState) sweep() {
	vEta := float64(s.v) * s.eta
	for d, doc := range s.docs {
		ndk := s.ndk[d]
		z := s.z[d]
		for i, w := range doc {
			t := z[i]
			ndk[t]--
			s.nkw[t][w]--
			s.nk[t]--

			total := 0.0
			for k := 0; k < s.k; k++ {
				p := (float64(ndk[k]) + s.alpha) * (float64(s.nkw[k][w]) + s.eta) / (float64(s.nk[k]) + vEta)
				total += p
				s.probs[k] = total
			}
			t = sample(s.rng, s.probs, total)

			z[i] = t
			ndk[t]++
			s.nkw[t][w]++
			s.nk[t]++
		}
	}
}

// foldIn estimates a document's topic mixture with phi held fixed. The
// sampler is reseeded per call so the same bag always gets the same answer.
// Counts from the second half of the sweeps are averaged.
func foldIn(phi [][]float64, bow vocab.BagOfWords, cfg Config) []float64 {
	k := len(phi)
	theta := make([]float64, k)
	doc := knownIDs(expand(bow), len(phi[0]))
	if len(doc) == 0 {
		for i := range theta {
			theta[i] = 1 / float64(k)
		}
		return theta
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	z := make([]int, len(doc))
	ndk := make([]int, k)
	for i := range doc {
		t := rng.Intn(k)
		z[i] = t
		ndk[t]++
	}

	probs := make([]float64, k)
	burn := cfg.InferenceIterations / 2
	samples := 0
	for it := 0; it < cfg.InferenceIterations; it++ {
		for i, w := range doc {
			t := z[i]
			ndk[t]--
			total := 0.0
			for j := 0; j < k; j++ {
				total += (float64(ndk[j]) + cfg.Alpha) * phi[j][w]
				probs[j] = total
			}
			t = sample(rng, probs, total)
			z[i] = t
			ndk[t]++
		}
		if it >= burn {
			for j := range theta {
				theta[j] += float64(ndk[j])
			}
			samples++
		}
	}

	n := float64(len(doc))
	kAlpha := float64(k) * cfg.Alpha
	for j := range theta {
		avg := theta[j] / float64(samples)
		theta[j] = (avg + cfg.Alpha) / (n + kAlpha)
	}
	return theta
}

// sample draws an index from cumulative weights.
func sample(rng *rand.Rand, cumulative []float64, total float64) int {
	u := rng.Float64() * total
	for k, c := range cumulative {
		if u < c {
			return k
		}
	}
	return len(cumulative) - 1
}

// expand turns a bag into a token id sequence in id order.
func expand(bow vocab.BagOfWords) []int {
	doc := make([]int, 0, bow.Total())
	for _, e := range bow {
		for c := 0; c < e.Count; c++ {
			doc = append(doc, e.ID)
		}
	}
	return doc
}

// knownIDs drops ids outside a vocabulary of size v.
func knownIDs(doc []int, v int) []int {
	out := doc[:0]
	for _, w := range doc {
		if w >= 0 && w < v {
			out = append(out, w)
		}
	}
	return out
}
