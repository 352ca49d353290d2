package pmi

import "math"

// DefaultEpsilon keeps logarithms finite when a pair never co-occurs.
const DefaultEpsilon = 1e-12

// Calculator handles PMI (Pointwise Mutual Information) calculations over
// probability estimates from a Counter.
type Calculator struct {
	epsilon float64
}

// NewCalculator creates a new PMI calculator with the given epsilon
func NewCalculator(epsilon float64) *Calculator {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Calculator{epsilon: epsilon}
}

// PMI calculates the pointwise mutual information between two tokens
//
// PMI(a,b) = log((N_ab/N + ε) / ((N_a/N)(N_b/N)))
//
// Where:
//   - N_ab = number of virtual documents containing both a and b
//   - N_a, N_b = number of virtual documents containing each token
//   - N = total number of virtual documents
//
// A token that never occurs yields 0.
func (c *Calculator) PMI(nAB, nA, nB, N int64) float64 {
	if N == 0 || nA == 0 || nB == 0 {
		return 0
	}
	n := float64(N)
	pAB := float64(nAB)/n + c.epsilon
	return math.Log(pAB / ((float64(nA) / n) * (float64(nB) / n)))
}

// NPMI calculates normalized PMI, roughly in [-1, 1]
// NPMI(a,b) = PMI(a,b) / -log(P(a,b) + ε)
func (c *Calculator) NPMI(nAB, nA, nB, N int64) float64 {
	if N == 0 || nA == 0 || nB == 0 {
		return 0
	}
	pmi := c.PMI(nAB, nA, nB, N)
	logPAB := math.Log(float64(nAB)/float64(N) + c.epsilon)
	if logPAB == 0 {
		return 0
	}
	return pmi / -logPAB
}

// LogConditional is the UMass confirmation log((N_ab + 1) / N_b), where b
// is the conditioning token.
func (c *Calculator) LogConditional(nAB, nB int64) float64 {
	if nB == 0 {
		return 0
	}
	return math.Log((float64(nAB) + 1) / float64(nB))
}

// PairNPMI looks up both tokens in counter and returns their NPMI.
func (c *Calculator) PairNPMI(counter *Counter, a, b string) float64 {
	return c.NPMI(counter.GetPairCount(a, b), counter.GetTokenCount(a), counter.GetTokenCount(b), counter.TotalDocs())
}
