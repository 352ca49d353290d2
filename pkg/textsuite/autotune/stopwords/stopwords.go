// Package stopwords suggests corpus-specific stopwords: tokens that occur in
// most passages and do not co-occur with anything in particular.
package stopwords

import (
	"context"
	"errors"
	"sort"

	"github.com/cognicore/textsuite/pkg/textsuite/pmi"
	"github.com/cognicore/textsuite/pkg/textsuite/stoplist"
)

// Stats describes one token across a corpus.
type Stats struct {
	Token     string  `json:"token"`
	DF        int64   `json:"df"`
	DFPercent float64 `json:"df_percent"`
	// PMIMax is the highest NPMI the token reaches with any other token.
	PMIMax float64 `json:"pmi_max"`
}

// Reason records which criteria a candidate met.
type Reason struct {
	HighDF bool `json:"high_df"`
	LowPMI bool `json:"low_pmi"`
}

// Candidate is a suggested stopword.
type Candidate struct {
	Token  string  `json:"token"`
	Score  float64 `json:"score"`
	Reason Reason  `json:"reason"`
	Stats  Stats   `json:"stats"`
}

// Thresholds defines when a token is generic enough to suggest.
type Thresholds struct {
	DFPercent float64 // appears in more than this share of documents
	PMIMax    float64 // never associates more strongly than this
	MinDocs   int64   // corpora smaller than this yield no suggestions
}

// DefaultThresholds uses the NPMI scale [-1,1].
func DefaultThresholds() Thresholds {
	return Thresholds{
		DFPercent: 60.0,
		PMIMax:    0.15,
		MinDocs:   5,
	}
}

// Collect computes per-token statistics over tokenized documents.
func Collect(docs [][]string) []Stats {
	counter := pmi.AccumulateDocuments(docs, nil)
	if counter.TotalDocs() == 0 {
		return nil
	}
	calc := pmi.NewCalculator(1e-12)

	maxNPMI := make(map[string]float64, len(counter.Nx))
	seen := make(map[string]bool, len(counter.Nx))
	for pair := range counter.Nxy {
		v := calc.PairNPMI(counter, pair.T1, pair.T2)
		for _, tok := range []string{pair.T1, pair.T2} {
			if !seen[tok] || v > maxNPMI[tok] {
				maxNPMI[tok] = v
				seen[tok] = true
			}
		}
	}

	stats := make([]Stats, 0, len(counter.Nx))
	for tok, df := range counter.Nx {
		stats = append(stats, Stats{
			Token:     tok,
			DF:        df,
			DFPercent: 100 * float64(df) / float64(counter.TotalDocs()),
			PMIMax:    maxNPMI[tok],
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].DF != stats[j].DF {
			return stats[i].DF > stats[j].DF
		}
		return stats[i].Token < stats[j].Token
	})
	return stats
}

// Suggest returns the tokens of stats that meet both thresholds and are not
// already stopwords in m, highest score first.
func Suggest(m *stoplist.Manager, stats []Stats, th Thresholds) []Candidate {
	var out []Candidate
	for _, s := range stats {
		if m != nil && m.IsStop(s.Token) {
			continue
		}
		reason := Reason{
			HighDF: s.DFPercent > th.DFPercent,
			LowPMI: s.PMIMax < th.PMIMax,
		}
		if !reason.HighDF || !reason.LowPMI {
			continue
		}
		out = append(out, Candidate{
			Token:  s.Token,
			Score:  score(s),
			Reason: reason,
			Stats:  s,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// score grows with document frequency and shrinks with association.
func score(s Stats) float64 {
	return (s.DFPercent / 100) * (1 - (s.PMIMax+1)/2)
}

// Reviewer optionally performs an extra approval step (human or LLM).
type Reviewer interface {
	Approve(ctx context.Context, cand Candidate) (bool, error)
}

// AutoTuner produces reviewed stopword suggestions for a corpus.
type AutoTuner struct {
	Manager    *stoplist.Manager
	Thresholds Thresholds
	Reviewer   Reviewer // optional
}

// Run collects statistics over docs and returns the approved candidates.
func (t *AutoTuner) Run(ctx context.Context, docs [][]string) ([]Candidate, error) {
	if t.Manager == nil {
		return nil, errors.New("stopwords autotune: nil manager")
	}
	th := t.Thresholds
	if th == (Thresholds{}) {
		th = DefaultThresholds()
	}
	if int64(len(docs)) < th.MinDocs {
		return nil, nil
	}

	candidates := Suggest(t.Manager, Collect(docs), th)
	if len(candidates) == 0 || t.Reviewer == nil {
		return candidates, nil
	}

	var approved []Candidate
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := t.Reviewer.Approve(ctx, cand)
		if err != nil {
			return nil, err
		}
		if ok {
			approved = append(approved, cand)
		}
	}
	return approved, nil
}
