package stopwords

import (
	"context"
	"fmt"
	"strings"

	"github.com/cognicore/textsuite/internal/llm"
)

const reviewPrompt = "Judge whether '%s' should be treated as a generic stopword for topic modeling. " +
	"It appears in %.1f%% of the documents and its strongest association has NPMI %.2f. " +
	"Answer with a single word: yes or no."

// LLMReviewer asks a language model to confirm each candidate.
type LLMReviewer struct {
	Client *llm.Client
}

// Approve implements Reviewer.
func (r *LLMReviewer) Approve(ctx context.Context, cand Candidate) (bool, error) {
	reply, err := r.Client.Chat(ctx, "", fmt.Sprintf(reviewPrompt, cand.Token, cand.Stats.DFPercent, cand.Stats.PMIMax))
	if err != nil {
		return false, fmt.Errorf("review %q: %w", cand.Token, err)
	}
	answer := strings.ToLower(strings.TrimSpace(reply))
	return strings.HasPrefix(answer, "yes"), nil
}
