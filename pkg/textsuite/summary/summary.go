package summary

import (
	"strings"

	"github.com/cognicore/textsuite/pkg/textsuite/lda"
)

// SummaryWords is how many top words go into a topic summary.
const SummaryWords = 5

// Summarize joins words as natural language: "a", "a and b", "a, b and c".
// An empty list gives "".
func Summarize(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	}
	last := len(words) - 1
	return strings.Join(words[:last], ", ") + " and " + words[last]
}

// SummarizeTopic summarizes the first SummaryWords of a topic's words.
func SummarizeTopic(words []lda.WordProb) string {
	n := len(words)
	if n > SummaryWords {
		n = SummaryWords
	}
	tokens := make([]string, n)
	for i := 0; i < n; i++ {
		tokens[i] = words[i].Word
	}
	return Summarize(tokens)
}

// DominantTopic returns the entry with the highest probability. Ties go to
// the earliest entry. ok is false for an empty distribution.
func DominantTopic(dist []lda.TopicProb) (best lda.TopicProb, ok bool) {
	if len(dist) == 0 {
		return lda.TopicProb{}, false
	}
	best = dist[0]
	for _, tp := range dist[1:] {
		if tp.Probability > best.Probability {
			best = tp
		}
	}
	return best, true
}
