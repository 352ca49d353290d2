package pmi

import "sort"

// Counter maintains boolean co-occurrence counts. Each call to AddDocument
// adds one virtual document, which is either a sliding window over a text
// or a whole text.
type Counter struct {
	N   int64               // total number of virtual documents
	Nx  map[string]int64    // virtual documents containing each token
	Nxy map[TokenPair]int64 // virtual documents containing both tokens
}

// TokenPair represents an ordered pair of tokens (t1 < t2)
type TokenPair struct {
	T1, T2 string
}

// NewCounter creates a new co-occurrence counter
func NewCounter() *Counter {
	return &Counter{
		N:   0,
		Nx:  make(map[string]int64),
		Nxy: make(map[TokenPair]int64),
	}
}

// AddDocument updates counts for a document with unique tokens
func (c *Counter) AddDocument(uniqueTokens []string) {
	c.N++

	for _, t := range uniqueTokens {
		c.Nx[t]++
	}

	sorted := make([]string, len(uniqueTokens))
	copy(sorted, uniqueTokens)
	sort.Strings(sorted)

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			pair := TokenPair{T1: sorted[i], T2: sorted[j]}
			c.Nxy[pair]++
		}
	}
}

// GetPairCount returns the co-occurrence count for a token pair. A token
// paired with itself returns its own count.
func (c *Counter) GetPairCount(t1, t2 string) int64 {
	if t1 == t2 {
		return c.Nx[t1]
	}
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	return c.Nxy[TokenPair{T1: t1, T2: t2}]
}

// GetTokenCount returns the document frequency for a token
func (c *Counter) GetTokenCount(t string) int64 {
	return c.Nx[t]
}

// TotalDocs returns the total number of documents processed
func (c *Counter) TotalDocs() int64 {
	return c.N
}

// UniqueTokens returns the number of unique tokens
func (c *Counter) UniqueTokens() int {
	return len(c.Nx)
}

// UniquePairs returns the number of unique token pairs
func (c *Counter) UniquePairs() int {
	return len(c.Nxy)
}

// AccumulateWindows counts relevant tokens over boolean sliding windows.
// A text no longer than window is one window; a longer text yields one
// window per start position. Irrelevant tokens keep their positions but
// are never counted. A nil relevant set counts every token.
func AccumulateWindows(texts [][]string, window int, relevant map[string]struct{}) *Counter {
	c := NewCounter()
	if window < 1 {
		window = 1
	}
	for _, text := range texts {
		if len(text) == 0 {
			continue
		}
		if len(text) <= window {
			c.AddDocument(uniqueRelevant(text, relevant))
			continue
		}
		for i := 0; i+window <= len(text); i++ {
			c.AddDocument(uniqueRelevant(text[i:i+window], relevant))
		}
	}
	return c
}

// AccumulateDocuments counts relevant tokens with each text as one document.
func AccumulateDocuments(texts [][]string, relevant map[string]struct{}) *Counter {
	c := NewCounter()
	for _, text := range texts {
		c.AddDocument(uniqueRelevant(text, relevant))
	}
	return c
}

func uniqueRelevant(tokens []string, relevant map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if relevant != nil {
			if _, ok := relevant[tok]; !ok {
				continue
			}
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
