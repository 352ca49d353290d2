package stoplist

import (
	"sort"
	"strings"
	"sync"
)

// english is the NLTK English stopword list.
var english = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he",
	"him", "his", "himself", "she", "she's", "her", "hers", "herself", "it", "it's",
	"its", "itself", "they", "them", "their", "theirs", "themselves", "what", "which",
	"who", "whom", "this", "that", "that'll", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "having", "do",
	"does", "did", "doing", "a", "an", "the", "and", "but", "if", "or", "because",
	"as", "until", "while", "of", "at", "by", "for", "with", "about", "against",
	"between", "into", "through", "during", "before", "after", "above", "below",
	"to", "from", "up", "down", "in", "out", "on", "off", "over", "under", "again",
	"further", "then", "once", "here", "there", "when", "where", "why", "how", "all",
	"any", "both", "each", "few", "more", "most", "other", "some", "such", "no",
	"nor", "not", "only", "own", "same", "so", "than", "too", "very", "s", "t",
	"can", "will", "just", "don", "don't", "should", "should've", "now", "d", "ll",
	"m", "o", "re", "ve", "y", "ain", "aren", "aren't", "couldn", "couldn't",
	"didn", "didn't", "doesn", "doesn't", "hadn", "hadn't", "hasn", "hasn't",
	"haven", "haven't", "isn", "isn't", "ma", "mightn", "mightn't", "mustn",
	"mustn't", "needn", "needn't", "shan", "shan't", "shouldn", "shouldn't", "wasn",
	"wasn't", "weren", "weren't", "won", "won't", "wouldn", "wouldn't",
}

var (
	englishOnce sync.Once
	englishSet  map[string]struct{}
)

// English returns the built-in English stopword set. The set is built on
// first use and shared read-only afterwards; callers must not modify it.
func English() map[string]struct{} {
	englishOnce.Do(func() {
		englishSet = make(map[string]struct{}, len(english))
		for _, w := range english {
			englishSet[w] = struct{}{}
		}
	})
	return englishSet
}

// EnglishWords returns a copy of the built-in English stopword list.
func EnglishWords() []string {
	out := make([]string, len(english))
	copy(out, english)
	return out
}

// Source records where a stopword came from
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceConfig  Source = "config"
	SourceUser    Source = "user"
)

// Manager holds a mutable stopword list layered on top of the built-in set.
// Normalizers take a snapshot via Set, so later edits never affect a
// normalizer that is already in use.
type Manager struct {
	mu    sync.RWMutex
	stops map[string]Source
}

// NewManager creates a manager seeded with the built-in English list plus
// the given extra words.
func NewManager(extra []string) *Manager {
	m := &Manager{stops: make(map[string]Source, len(english)+len(extra))}
	for w := range English() {
		m.stops[w] = SourceBuiltin
	}
	for _, w := range extra {
		m.add(w, SourceConfig)
	}
	return m
}

// NewEmptyManager creates a manager without the built-in list.
func NewEmptyManager(words []string) *Manager {
	m := &Manager{stops: make(map[string]Source, len(words))}
	for _, w := range words {
		m.add(w, SourceConfig)
	}
	return m
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.stops[token]
	return ok
}

// SourceOf reports where a stopword came from.
func (m *Manager) SourceOf(token string) (Source, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.stops[token]
	return src, ok
}

// Add adds a user stopword
func (m *Manager) Add(token string) {
	m.add(token, SourceUser)
}

func (m *Manager) add(token string, src Source) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stops[token]; ok {
		return
	}
	m.stops[token] = src
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stops, strings.ToLower(token))
}

// All returns all stopwords, sorted
func (m *Manager) All() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Set returns a snapshot of the stopwords as a lookup set.
func (m *Manager) Set() map[string]struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]struct{}, len(m.stops))
	for s := range m.stops {
		out[s] = struct{}{}
	}
	return out
}
