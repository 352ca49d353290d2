package vocab

import "sort"

// Entry is one vocabulary id with its occurrence count.
type Entry struct {
	ID    int
	Count int
}

// BagOfWords is the sparse term frequency of one token stream, sorted by
// id. Ids with a zero count never appear.
type BagOfWords []Entry

// Total returns the number of tokens counted in the bag.
func (b BagOfWords) Total() int {
	n := 0
	for _, e := range b {
		n += e.Count
	}
	return n
}

// Corpus is an ordered list of bags, one per token stream.
type Corpus []BagOfWords

// Dictionary is the token to id bijection of one analysis batch.
type Dictionary struct {
	ids    map[string]int
	tokens []string
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{ids: make(map[string]int)}
}

// Build assigns ids in first-seen order across all streams and returns one
// bag per stream. Dictionary and corpus always come from the same batch.
func Build(streams [][]string) (*Dictionary, Corpus) {
	d := NewDictionary()
	for _, s := range streams {
		for _, tok := range s {
			d.add(tok)
		}
	}
	corpus := make(Corpus, len(streams))
	for i, s := range streams {
		corpus[i] = d.Doc2Bow(s)
	}
	return d, corpus
}

func (d *Dictionary) add(tok string) int {
	if id, ok := d.ids[tok]; ok {
		return id
	}
	id := len(d.tokens)
	d.ids[tok] = id
	d.tokens = append(d.tokens, tok)
	return id
}

// Doc2Bow counts tokens against the dictionary. Unknown tokens are ignored.
func (d *Dictionary) Doc2Bow(tokens []string) BagOfWords {
	counts := make(map[int]int)
	for _, tok := range tokens {
		if id, ok := d.ids[tok]; ok {
			counts[id]++
		}
	}
	bow := make(BagOfWords, 0, len(counts))
	for id, c := range counts {
		bow = append(bow, Entry{ID: id, Count: c})
	}
	sort.Slice(bow, func(i, j int) bool { return bow[i].ID < bow[j].ID })
	return bow
}

// ID returns the id of tok.
func (d *Dictionary) ID(tok string) (int, bool) {
	id, ok := d.ids[tok]
	return id, ok
}

// Token returns the token for id, or "" when id is out of range.
func (d *Dictionary) Token(id int) string {
	if id < 0 || id >= len(d.tokens) {
		return ""
	}
	return d.tokens[id]
}

// Len returns the vocabulary size.
func (d *Dictionary) Len() int {
	return len(d.tokens)
}

// Tokens returns the vocabulary in id order.
func (d *Dictionary) Tokens() []string {
	out := make([]string, len(d.tokens))
	copy(out, d.tokens)
	return out
}
