package pmi

import (
	"testing"
)

func TestCounterCooccurrence(t *testing.T) {
	counter := NewCounter()

	counter.AddDocument([]string{"cat", "kitten"})
	counter.AddDocument([]string{"kitten", "cat"})

	if counter.GetTokenCount("cat") != 2 {
		t.Error("cat should appear in 2 docs")
	}
	if count := counter.GetPairCount("cat", "kitten"); count != 2 {
		t.Errorf("Pair should co-occur 2 times, got %d", count)
	}
	if counter.GetPairCount("kitten", "cat") != counter.GetPairCount("cat", "kitten") {
		t.Error("Pair count should be symmetric")
	}
}

func TestCounterSelfPair(t *testing.T) {
	counter := NewCounter()

	counter.AddDocument([]string{"fuel", "rocket"})
	counter.AddDocument([]string{"fuel"})

	if counter.GetPairCount("fuel", "fuel") != 2 {
		t.Errorf("Self pair should equal token count, got %d", counter.GetPairCount("fuel", "fuel"))
	}
}

func TestCounterMultipleDocuments(t *testing.T) {
	counter := NewCounter()

	docs := [][]string{
		{"a", "b"},
		{"a", "c"},
		{"b", "c"},
		{"a", "b", "c"},
	}
	for _, doc := range docs {
		counter.AddDocument(doc)
	}

	if counter.TotalDocs() != 4 {
		t.Errorf("Expected 4 docs, got %d", counter.TotalDocs())
	}
	if counter.GetTokenCount("a") != 3 {
		t.Errorf("Token 'a' should appear in 3 docs, got %d", counter.GetTokenCount("a"))
	}
	for _, p := range [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}} {
		if got := counter.GetPairCount(p[0], p[1]); got != 2 {
			t.Errorf("Pair %v should co-occur 2 times, got %d", p, got)
		}
	}
	if counter.UniqueTokens() != 3 || counter.UniquePairs() != 3 {
		t.Errorf("Expected 3 tokens and 3 pairs, got %d and %d", counter.UniqueTokens(), counter.UniquePairs())
	}
}

func TestCounterEmptyDocument(t *testing.T) {
	counter := NewCounter()

	counter.AddDocument([]string{})

	if counter.TotalDocs() != 1 {
		t.Error("Empty document should still increment doc count")
	}
	if counter.UniqueTokens() != 0 {
		t.Error("Empty document should not add tokens")
	}
	if counter.GetPairCount("nonexistent", "also-nonexistent") != 0 {
		t.Error("Non-existent pair should have count 0")
	}
}

func TestAccumulateWindowsShortText(t *testing.T) {
	texts := [][]string{{"cat", "kitten", "cat"}}

	c := AccumulateWindows(texts, 110, nil)

	if c.TotalDocs() != 1 {
		t.Fatalf("Short text should be one window, got %d", c.TotalDocs())
	}
	if c.GetTokenCount("cat") != 1 {
		t.Errorf("Counts are boolean per window, got %d", c.GetTokenCount("cat"))
	}
}

func TestAccumulateWindowsSliding(t *testing.T) {
	texts := [][]string{{"a", "b", "c", "d"}}

	c := AccumulateWindows(texts, 2, nil)

	// windows: ab bc cd
	if c.TotalDocs() != 3 {
		t.Fatalf("Expected 3 windows, got %d", c.TotalDocs())
	}
	if c.GetTokenCount("b") != 2 {
		t.Errorf("b should appear in 2 windows, got %d", c.GetTokenCount("b"))
	}
	if c.GetPairCount("a", "c") != 0 {
		t.Error("a and c never share a window of size 2")
	}
	if c.GetPairCount("c", "d") != 1 {
		t.Errorf("c and d share one window, got %d", c.GetPairCount("c", "d"))
	}
}

func TestAccumulateWindowsRelevantKeepsPositions(t *testing.T) {
	texts := [][]string{{"a", "x", "b"}}
	relevant := map[string]struct{}{"a": {}, "b": {}}

	c := AccumulateWindows(texts, 2, relevant)

	if c.GetTokenCount("x") != 0 {
		t.Error("Irrelevant tokens must not be counted")
	}
	if c.GetPairCount("a", "b") != 0 {
		t.Error("Filtered tokens still occupy window positions")
	}
	if c.TotalDocs() != 2 {
		t.Errorf("Expected 2 windows, got %d", c.TotalDocs())
	}
}

func TestAccumulateDocuments(t *testing.T) {
	texts := [][]string{{"a", "b", "a"}, {"b"}, {}}

	c := AccumulateDocuments(texts, nil)

	if c.TotalDocs() != 3 {
		t.Errorf("Expected 3 docs, got %d", c.TotalDocs())
	}
	if c.GetTokenCount("b") != 2 || c.GetTokenCount("a") != 1 {
		t.Errorf("Unexpected document frequencies: a=%d b=%d", c.GetTokenCount("a"), c.GetTokenCount("b"))
	}
}
