package sentiment

import (
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     Category
		polarity float64
		matched  int
	}{
		{"positive", "The food was good", Positive, 0.7, 1},
		{"intensified", "This movie is very good!", VeryPositive, 0.91, 1},
		{"negated", "The plot was not good", Negative, -0.35, 1},
		{"negated contraction", "I don't love it", Neutral, -0.25, 1},
		{"very negative", "Terrible, awful service", VeryNegative, -1.0, 2},
		{"mixed", "The service was good but the room was dirty", Neutral, 0.05, 2},
		{"no sentiment words", "The table is brown", Neutral, 0, 0},
		{"empty", "", Neutral, 0, 0},
	}

	a := NewAnalyzer()
	for _, tt := range tests {
		got := a.Analyze(tt.input)
		if got.Sentiment != tt.want {
			t.Errorf("%s: sentiment = %s, want %s (polarity %f)", tt.name, got.Sentiment, tt.want, got.Polarity)
		}
		if math.Abs(got.Polarity-tt.polarity) > 1e-9 {
			t.Errorf("%s: polarity = %f, want %f", tt.name, got.Polarity, tt.polarity)
		}
		if got.Matched != tt.matched {
			t.Errorf("%s: matched = %d, want %d", tt.name, got.Matched, tt.matched)
		}
		if got.Text != tt.input {
			t.Errorf("%s: text should be echoed", tt.name)
		}
	}
}

func TestModifierExpires(t *testing.T) {
	a := NewAnalyzer()

	// "not" is too far from "good" to apply
	got := a.Analyze("not the one on the left side good")
	if got.Polarity != 0.7 {
		t.Errorf("Negation should expire, got polarity %f", got.Polarity)
	}
}

func TestSubjectivityBounds(t *testing.T) {
	a := NewAnalyzer()

	got := a.Analyze("extremely extremely wonderful")
	if got.Subjectivity < 0 || got.Subjectivity > 1 {
		t.Errorf("Subjectivity out of range: %f", got.Subjectivity)
	}
	if got.Polarity > 1 {
		t.Errorf("Polarity out of range: %f", got.Polarity)
	}
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		polarity float64
		want     Category
	}{
		{1.0, VeryPositive},
		{0.71, VeryPositive},
		{0.7, Positive},
		{0.31, Positive},
		{0.3, Neutral},
		{0, Neutral},
		{-0.29, Neutral},
		{-0.3, Negative},
		{-0.69, Negative},
		{-0.7, VeryNegative},
		{-1.0, VeryNegative},
	}
	for _, c := range cases {
		if got := Categorize(c.polarity); got != c.want {
			t.Errorf("Categorize(%v) = %s, want %s", c.polarity, got, c.want)
		}
	}
}

func TestCategoryJSON(t *testing.T) {
	data, err := json.Marshal(Result{Sentiment: VeryPositive})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"sentiment":"Very Positive"`) {
		t.Errorf("Unexpected JSON: %s", data)
	}

	var c Category
	if err := json.Unmarshal([]byte(`"Negative"`), &c); err != nil || c != Negative {
		t.Errorf("Unmarshal = %v, %v", c, err)
	}
	if err := json.Unmarshal([]byte(`"Meh"`), &c); err == nil {
		t.Error("Unknown category should fail")
	}
	if Category(9).String() != "Category(9)" {
		t.Errorf("Unexpected name %q", Category(9).String())
	}
}

func TestLexiconLoaded(t *testing.T) {
	if len(lexicon) < 100 {
		t.Errorf("Expected a populated lexicon, got %d entries", len(lexicon))
	}
	if e, ok := lexicon["good"]; !ok || e.polarity != 0.7 {
		t.Errorf("Unexpected entry for good: %+v", e)
	}
}

func TestHistory(t *testing.T) {
	var h History
	a := NewAnalyzer()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Add(a.Analyze("good"))
		}()
	}
	wg.Wait()

	all := h.All()
	if len(all) != 10 {
		t.Fatalf("Expected 10 results, got %d", len(all))
	}
	all[0].Text = "changed"
	if h.All()[0].Text == "changed" {
		t.Error("All should return a copy")
	}

	h.Clear()
	if len(h.All()) != 0 {
		t.Error("Clear should drop every result")
	}
}

func TestHistoryLimit(t *testing.T) {
	h := History{Limit: 2}
	for _, text := range []string{"good", "bad", "great"} {
		h.Add(Result{Text: text})
	}
	all := h.All()
	if len(all) != 2 || all[0].Text != "bad" || all[1].Text != "great" {
		t.Errorf("Expected the two newest results, got %+v", all)
	}
}
