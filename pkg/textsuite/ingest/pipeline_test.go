package ingest

import (
	"reflect"
	"testing"
)

func TestPipelineBasic(t *testing.T) {
	pipeline := NewPipeline(NewNormalizer(), 1)

	result := pipeline.Process("The cat sat on the mat. Rockets burn fuel! Is the kitten asleep?")

	if len(result.Passages) != 3 {
		t.Fatalf("Expected 3 passages, got %d: %v", len(result.Passages), result.Passages)
	}
	if !reflect.DeepEqual(result.Passages[0], []string{"cat", "sat", "mat"}) {
		t.Errorf("Unexpected first passage: %v", result.Passages[0])
	}

	var flat []string
	for _, p := range result.Passages {
		flat = append(flat, p...)
	}
	if !reflect.DeepEqual(flat, result.Tokens) {
		t.Errorf("Passages should cover the document stream: %v vs %v", flat, result.Tokens)
	}
}

func TestPipelineGroupsSentences(t *testing.T) {
	pipeline := NewPipeline(NewNormalizer(), 2)

	result := pipeline.Process("Cats purr. Kittens play. Rockets launch. Engines roar. Fuel burns.")

	if len(result.Passages) != 3 {
		t.Fatalf("Expected 3 passages, got %d: %v", len(result.Passages), result.Passages)
	}
	if !reflect.DeepEqual(result.Passages[2], []string{"fuel", "burns"}) {
		t.Errorf("Unexpected last passage: %v", result.Passages[2])
	}
}

func TestPipelineDefaultGrouping(t *testing.T) {
	if DefaultSentencesPerPassage != 1 {
		t.Fatalf("Expected one sentence per passage by default, got %d", DefaultSentencesPerPassage)
	}
	pipeline := NewPipeline(NewNormalizer(), 0)

	result := pipeline.Process("Cats purr. Kittens play. Rockets launch.")

	if len(result.Passages) != 3 {
		t.Errorf("Expected one passage per sentence, got %d: %v", len(result.Passages), result.Passages)
	}
}

func TestPipelineEmptyText(t *testing.T) {
	pipeline := NewPipeline(NewNormalizer(), 0)

	result := pipeline.Process("")

	if !result.Empty() {
		t.Errorf("Empty text should produce 0 tokens, got %d", len(result.Tokens))
	}
	if len(result.Passages) != 0 {
		t.Errorf("Empty text should produce 0 passages, got %d", len(result.Passages))
	}
}

func TestPipelineOnlyStopwords(t *testing.T) {
	pipeline := NewPipeline(NewNormalizer(), 1)

	result := pipeline.Process("the and the of in a. On it!")

	if !result.Empty() {
		t.Errorf("Text with only stopwords should produce 0 tokens, got %v", result.Tokens)
	}
}

func TestPipelineOnlySpecialCharacters(t *testing.T) {
	pipeline := NewPipeline(NewNormalizer(), 1)

	result := pipeline.Process("!@#$%^&*()+-=[]{}|;':\",./<>?")

	if len(result.Tokens) != 0 {
		t.Errorf("Special characters should produce 0 tokens, got %d: %v", len(result.Tokens), result.Tokens)
	}
}

func TestPipelineSkipsEmptyPassages(t *testing.T) {
	pipeline := NewPipeline(NewNormalizer(), 1)

	result := pipeline.Process("Cats purr. The end of it. 123! Rockets fly.")

	want := [][]string{{"cats", "purr"}, {"end"}, {"rockets", "fly"}}
	if !reflect.DeepEqual(result.Passages, want) {
		t.Errorf("Expected %v, got %v", want, result.Passages)
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("First one. Second one!  Third?\n\nFourth without stop")
	want := []string{"First one", "Second one", "Third", "Fourth without stop"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if len(SplitSentences("   ")) != 0 {
		t.Error("Blank text should have no sentences")
	}
}
