package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/textsuite/internal/app"
	"github.com/cognicore/textsuite/pkg/textsuite/config"
)

const themedText = `The cat and the kitten purr on the mat. The feline licks a paw and the whisker twitches.
The tabby cat chases the kitten. A kitten and a cat nap while the feline purrs.

The rocket engine burns fuel at launch. The booster gives thrust until the rocket reaches orbit.
Fuel feeds the engine and the launch lifts the rocket. Orbit needs thrust and fuel from the booster.`

func newApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.Metrics.Enabled = false
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestTopicsFromFile(t *testing.T) {
	a := newApp(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte(themedText), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := run(context.Background(), a, []string{"topics", "-file", path, "-topics", "2", "-json"}, nil, &out)
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	var rep struct {
		Name   string `json:"name"`
		Result struct {
			Topics []json.RawMessage `json:"topics"`
		} `json:"result"`
	}
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("decode %s: %v", out.String(), err)
	}
	if rep.Name != "notes.txt" || len(rep.Result.Topics) != 2 {
		t.Errorf("unexpected report %s", out.String())
	}
}

func TestTopicsFromStdin(t *testing.T) {
	a := newApp(t)

	var out bytes.Buffer
	err := run(context.Background(), a, []string{"topics", "-topics", "2"}, strings.NewReader(themedText), &out)
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	if !strings.Contains(out.String(), "--- Topic 1 ---") || !strings.Contains(out.String(), "(stdin)") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestSentimentCommand(t *testing.T) {
	a := newApp(t)

	var out bytes.Buffer
	if err := run(context.Background(), a, []string{"sentiment", "-text", "an awful, terrible day"}, nil, &out); err != nil {
		t.Fatal(err)
	}
	var res struct {
		Polarity float64 `json:"polarity"`
	}
	json.Unmarshal(out.Bytes(), &res)
	if res.Polarity >= 0 {
		t.Errorf("Expected negative polarity, got %s", out.String())
	}
}

func TestParaphraseWithoutLLM(t *testing.T) {
	a := newApp(t)
	err := run(context.Background(), a, []string{"paraphrase", "-text", "hi"}, nil, &bytes.Buffer{})
	if err == nil {
		t.Error("Expected an error without a language model")
	}
}

func TestBatchAndReports(t *testing.T) {
	a := newApp(t)
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	lines := []string{
		`{"name":"a","text":"` + strings.ReplaceAll(themedText, "\n", " ") + `","num_topics":2}`,
		`not json`,
		`{"name":"b","text":"Rockets burn fuel at launch. The engine gives thrust."}`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), a, []string{"batch", "-input", path, "-workers", "2"}, nil, &out); err != nil {
		t.Fatalf("batch: %v", err)
	}
	results := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(results) != 2 {
		t.Fatalf("Expected 2 result lines, got %d:\n%s", len(results), out.String())
	}
	var first batchLine
	json.Unmarshal([]byte(results[0]), &first)
	if first.Name != "a" || first.Topics != 2 || first.ReportID == "" {
		t.Errorf("unexpected first line %+v", first)
	}

	out.Reset()
	if err := run(context.Background(), a, []string{"reports", "-limit", "10"}, nil, &out); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out.String(), "\n"); n != 2 {
		t.Errorf("Expected 2 listed reports, got %d:\n%s", n, out.String())
	}

	out.Reset()
	if err := run(context.Background(), a, []string{"reports", "-id", first.ReportID}, nil, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), first.ReportID) {
		t.Errorf("report output missing id:\n%s", out.String())
	}
}

func TestBatchRequiresInput(t *testing.T) {
	if err := run(context.Background(), newApp(t), []string{"batch"}, nil, &bytes.Buffer{}); err == nil {
		t.Error("Expected an error without -input")
	}
}

func TestUnknownCommand(t *testing.T) {
	err := run(context.Background(), newApp(t), []string{"frobnicate"}, nil, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestStopwordsCommand(t *testing.T) {
	a := newApp(t)
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	var lines []string
	for _, text := range []string{
		"Quarterly widget figures: cats purr on mats",
		"Quarterly widget figures: rockets burn fuel",
		"Quarterly widget figures: kittens chase whiskers",
		"Quarterly widget figures: boosters reach orbit",
		"Quarterly widget figures: felines nap quietly",
		"Quarterly widget figures: engines need thrust",
	} {
		data, _ := json.Marshal(map[string]string{"text": text})
		lines = append(lines, string(data))
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), a, []string{"stopwords", "-input", path}, nil, &out); err != nil {
		t.Fatalf("stopwords: %v", err)
	}
	var got []struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode %s: %v", out.String(), err)
	}
	tokens := map[string]bool{}
	for _, c := range got {
		tokens[c.Token] = true
	}
	if !tokens["quarterly"] || !tokens["widget"] || tokens["orbit"] {
		t.Errorf("unexpected candidates %s", out.String())
	}

	err := run(context.Background(), a, []string{"stopwords", "-input", path, "-review"}, nil, &bytes.Buffer{})
	if err == nil {
		t.Error("Expected -review to fail without a language model")
	}
}
