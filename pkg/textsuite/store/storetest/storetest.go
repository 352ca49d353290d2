// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/report"
	"github.com/cognicore/textsuite/pkg/textsuite/store"
	"github.com/cognicore/textsuite/pkg/textsuite/topics"
)

// Sample returns a report with a dominant topic and two topics.
func Sample(b *report.Builder, name string) report.Report {
	return b.Build(name, topics.Result{
		Topics: []topics.Topic{
			{
				ID:       1,
				Keywords: []topics.Keyword{{Word: "cat", Probability: 0.31}, {Word: "purr", Probability: 0.2}},
				Summary:  "This topic is about: cat, purr",
			},
			{
				ID:       2,
				Keywords: []topics.Keyword{{Word: "rocket", Probability: 0.4}},
				Summary:  "This topic is about: rocket",
			},
		},
		CoherenceScore: 0.5625,
		DominantTopic:  &topics.DominantTopic{TopicID: 2, Probability: 0.71, Summary: "This topic is about: rocket"},
	}, topics.Stats{Tokens: 40, VocabularySize: 12, Passages: 4, TopicsRequested: 2, TopicsUsed: 2, Backend: "gibbs", Measure: "c_v"})
}

// Run exercises st, which must start empty.
func Run(t *testing.T, st store.Store) {
	ctx := context.Background()
	b := report.New()

	t.Run("RoundTrip", func(t *testing.T) {
		want := Sample(b, "round-trip.txt")
		if err := st.SaveReport(ctx, want); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
		got, err := st.GetReport(ctx, want.ID)
		if err != nil {
			t.Fatalf("GetReport: %v", err)
		}
		Equal(t, got, want)
	})

	t.Run("EmptyResult", func(t *testing.T) {
		want := b.Build("empty.txt", topics.Result{}, topics.Stats{})
		if err := st.SaveReport(ctx, want); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
		got, err := st.GetReport(ctx, want.ID)
		if err != nil {
			t.Fatalf("GetReport: %v", err)
		}
		if got.Result.Topics == nil || len(got.Result.Topics) != 0 {
			t.Errorf("Expected an empty topic list, got %#v", got.Result.Topics)
		}
		if got.Result.DominantTopic != nil {
			t.Errorf("Expected no dominant topic, got %+v", got.Result.DominantTopic)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		r := Sample(b, "first.txt")
		if err := st.SaveReport(ctx, r); err != nil {
			t.Fatal(err)
		}
		r.Name = "renamed.txt"
		if err := st.SaveReport(ctx, r); err != nil {
			t.Fatal(err)
		}
		got, err := st.GetReport(ctx, r.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "renamed.txt" {
			t.Errorf("Name = %q, want renamed.txt", got.Name)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := st.GetReport(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		if !errors.Is(err, internalerr.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("MissingID", func(t *testing.T) {
		err := st.SaveReport(ctx, report.Report{Name: "x"})
		if !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		var last report.Report
		for i := 0; i < 5; i++ {
			last = Sample(b, fmt.Sprintf("list-%d.txt", i))
			if err := st.SaveReport(ctx, last); err != nil {
				t.Fatal(err)
			}
		}
		got, err := st.ListReports(ctx, 3)
		if err != nil {
			t.Fatalf("ListReports: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Expected 3 reports, got %d", len(got))
		}
		if got[0].ID != last.ID {
			t.Errorf("Newest report should come first: got %s, want %s", got[0].ID, last.ID)
		}
		for i := 1; i < len(got); i++ {
			if got[i].ID >= got[i-1].ID {
				t.Errorf("Reports out of order at %d: %s after %s", i, got[i].ID, got[i-1].ID)
			}
		}

		all, err := st.ListReports(ctx, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) < 5 || len(all) > store.DefaultListLimit {
			t.Errorf("Default limit returned %d reports", len(all))
		}
	})
}

// Equal fails t when got and want differ.
func Equal(t *testing.T, got, want report.Report) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.Confidence != want.Confidence {
		t.Errorf("Header mismatch: got %s/%s/%s, want %s/%s/%s",
			got.ID, got.Name, got.Confidence, want.ID, want.Name, want.Confidence)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if got.Result.CoherenceScore != want.Result.CoherenceScore {
		t.Errorf("Coherence = %v, want %v", got.Result.CoherenceScore, want.Result.CoherenceScore)
	}
	if len(got.Result.Topics) != len(want.Result.Topics) {
		t.Fatalf("Expected %d topics, got %d", len(want.Result.Topics), len(got.Result.Topics))
	}
	for i := range want.Result.Topics {
		g, w := got.Result.Topics[i], want.Result.Topics[i]
		if g.ID != w.ID || g.Summary != w.Summary || len(g.Keywords) != len(w.Keywords) {
			t.Errorf("Topic %d mismatch: got %+v, want %+v", i, g, w)
			continue
		}
		for j := range w.Keywords {
			if g.Keywords[j] != w.Keywords[j] {
				t.Errorf("Topic %d keyword %d = %+v, want %+v", i, j, g.Keywords[j], w.Keywords[j])
			}
		}
	}
	switch {
	case want.Result.DominantTopic == nil && got.Result.DominantTopic != nil:
		t.Errorf("Unexpected dominant topic %+v", got.Result.DominantTopic)
	case want.Result.DominantTopic != nil && got.Result.DominantTopic == nil:
		t.Errorf("Missing dominant topic")
	case want.Result.DominantTopic != nil && *got.Result.DominantTopic != *want.Result.DominantTopic:
		t.Errorf("Dominant topic = %+v, want %+v", *got.Result.DominantTopic, *want.Result.DominantTopic)
	}
	if got.Stats != want.Stats {
		t.Errorf("Stats = %+v, want %+v", got.Stats, want.Stats)
	}
}
