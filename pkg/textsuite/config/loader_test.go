package config

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/stoplist"
)

func TestLoaderDefaults(t *testing.T) {
	comp, err := (&Loader{}).Load()
	if err != nil {
		t.Fatalf("Empty loader should succeed: %v", err)
	}

	if comp.Normalizer == nil || comp.Topics == nil || comp.Sentiment == nil || comp.Extractor == nil {
		t.Fatalf("Missing components: %+v", comp)
	}
	if !comp.Normalizer.IsStopword("the") {
		t.Error("Built-in English stopwords should be active")
	}
	if !comp.Extractor.Supported("notes.txt") {
		t.Error("Default extractor should accept txt")
	}
}

func TestLoaderStoplistSources(t *testing.T) {
	cfg := Default()
	cfg.Stoplist.Extra = []string{"lorem"}
	cfg.Stoplist.Path = writeFile(t, "stoplist.yaml", "terms:\n  - ipsum\n")

	comp, err := (&Loader{Config: cfg}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, w := range []string{"lorem", "ipsum", "the"} {
		if !comp.Normalizer.IsStopword(w) {
			t.Errorf("%q should be a stopword", w)
		}
	}
	if src, _ := comp.Stoplist.SourceOf("ipsum"); src != stoplist.SourceConfig {
		t.Errorf("ipsum source = %s, want config", src)
	}
	got := comp.Normalizer.Normalize("Lorem ipsum rockets")
	if len(got) != 1 || got[0] != "rockets" {
		t.Errorf("Normalize = %v, want [rockets]", got)
	}
}

func TestLoaderStemming(t *testing.T) {
	cfg := Default()
	cfg.Stoplist.Stemming = true

	comp, err := (&Loader{Config: cfg}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := comp.Normalizer.Normalize("running rockets")
	if len(got) != 2 || got[0] != "run" || got[1] != "rocket" {
		t.Errorf("Normalize = %v, want [run rocket]", got)
	}
}

func TestLoaderNonExistentStoplist(t *testing.T) {
	cfg := Default()
	cfg.Stoplist.Path = "/nonexistent/stoplist.yaml"

	if _, err := (&Loader{Config: cfg}).Load(); err == nil {
		t.Error("Should error on nonexistent stoplist")
	}
}

func TestLoaderMalformedStoplist(t *testing.T) {
	cfg := Default()
	cfg.Stoplist.Path = writeFile(t, "stoplist.yaml", "terms: [unclosed")

	if _, err := (&Loader{Config: cfg}).Load(); err == nil {
		t.Error("Should error on malformed stoplist")
	}
}

func TestLoaderUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Topics.LDA.Backend = "missing"

	_, err := (&Loader{Config: cfg}).Load()
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	mem, err := OpenStore(ctx, StoreConfig{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	mem.Close()

	sq, err := OpenStore(ctx, StoreConfig{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "r.db")})
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	sq.Close()

	if _, err := OpenStore(ctx, StoreConfig{Driver: "mongo"}); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
