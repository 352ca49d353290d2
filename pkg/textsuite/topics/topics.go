package topics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cognicore/textsuite/internal/logger"
	"github.com/cognicore/textsuite/pkg/textsuite/coherence"
	"github.com/cognicore/textsuite/pkg/textsuite/ingest"
	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/lda"
	"github.com/cognicore/textsuite/pkg/textsuite/summary"
	"github.com/cognicore/textsuite/pkg/textsuite/vocab"
)

// Granularity selects the token streams the model is fitted on.
type Granularity string

const (
	// Passage fits on sentence passages of the document.
	Passage Granularity = "passage"
	// Document fits on the whole document as a single bag.
	Document Granularity = "document"
)

// KeywordsPerTopic is how many words are reported for each topic.
const KeywordsPerTopic = 10

// Keyword is one reported topic word.
type Keyword struct {
	Word        string  `json:"word"`
	Probability float64 `json:"probability"`
}

// Topic is one discovered topic. ID is 1-based.
type Topic struct {
	ID       int       `json:"id"`
	Keywords []Keyword `json:"keywords"`
	Summary  string    `json:"summary"`
}

// DominantTopic is the topic with the highest share of the document.
type DominantTopic struct {
	TopicID     int     `json:"topic_id"`
	Probability float64 `json:"probability"`
	Summary     string  `json:"summary"`
}

// Result is the outcome of one analysis.
type Result struct {
	Topics         []Topic        `json:"topics"`
	CoherenceScore float64        `json:"coherence_score"`
	DominantTopic  *DominantTopic `json:"dominant_topic"`
}

// Stats describes how a result was produced.
type Stats struct {
	Tokens          int           `json:"tokens"`
	VocabularySize  int           `json:"vocabulary_size"`
	Passages        int           `json:"passages"`
	TopicsRequested int           `json:"topics_requested"`
	TopicsUsed      int           `json:"topics_used"`
	Backend         string        `json:"backend"`
	Measure         string        `json:"measure"`
	Granularity     string        `json:"granularity"`
	Elapsed         time.Duration `json:"elapsed_ns"`
}

// Config controls the analyzer.
type Config struct {
	LDA                 lda.Config        `yaml:"lda"`
	Measure             coherence.Measure `yaml:"coherence"`
	Window              int               `yaml:"window"`
	Granularity         Granularity       `yaml:"granularity"`
	SentencesPerPassage int               `yaml:"sentences_per_passage"`
}

// DefaultConfig returns the analyzer defaults.
func DefaultConfig() Config {
	return Config{
		LDA:                 lda.DefaultConfig(),
		Measure:             coherence.CV,
		Granularity:         Passage,
		SentencesPerPassage: ingest.DefaultSentencesPerPassage,
	}
}

// Analyzer runs the topic discovery pipeline. It holds only read-only
// configuration, so one Analyzer can serve concurrent calls; each call
// builds its own vocabulary and model.
type Analyzer struct {
	pipeline *ingest.Pipeline
	cfg      Config
	log      *slog.Logger
}

// NewAnalyzer validates cfg and builds an analyzer over normalizer.
func NewAnalyzer(normalizer *ingest.Normalizer, cfg Config) (*Analyzer, error) {
	if normalizer == nil {
		normalizer = ingest.NewNormalizer()
	}
	measure, err := coherence.ParseMeasure(string(cfg.Measure))
	if err != nil {
		return nil, err
	}
	cfg.Measure = measure
	switch cfg.Granularity {
	case "":
		cfg.Granularity = Passage
	case Passage, Document:
	default:
		return nil, fmt.Errorf("granularity %q: %w", cfg.Granularity, internalerr.ErrInvalidConfig)
	}
	if cfg.LDA.Backend == "" {
		cfg.LDA.Backend = lda.DefaultBackend
	}
	if cfg.LDA.NumTopics == 0 {
		cfg.LDA.NumTopics = lda.DefaultNumTopics
	}
	if _, err := lda.Lookup(cfg.LDA.Backend); err != nil {
		return nil, err
	}
	return &Analyzer{
		pipeline: ingest.NewPipeline(normalizer, cfg.SentencesPerPassage),
		cfg:      cfg,
		log:      logger.WithComponent("topics"),
	}, nil
}

// Config returns the analyzer configuration after defaults.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze discovers the configured number of topics in text.
func (a *Analyzer) Analyze(ctx context.Context, text string) (Result, error) {
	res, _, err := a.AnalyzeTopics(ctx, text, a.cfg.LDA.NumTopics)
	return res, err
}

// AnalyzeTopics discovers numTopics topics in text. Text without any
// content tokens yields an empty result and no error. numTopics below 1
// is treated as 1 and values above the vocabulary size are reduced to it.
func (a *Analyzer) AnalyzeTopics(ctx context.Context, text string, numTopics int) (Result, Stats, error) {
	start := time.Now()
	if numTopics < 1 {
		numTopics = 1
	}
	stats := Stats{
		TopicsRequested: numTopics,
		Backend:         a.cfg.LDA.Backend,
		Measure:         string(a.cfg.Measure),
		Granularity:     string(a.cfg.Granularity),
	}

	doc := a.pipeline.Process(text)
	stats.Tokens = len(doc.Tokens)
	if doc.Empty() {
		stats.Elapsed = time.Since(start)
		return emptyResult(), stats, nil
	}

	streams := doc.Passages
	if a.cfg.Granularity == Document || len(streams) == 0 {
		streams = [][]string{doc.Tokens}
	}
	dict, fitCorpus := vocab.Build(streams)
	docBow := dict.Doc2Bow(doc.Tokens)
	stats.VocabularySize = dict.Len()
	stats.Passages = len(streams)

	ldaCfg := a.cfg.LDA
	ldaCfg.NumTopics = numTopics
	fitStart := time.Now()
	model, err := lda.Fit(ctx, fitCorpus, dict, ldaCfg)
	if err != nil {
		return Result{}, stats, err
	}
	a.log.Debug("model fitted",
		"backend", ldaCfg.Backend,
		"topics", model.NumTopics(),
		"vocabulary", dict.Len(),
		"streams", len(streams),
		"duration", time.Since(fitStart))
	stats.TopicsUsed = model.NumTopics()

	res := Result{Topics: make([]Topic, 0, model.NumTopics())}
	for k := 0; k < model.NumTopics(); k++ {
		words := model.ShowTopic(k, KeywordsPerTopic)
		kws := make([]Keyword, len(words))
		for i, w := range words {
			if math.IsNaN(w.Probability) {
				return Result{}, stats, fmt.Errorf("topic %d word %q: %w", k+1, w.Word, internalerr.ErrAnalysisFailed)
			}
			kws[i] = Keyword{Word: w.Word, Probability: w.Probability}
		}
		res.Topics = append(res.Topics, Topic{
			ID:       k + 1,
			Keywords: kws,
			Summary:  summary.SummarizeTopic(words),
		})
	}

	scorer := coherence.NewScorer(a.cfg.Measure)
	scorer.Window = a.cfg.Window
	res.CoherenceScore = scorer.ScoreModel(model, dict, fitCorpus, streams)

	if best, ok := summary.DominantTopic(model.DocumentTopics(docBow)); ok {
		res.DominantTopic = &DominantTopic{
			TopicID:     best.TopicID + 1,
			Probability: best.Probability,
			Summary:     res.Topics[best.TopicID].Summary,
		}
	}

	stats.Elapsed = time.Since(start)
	return res, stats, nil
}

func emptyResult() Result {
	return Result{Topics: []Topic{}}
}
