// Package textsuite ties extraction, topic discovery, sentiment scoring,
// paraphrasing and the report archive into one service object.
package textsuite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cognicore/textsuite/internal/cache"
	"github.com/cognicore/textsuite/internal/events"
	"github.com/cognicore/textsuite/internal/llm"
	"github.com/cognicore/textsuite/internal/logger"
	"github.com/cognicore/textsuite/internal/metrics"
	"github.com/cognicore/textsuite/pkg/textsuite/extract"
	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/report"
	"github.com/cognicore/textsuite/pkg/textsuite/sentiment"
	"github.com/cognicore/textsuite/pkg/textsuite/store"
	"github.com/cognicore/textsuite/pkg/textsuite/store/memstore"
	"github.com/cognicore/textsuite/pkg/textsuite/topics"
)

// Suite is the main text analysis facade
type Suite struct {
	extractor *extract.Extractor
	topics    *topics.Analyzer
	sentiment *sentiment.Analyzer
	history   *sentiment.History
	llm       *llm.Client
	sessions  *llm.Sessions
	store     store.Store
	reports   *report.Builder
	metrics   *metrics.Metrics
	cache     *cache.Cache
	events    events.Publisher
	log       *slog.Logger
}

// Options configures a Suite. Nil fields get defaults: the default topic
// analyzer, an in-memory archive, no cache, no events and no metrics. A
// nil or unconfigured LLM disables paraphrase and chat.
type Options struct {
	Extractor *extract.Extractor
	Topics    *topics.Analyzer
	Sentiment *sentiment.Analyzer
	LLM       *llm.Client
	Store     store.Store
	Reports   *report.Builder

	Metrics *metrics.Metrics
	Cache   *cache.Cache
	Events  events.Publisher
	// ChatSessions bounds the number of live chat sessions.
	ChatSessions int
	// SentimentHistory bounds the remembered sentiment results.
	SentimentHistory int
}

// DefaultSentimentHistory is used when Options leaves SentimentHistory unset.
const DefaultSentimentHistory = 100

// New creates a Suite with the given dependencies
func New(opts Options) (*Suite, error) {
	s := &Suite{
		extractor: opts.Extractor,
		topics:    opts.Topics,
		sentiment: opts.Sentiment,
		history:   &sentiment.History{Limit: opts.SentimentHistory},
		llm:       opts.LLM,
		store:     opts.Store,
		reports:   opts.Reports,
		metrics:   opts.Metrics,
		cache:     opts.Cache,
		events:    opts.Events,
		log:       logger.WithComponent("suite"),
	}
	if s.extractor == nil {
		s.extractor = extract.New()
	}
	if s.topics == nil {
		a, err := topics.NewAnalyzer(nil, topics.DefaultConfig())
		if err != nil {
			return nil, err
		}
		s.topics = a
	}
	if s.sentiment == nil {
		s.sentiment = sentiment.NewAnalyzer()
	}
	if s.history.Limit <= 0 {
		s.history.Limit = DefaultSentimentHistory
	}
	if s.store == nil {
		s.store = memstore.New()
	}
	if s.reports == nil {
		s.reports = report.New()
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.llm.Configured() {
		sessions, err := llm.NewSessions(s.llm, "", opts.ChatSessions)
		if err != nil {
			return nil, err
		}
		s.sessions = sessions
	}
	return s, nil
}

// Close releases the archive, the cache and the event publisher.
func (s *Suite) Close() error {
	var errs []error
	errs = append(errs, s.store.Close(), s.events.Close())
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	return errors.Join(errs...)
}

// Upload is a document to analyse.
type Upload struct {
	Name string
	Body io.Reader
	// NumTopics overrides the configured topic count when non-zero.
	NumTopics int
}

// Supported reports whether the extractor accepts name.
func (s *Suite) Supported(name string) bool {
	return s.extractor.Supported(name)
}

// AnalyzeDocument extracts the text of an upload and analyses it.
func (s *Suite) AnalyzeDocument(ctx context.Context, up Upload) (report.Report, error) {
	start := time.Now()
	text, err := s.extractor.Extract(ctx, up.Name, up.Body)
	s.metrics.ObserveAnalysis(metrics.KindExtract, start, err)
	if err != nil {
		return report.Report{}, err
	}
	return s.AnalyzeText(ctx, up.Name, text, up.NumTopics)
}

// AnalyzeText discovers topics in text and archives the result as a report
// named name. numTopics 0 uses the configured count; negative counts are
// clamped to one topic.
func (s *Suite) AnalyzeText(ctx context.Context, name, text string, numTopics int) (report.Report, error) {
	start := time.Now()
	if numTopics == 0 {
		numTopics = s.topics.Config().LDA.NumTopics
	}
	log := logger.FromContext(ctx).With("component", "suite", "name", name)

	entry, cached, err := s.analyze(ctx, text, numTopics)
	s.metrics.ObserveAnalysis(metrics.KindTopics, start, err)
	if err != nil {
		log.Error("topic analysis failed", "error", err)
		return report.Report{}, err
	}
	s.metrics.ObserveCoherence(entry.Result.CoherenceScore)

	r := s.reports.Build(name, entry.Result, entry.Stats)
	if err := s.store.SaveReport(ctx, r); err != nil {
		return report.Report{}, fmt.Errorf("archive report: %w", err)
	}
	log.Info("analysis archived",
		"report_id", r.ID,
		"topics", len(r.Result.Topics),
		"coherence", r.Result.CoherenceScore,
		"cached", cached,
		"duration", time.Since(start))

	err = s.events.Publish(ctx, events.AnalysisCompleted{
		ReportID:   r.ID,
		Name:       r.Name,
		Topics:     len(r.Result.Topics),
		Coherence:  r.Result.CoherenceScore,
		Confidence: r.Confidence,
		DurationMS: time.Since(start).Milliseconds(),
		At:         r.CreatedAt,
	})
	s.metrics.ObserveEvent(err)
	if err != nil {
		log.Warn("analysis event not published", "report_id", r.ID, "error", err)
	}
	return r, nil
}

func (s *Suite) analyze(ctx context.Context, text string, numTopics int) (cache.Entry, bool, error) {
	compute := func() (cache.Entry, error) {
		res, stats, err := s.topics.AnalyzeTopics(ctx, text, numTopics)
		return cache.Entry{Result: res, Stats: stats}, err
	}
	if s.cache == nil {
		e, err := compute()
		return e, false, err
	}
	return s.cache.GetOrCompute(ctx, cache.Key(text, s.fingerprint(numTopics)), compute)
}

// fingerprint identifies the settings a result depends on.
func (s *Suite) fingerprint(numTopics int) string {
	cfg := s.topics.Config()
	cfg.LDA.NumTopics = numTopics
	data, err := json.Marshal(cfg)
	if err != nil {
		// Config holds only plain values; fall back to the printed form.
		return fmt.Sprintf("%+v", cfg)
	}
	return string(data)
}

// Sentiment scores text and remembers the result.
func (s *Suite) Sentiment(text string) sentiment.Result {
	start := time.Now()
	res := s.sentiment.Analyze(text)
	s.metrics.ObserveAnalysis(metrics.KindSentiment, start, nil)
	s.history.Add(res)
	return res
}

// SentimentHistory returns the remembered sentiment results, oldest first.
func (s *Suite) SentimentHistory() []sentiment.Result {
	return s.history.All()
}

// ClearSentimentHistory forgets every sentiment result.
func (s *Suite) ClearSentimentHistory() {
	s.history.Clear()
}

// Paraphrase rewrites text through the language model.
func (s *Suite) Paraphrase(ctx context.Context, text string) (string, error) {
	if !s.llm.Configured() {
		return "", fmt.Errorf("paraphrase: language model not configured: %w", internalerr.ErrInvalidConfig)
	}
	start := time.Now()
	out, err := s.llm.Paraphrase(ctx, text)
	s.metrics.ObserveAnalysis(metrics.KindParaphrase, start, err)
	return out, err
}

// ChatReply is the answer to one chat message.
type ChatReply struct {
	SessionID string        `json:"session_id"`
	Reply     string        `json:"reply"`
	History   []llm.Message `json:"history"`
}

// Chat sends msg in the session sessionID. An empty or expired id starts a
// new session; the reply carries the id to continue with.
func (s *Suite) Chat(ctx context.Context, sessionID, msg string) (ChatReply, error) {
	if s.sessions == nil {
		return ChatReply{}, fmt.Errorf("chat: language model not configured: %w", internalerr.ErrInvalidConfig)
	}
	if strings.TrimSpace(msg) == "" {
		return ChatReply{}, fmt.Errorf("chat: empty message: %w", internalerr.ErrInvalidInput)
	}
	start := time.Now()
	sess := s.sessions.Get(sessionID)
	reply, err := sess.Send(ctx, msg)
	s.metrics.ObserveAnalysis(metrics.KindChat, start, err)
	if err != nil {
		return ChatReply{}, err
	}
	return ChatReply{SessionID: sess.ID, Reply: reply, History: sess.History()}, nil
}

// Report returns an archived report.
func (s *Suite) Report(ctx context.Context, id string) (report.Report, error) {
	if _, err := report.ParseID(id); err != nil {
		return report.Report{}, fmt.Errorf("report id %q: %w", id, internalerr.ErrNotFound)
	}
	return s.store.GetReport(ctx, id)
}

// Reports lists archived reports, newest first.
func (s *Suite) Reports(ctx context.Context, limit int) ([]report.Report, error) {
	return s.store.ListReports(ctx, limit)
}
