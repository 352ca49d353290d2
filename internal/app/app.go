// Package app wires a textsuite.Suite from a loaded configuration.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cognicore/textsuite/internal/cache"
	"github.com/cognicore/textsuite/internal/events"
	"github.com/cognicore/textsuite/internal/llm"
	"github.com/cognicore/textsuite/internal/logger"
	"github.com/cognicore/textsuite/internal/metrics"
	"github.com/cognicore/textsuite/pkg/textsuite"
	"github.com/cognicore/textsuite/pkg/textsuite/config"
)

// App is a wired suite plus the optional metrics it reports to.
type App struct {
	Suite      *textsuite.Suite
	Metrics    *metrics.Metrics
	Config     *config.Config
	Components *config.Components
	// LLM is nil when no language model is configured.
	LLM *llm.Client
}

// New builds the suite described by cfg. The cache and event producer are
// only created when their addresses are configured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.WithComponent("app")

	components, err := (&config.Loader{Config: cfg}).Load()
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	st, err := config.OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	opts := textsuite.Options{
		Extractor: components.Extractor,
		Topics:    components.Topics,
		Sentiment: components.Sentiment,
		Store:     st,
		Metrics:   m,
	}

	if cfg.LLM.Configured() {
		opts.LLM = &llm.Client{
			BaseURL:    cfg.LLM.BaseURL,
			APIKey:     cfg.LLM.APIKey,
			Model:      cfg.LLM.Model,
			HTTPClient: &http.Client{Timeout: cfg.LLM.Timeout},
		}
	}

	if cfg.Cache.Addr != "" {
		backend, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			st.Close()
			return nil, err
		}
		opts.Cache = cache.New(backend, cfg.Cache.TTL, m)
		log.Info("result cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
	}

	if len(cfg.Events.Brokers) > 0 {
		opts.Events = events.NewProducer(cfg.Events.Brokers, cfg.Events.Topic)
		log.Info("analysis events enabled", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
	}

	suite, err := textsuite.New(opts)
	if err != nil {
		st.Close()
		return nil, err
	}
	log.Info("suite ready",
		"store", cfg.Store.Driver,
		"backend", cfg.Topics.LDA.Backend,
		"coherence", cfg.Topics.Measure,
		"llm", cfg.LLM.Configured())
	return &App{Suite: suite, Metrics: m, Config: cfg, Components: components, LLM: opts.LLM}, nil
}

// Close releases everything the suite holds.
func (a *App) Close() error {
	return a.Suite.Close()
}
