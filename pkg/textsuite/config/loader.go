package config

import (
	"context"
	"fmt"

	"github.com/cognicore/textsuite/pkg/textsuite/extract"
	"github.com/cognicore/textsuite/pkg/textsuite/ingest"
	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/sentiment"
	"github.com/cognicore/textsuite/pkg/textsuite/stoplist"
	"github.com/cognicore/textsuite/pkg/textsuite/store"
	"github.com/cognicore/textsuite/pkg/textsuite/store/memstore"
	"github.com/cognicore/textsuite/pkg/textsuite/store/postgres"
	"github.com/cognicore/textsuite/pkg/textsuite/store/sqlite"
	"github.com/cognicore/textsuite/pkg/textsuite/topics"
)

// Loader constructs the analysis components described by a Config
type Loader struct {
	Config *Config
}

// Components holds the constructed analysis components
type Components struct {
	Stoplist   *stoplist.Manager
	Normalizer *ingest.Normalizer
	Topics     *topics.Analyzer
	Sentiment  *sentiment.Analyzer
	Extractor  *extract.Extractor
}

// Load builds the components. A nil Config uses Default.
func (l *Loader) Load() (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		cfg = Default()
	}
	comp := &Components{}

	terms := append([]string(nil), cfg.Stoplist.Extra...)
	if cfg.Stoplist.Path != "" {
		sl, err := LoadStoplist(cfg.Stoplist.Path)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		terms = append(terms, sl.Terms...)
	}
	comp.Stoplist = stoplist.NewManager(terms)
	comp.Normalizer = ingest.NewNormalizerFromManager(comp.Stoplist)
	if cfg.Stoplist.Stemming {
		comp.Normalizer = comp.Normalizer.WithStemming()
	}

	analyzer, err := topics.NewAnalyzer(comp.Normalizer, cfg.Topics)
	if err != nil {
		return nil, fmt.Errorf("topic analyzer: %w", err)
	}
	comp.Topics = analyzer
	comp.Sentiment = sentiment.NewAnalyzer()
	comp.Extractor = &extract.Extractor{
		MaxBytes: cfg.Extract.MaxBytes,
		Formats:  cfg.Extract.Formats,
	}
	return comp, nil
}

// OpenStore opens the report archive selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return memstore.New(), nil
	case DriverSQLite:
		return sqlite.OpenSQLite(ctx, cfg.Path)
	case DriverPostgres:
		return postgres.Open(ctx, cfg.DSN, postgres.Options{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
	default:
		return nil, fmt.Errorf("store driver %q: %w", cfg.Driver, internalerr.ErrInvalidConfig)
	}
}
