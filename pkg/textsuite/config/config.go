// Package config loads the textsuite configuration from YAML, an optional
// .env file and TEXTSUITE_* environment variables, in that order of
// precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/textsuite/pkg/textsuite/coherence"
	"github.com/cognicore/textsuite/pkg/textsuite/internalerr"
	"github.com/cognicore/textsuite/pkg/textsuite/topics"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the root configuration.
type Config struct {
	Topics   topics.Config  `yaml:"topics"`
	Stoplist StoplistConfig `yaml:"stoplist"`
	Logging  LoggingConfig  `yaml:"logging"`
	LLM      LLMConfig      `yaml:"llm"`
	Store    StoreConfig    `yaml:"store"`
	Cache    CacheConfig    `yaml:"cache"`
	Events   EventsConfig   `yaml:"events"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Extract  ExtractConfig  `yaml:"extract"`
}

// StoplistConfig adds to the built-in English stopwords.
type StoplistConfig struct {
	Path     string   `yaml:"path"`
	Extra    []string `yaml:"extra"`
	Stemming bool     `yaml:"stemming"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LLMConfig points at an OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// Configured reports whether paraphrase and chat can be served.
func (c LLMConfig) Configured() bool {
	return c.BaseURL != "" && c.Model != ""
}

type StoreConfig struct {
	Driver          string        `yaml:"driver"`
	Path            string        `yaml:"path"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// CacheConfig enables the Redis result cache when Addr is set.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// EventsConfig enables Kafka events when Brokers is non-empty.
type EventsConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type ExtractConfig struct {
	MaxBytes int64    `yaml:"max_bytes"`
	Formats  []string `yaml:"formats"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Topics: topics.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		LLM: LLMConfig{
			Timeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Driver:          DriverMemory,
			Path:            "textsuite.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Events: EventsConfig{
			Topic: "textsuite.analysis.completed",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Extract: ExtractConfig{
			MaxBytes: 20 << 20,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// environment. An empty path skips the file. A .env file in the working
// directory is loaded when present; variables already set win over it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path required for sqlite: %w", internalerr.ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn required for postgres: %w", internalerr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("store.driver %q: %w", c.Store.Driver, internalerr.ErrInvalidConfig)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q: %w", c.Logging.Format, internalerr.ErrInvalidConfig)
	}
	if c.Topics.LDA.NumTopics < 0 {
		return fmt.Errorf("topics.lda.num_topics %d: %w", c.Topics.LDA.NumTopics, internalerr.ErrInvalidConfig)
	}
	if len(c.Events.Brokers) > 0 && c.Events.Topic == "" {
		return fmt.Errorf("events.topic required with brokers: %w", internalerr.ErrInvalidConfig)
	}
	if c.Extract.MaxBytes < 0 {
		return fmt.Errorf("extract.max_bytes %d: %w", c.Extract.MaxBytes, internalerr.ErrInvalidConfig)
	}
	return nil
}

// applyEnvOverrides reads TEXTSUITE_* environment variables and overrides
// the corresponding config fields.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TEXTSUITE_NUM_TOPICS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TEXTSUITE_NUM_TOPICS=%q: %w", v, internalerr.ErrInvalidConfig)
		}
		cfg.Topics.LDA.NumTopics = n
	}
	if v := os.Getenv("TEXTSUITE_LDA_BACKEND"); v != "" {
		cfg.Topics.LDA.Backend = v
	}
	if v := os.Getenv("TEXTSUITE_COHERENCE"); v != "" {
		cfg.Topics.Measure = coherence.Measure(v)
	}
	if v := os.Getenv("TEXTSUITE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TEXTSUITE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TEXTSUITE_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("TEXTSUITE_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("TEXTSUITE_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("TEXTSUITE_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("TEXTSUITE_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("TEXTSUITE_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("TEXTSUITE_REDIS_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("TEXTSUITE_REDIS_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("TEXTSUITE_KAFKA_BROKERS"); v != "" {
		cfg.Events.Brokers = splitList(v)
	}
	if v := os.Getenv("TEXTSUITE_KAFKA_TOPIC"); v != "" {
		cfg.Events.Topic = v
	}
	if v := os.Getenv("TEXTSUITE_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TEXTSUITE_METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TEXTSUITE_METRICS_ENABLED=%q: %w", v, internalerr.ErrInvalidConfig)
		}
		cfg.Metrics.Enabled = enabled
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Stoplist represents a stopword file
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
