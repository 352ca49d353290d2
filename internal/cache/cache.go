// Package cache keeps finished topic analyses in Redis so that repeated
// requests for the same text and settings skip the fit.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/cognicore/textsuite/internal/logger"
	"github.com/cognicore/textsuite/internal/metrics"
	"github.com/cognicore/textsuite/pkg/textsuite/topics"
)

const keyPrefix = "textsuite:topics:"

// ErrMiss is returned by a Backend for unknown keys.
var ErrMiss = errors.New("cache miss")

// Backend stores raw values with a TTL.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Entry is a cached analysis.
type Entry struct {
	Result topics.Result `json:"result"`
	Stats  topics.Stats  `json:"stats"`
}

// Cache looks up analyses by text and settings fingerprint.
type Cache struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New wraps backend. m may be nil.
func New(backend Backend, ttl time.Duration, m *metrics.Metrics) *Cache {
	return &Cache{
		backend: backend,
		ttl:     ttl,
		metrics: m,
		logger:  logger.WithComponent("result-cache"),
	}
}

// Key derives the cache key for text analysed with the settings described
// by fingerprint.
func Key(text, fingerprint string) string {
	h := sha256.New()
	h.Write([]byte(fingerprint))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return fmt.Sprintf("%s%x", keyPrefix, h.Sum(nil))
}

// Get returns the cached entry for key. Backend failures count as misses.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool) {
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return Entry{}, false
	}
	c.hits.Add(1)
	c.metrics.ObserveCache(true)
	return e, true
}

// Set stores e under key. Failures are logged.
func (c *Cache) Set(ctx context.Context, key string, e Entry) {
	data, err := json.Marshal(e)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached entry for key or computes and stores it.
// Concurrent calls for the same key share one computation. The boolean
// reports a cache hit.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func() (Entry, error)) (Entry, bool, error) {
	if e, ok := c.Get(ctx, key); ok {
		return e, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		e, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, e)
		return e, nil
	})
	if err != nil {
		return Entry{}, false, err
	}
	return val.(Entry), false, nil
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close closes the backend.
func (c *Cache) Close() error {
	return c.backend.Close()
}

func (c *Cache) miss() {
	c.misses.Add(1)
	c.metrics.ObserveCache(false)
}

// RedisOptions selects the Redis server.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

type redisBackend struct {
	rdb *redis.Client
}

// NewRedis connects to Redis and verifies the connection with a PING.
func NewRedis(ctx context.Context, opts RedisOptions) (Backend, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &redisBackend{rdb: rdb}, nil
}

func (b *redisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

func (b *redisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.rdb.Set(ctx, key, value, ttl).Err()
}

func (b *redisBackend) Close() error {
	return b.rdb.Close()
}
