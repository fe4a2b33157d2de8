// Package redis implements Redis caching for Hifz Progress Hub.
// Progress summaries are expensive to aggregate and read far more often
// than they change, so they live here behind a short TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config describes the Redis connection and pool limits.
type Config struct {
	// Host and Port locate the Redis server.
	Host string
	Port int

	// Password authenticates the connection; empty disables auth.
	Password string

	// DB selects the logical database, 0 through 15.
	DB int

	// PoolSize caps open sockets, MinIdleConns keeps warm spares.
	PoolSize     int
	MinIdleConns int

	// MaxRetries bounds command retries inside the driver.
	MaxRetries int

	// Timeouts for dialing, socket reads, socket writes, and pool
	// checkout respectively.
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

// DefaultConfig returns settings suitable for a local or small
// single-instance deployment.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
}

// Addr joins host and port for the driver.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrCacheMiss reports a key with no cached value. Callers treat
	// it as a signal to aggregate from storage, never as a failure.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCacheConnection reports that Redis could not be reached.
	ErrCacheConnection = errors.New("cache: connection failed")

	// ErrCacheSerialization reports a JSON encode or decode failure.
	ErrCacheSerialization = errors.New("cache: serialization failed")

	// ErrCacheInvalidTTL reports a negative TTL.
	ErrCacheInvalidTTL = errors.New("cache: invalid TTL")

	// ErrCacheKeyEmpty reports an empty cache key.
	ErrCacheKeyEmpty = errors.New("cache: key cannot be empty")

	// ErrCacheNilValue reports an attempt to store nil.
	ErrCacheNilValue = errors.New("cache: value cannot be nil")
)

// PrefixSummary namespaces progress summary keys.
const PrefixSummary = "summary:"

// TTLSummaryCache is the fallback TTL for progress summaries when the
// caller does not supply one.
const TTLSummaryCache = 5 * time.Minute

// ══════════════════════════════════════════════════════════════════════════════
// CACHE CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Cache is a thin JSON layer over the Redis client. Values go in as
// JSON and come out into caller-supplied destinations.
type Cache struct {
	client *redis.Client
	config Config
}

// NewCache dials Redis and fails fast when the server does not answer
// a ping within the dial timeout.
func NewCache(cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	return &Cache{
		client: client,
		config: cfg,
	}, nil
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping reports whether Redis answers.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Set serializes value to JSON and stores it under key for ttl.
// A zero ttl stores the value without expiry.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrCacheKeyEmpty
	}
	if value == nil {
		return ErrCacheNilValue
	}
	if ttl < 0 {
		return ErrCacheInvalidTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Get loads the value under key into dest. A missing key yields
// ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	if key == "" {
		return ErrCacheKeyEmpty
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	return nil
}

// Delete removes the given keys. Deleting nothing is not an error.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return c.client.Del(ctx, keys...).Err()
}

// SummaryKey builds the cache key for one child's progress summary.
func SummaryKey(childID string) string {
	return PrefixSummary + childID
}
