package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-clinic/cache"
)

// DefaultScanCount is the COUNT hint passed to Redis SCAN.
const DefaultScanCount = 200

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	// Addr is the host:port of the Redis server. Required.
	Addr string

	// Password is the optional AUTH credential.
	Password string

	// DB selects the Redis logical database.
	DB int

	// Namespace is prepended to every key so scans stay inside this
	// backend's own keyspace. Defaults to "clinic:".
	Namespace string

	// ScanCount is the COUNT hint for SCAN. Zero selects DefaultScanCount.
	ScanCount int
}

// Validate checks if the configuration values are valid.
func (c RedisConfig) Validate() error {
	if c.Addr == "" {
		return &cache.ConfigError{Field: "Addr", Message: "must not be empty"}
	}
	if c.ScanCount < 0 {
		return &cache.ConfigError{Field: "ScanCount", Message: "must not be negative"}
	}
	return nil
}

// Interface assertion to ensure RedisBackend implements cache.Backend
var _ cache.Backend = (*RedisBackend)(nil)

// RedisBackend implements cache.Backend on a shared Redis instance. Expiry
// is delegated to Redis TTLs; pattern enumeration uses SCAN with a MATCH
// glob, which maps one-to-one onto the key-pattern grammar.
type RedisBackend struct {
	rdb       redis.UniversalClient
	namespace string
	scanCount int64
}

// NewRedisBackend connects a backend to Redis. The connection is lazy; a
// dead server surfaces as per-operation errors, which the cache behavior
// swallows into misses.
func NewRedisBackend(cfg RedisConfig) (*RedisBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisBackendWithClient(rdb, cfg), nil
}

// NewRedisBackendWithClient wraps an existing client, e.g. a cluster or
// sentinel client shared with other subsystems.
func NewRedisBackendWithClient(rdb redis.UniversalClient, cfg RedisConfig) *RedisBackend {
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "clinic:"
	}
	scanCount := int64(cfg.ScanCount)
	if scanCount == 0 {
		scanCount = DefaultScanCount
	}
	return &RedisBackend{rdb: rdb, namespace: namespace, scanCount: scanCount}
}

// Close releases the underlying connection pool.
func (b *RedisBackend) Close() error { return b.rdb.Close() }

// Get implements cache.Backend.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.rdb.Get(ctx, b.namespaced(key)).Bytes()
	if err == redis.Nil {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set implements cache.Backend.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return &cache.ConfigError{Field: "ttl", Message: "must be greater than 0"}
	}
	return b.rdb.Set(ctx, b.namespaced(key), value, ttl).Err()
}

// Delete implements cache.Backend.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.rdb.Del(ctx, b.namespaced(key)).Err()
}

// Keys implements cache.Backend. SCAN never blocks the server the way KEYS
// would; the namespace prefix keeps the cursor inside this backend's
// keyspace.
func (b *RedisBackend) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := b.rdb.Scan(ctx, 0, b.namespaced(pattern), b.scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), b.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteMany implements cache.Backend. The batch goes out as a single DEL.
func (b *RedisBackend) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, len(keys))
	for i, key := range keys {
		namespaced[i] = b.namespaced(key)
	}
	return b.rdb.Del(ctx, namespaced...).Err()
}

func (b *RedisBackend) namespaced(key string) string {
	return b.namespace + key
}
