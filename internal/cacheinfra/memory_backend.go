// Package cacheinfra holds the cache.Backend implementations: an in-process
// sturdyc-backed store and a Redis-backed store. Both enforce the mandatory
// positive TTL and keep key enumeration inside their own namespace.
package cacheinfra

import (
	"context"
	"path"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-clinic/cache"
)

// MemoryConfig configures the in-process backend.
type MemoryConfig struct {
	// Capacity is the maximum number of entries. Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent
	// access. Must be greater than 0.
	NumShards int

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches capacity. Must be between 1-100.
	EvictionPercentage int

	// MaxTTL is the client-wide eviction backstop. Per-key TTLs are
	// tracked separately and must not exceed it. Must be greater than 0.
	MaxTTL time.Duration
}

// DefaultMemoryConfig returns a MemoryConfig with sensible defaults.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           10000,
		NumShards:          256,
		EvictionPercentage: 10,
		MaxTTL:             time.Hour,
	}
}

// Validate checks if the configuration values are valid.
func (c MemoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return &cache.ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &cache.ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &cache.ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	if c.MaxTTL <= 0 {
		return &cache.ConfigError{Field: "MaxTTL", Message: "must be greater than 0"}
	}
	return nil
}

// Interface assertion to ensure MemoryBackend implements cache.Backend
var _ cache.Backend = (*MemoryBackend)(nil)

// MemoryBackend stores payloads in a sturdyc client and tracks per-key
// expiry deadlines on the side, since sturdyc's TTL is client-wide. Expired
// entries are dropped lazily on read and during key scans.
type MemoryBackend struct {
	client    *sturdyc.Client[[]byte]
	deadlines *xsync.MapOf[string, time.Time]

	// now is replaceable in tests.
	now func() time.Time
}

// NewMemoryBackend creates an in-process backend.
func NewMemoryBackend(cfg MemoryConfig) (*MemoryBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[[]byte](cfg.Capacity, cfg.NumShards, cfg.MaxTTL, cfg.EvictionPercentage)
	return &MemoryBackend{
		client:    client,
		deadlines: xsync.NewMapOf[string, time.Time](),
		now:       time.Now,
	}, nil
}

// Get implements cache.Backend.
func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if b.expired(key) {
		b.drop(key)
		return nil, cache.ErrNotFound
	}
	data, ok := b.client.Get(key)
	if !ok {
		// Evicted by sturdyc; the deadline entry is stale.
		b.deadlines.Delete(key)
		return nil, cache.ErrNotFound
	}
	return data, nil
}

// Set implements cache.Backend.
func (b *MemoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return &cache.ConfigError{Field: "ttl", Message: "must be greater than 0"}
	}
	b.client.Set(key, value)
	b.deadlines.Store(key, b.now().Add(ttl))
	return nil
}

// Delete implements cache.Backend.
func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	b.drop(key)
	return nil
}

// Keys implements cache.Backend. The pattern uses glob syntax where `*`
// matches any suffix; keys never contain slashes, so path.Match semantics
// line up with the grammar.
func (b *MemoryBackend) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	for _, key := range b.client.ScanKeys() {
		if b.expired(key) {
			b.drop(key)
			continue
		}
		if ok, err := path.Match(pattern, key); err == nil && ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// DeleteMany implements cache.Backend.
func (b *MemoryBackend) DeleteMany(ctx context.Context, keys []string) error {
	for _, key := range keys {
		b.drop(key)
	}
	return nil
}

func (b *MemoryBackend) expired(key string) bool {
	deadline, ok := b.deadlines.Load(key)
	return ok && !b.now().Before(deadline)
}

func (b *MemoryBackend) drop(key string) {
	b.client.Delete(key)
	b.deadlines.Delete(key)
}
