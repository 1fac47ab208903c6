package cache

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Ops is the cacheable repository behavior: key construction, read-through
// reads, and invalidation-on-write, configured once per repository with its
// own prefix and default TTL.
//
// The policy is read-through, write-invalidate. Ops never pre-warms entries
// and never pushes fresh values after a mutation; it only evicts, so the next
// read recomputes from the authoritative store. Every backend fault is
// swallowed here: reads degrade to a miss, writes report "not applied",
// invalidation becomes a no-op. Callers never see a cache error.
type Ops struct {
	backend Backend
	prefix  string
	ttl     time.Duration
	log     zerolog.Logger
	metrics Metrics
}

// NewOps builds the cache behavior for one repository domain.
func NewOps(backend Backend, cfg Config) (*Ops, error) {
	if backend == nil {
		return nil, &ConfigError{Field: "Backend", Message: "must not be nil"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Ops{
		backend: backend,
		prefix:  cfg.Prefix,
		ttl:     ttl,
		log:     cfg.Logger.With().Str("cache_prefix", cfg.Prefix).Logger(),
		metrics: metrics,
	}, nil
}

// Prefix returns the domain segment this behavior was configured with.
func (o *Ops) Prefix() string { return o.prefix }

// TTL returns the default time-to-live applied to writes.
func (o *Ops) TTL() time.Duration { return o.ttl }

// Read fetches and decodes a cached value. A backend failure or an
// undecodable payload yields LookupUnavailable, which callers treat exactly
// like a miss.
func Read[T any](ctx context.Context, o *Ops, key string) (T, Lookup) {
	var zero T
	data, err := o.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		o.metrics.CacheMiss(o.prefix)
		return zero, LookupMiss
	}
	if err != nil {
		o.metrics.CacheFault(o.prefix)
		o.log.Warn().Str("key", key).Err(err).Msg("cache read failed, treating as miss")
		return zero, LookupUnavailable
	}

	var v T
	if err := decode(data, &v); err != nil {
		o.metrics.CacheFault(o.prefix)
		o.log.Warn().Str("key", key).Err(err).Msg("cache payload undecodable, treating as miss")
		return zero, LookupUnavailable
	}
	o.metrics.CacheHit(o.prefix)
	return v, LookupHit
}

// Write stores a value under the behavior's default TTL. It reports whether
// the write was applied; failures are logged and swallowed.
func Write[T any](ctx context.Context, o *Ops, key string, v T) bool {
	return WriteTTL(ctx, o, key, v, o.ttl)
}

// WriteTTL stores a value with an explicit TTL. Non-positive TTLs fall back
// to the default: entries are never permanent.
func WriteTTL[T any](ctx context.Context, o *Ops, key string, v T, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = o.ttl
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		o.metrics.CacheFault(o.prefix)
		o.log.Warn().Str("key", key).Err(err).Msg("cache value not serializable, skipping write")
		return false
	}
	if err := o.backend.Set(ctx, key, data, ttl); err != nil {
		o.metrics.CacheFault(o.prefix)
		o.log.Warn().Str("key", key).Err(err).Msg("cache write failed")
		return false
	}
	return true
}

// InvalidateRecord deletes the by-id entry for a record, plus the
// by-tenant-and-id entry when the tenant is known. A tenantID of zero means
// the tenant is unknown at the call site.
func (o *Ops) InvalidateRecord(ctx context.Context, id, tenantID int64) {
	keys := []string{o.KeyByID(id)}
	if tenantID > 0 {
		keys = append(keys, o.KeyByTenantAndID(tenantID, id))
	}
	o.deleteBatch(ctx, keys)
}

// InvalidateTenantLists removes every list entry for a tenant in one batch.
// Backend unavailability makes this a no-op, not an error.
func (o *Ops) InvalidateTenantLists(ctx context.Context, tenantID int64) {
	keys, ok := o.matchKeys(ctx, o.ListPattern(tenantID))
	if !ok {
		return
	}
	// The unfiltered list key carries no hash segment, so the pattern
	// cannot match it.
	keys = append(keys, o.ListKey(tenantID, nil))
	o.deleteBatch(ctx, keys)
}

// InvalidateTenant removes every list entry and every tenant-scoped record
// entry for a tenant in one batch. Used for tenant-level resets.
func (o *Ops) InvalidateTenant(ctx context.Context, tenantID int64) {
	lists, ok := o.matchKeys(ctx, o.ListPattern(tenantID))
	if !ok {
		return
	}
	records, ok := o.matchKeys(ctx, o.TenantPattern(tenantID))
	if !ok {
		return
	}
	keys := append(lists, records...)
	keys = append(keys, o.ListKey(tenantID, nil))
	o.deleteBatch(ctx, keys)
}

func (o *Ops) matchKeys(ctx context.Context, pattern string) ([]string, bool) {
	keys, err := o.backend.Keys(ctx, pattern)
	if err != nil {
		o.metrics.CacheFault(o.prefix)
		o.log.Warn().Str("pattern", pattern).Err(err).Msg("cache key scan failed, skipping invalidation")
		return nil, false
	}
	return keys, true
}

func (o *Ops) deleteBatch(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := o.backend.DeleteMany(ctx, keys); err != nil {
		o.metrics.CacheFault(o.prefix)
		o.log.Warn().Strs("keys", keys).Err(err).Msg("cache invalidation failed")
		return
	}
	o.metrics.Invalidation(o.prefix, len(keys))
}

func decode(data []byte, dest any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	// Loose decoding keeps round-trips type-stable: integers come back as
	// int64 and sequences as []any regardless of their wire width.
	dec.UseLooseInterfaceDecoding(true)
	return dec.Decode(dest)
}
