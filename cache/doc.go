// Package cache provides the tenant-scoped cache key grammar and the
// cacheable repository behavior shared by every domain repository.
//
// # Overview
//
// The package exports two building blocks:
//
//   - Backend: A byte-oriented key/value contract with TTL expiry,
//     glob-style key enumeration, and batch delete
//   - Ops: Per-repository behavior (key construction, read-through reads,
//     invalidation-on-write) configured with a domain prefix and default TTL
//
// Backends live in internal/cacheinfra; repositories compose an Ops instance
// rather than talking to a backend directly.
//
// # Key Grammar
//
// All keys are colon-delimited and start with the repository's domain prefix:
//
//	{prefix}:id:{id}                       single record, global scope
//	{prefix}:tenant:{tenantID}:id:{id}     single record, tenant scope
//	{prefix}:list:{tenantID}               tenant list, no filters
//	{prefix}:list:{tenantID}:{filterHash}  tenant list, filtered
//
// The filter hash is computed over the filter mapping sorted by key, so
// semantically identical filter sets hash identically regardless of
// insertion order. Wildcard patterns ({prefix}:list:{tenantID}:* and
// {prefix}:tenant:{tenantID}:*) are used only for bulk invalidation, never
// for direct lookup.
//
// # Caching Policy
//
// Read-through, write-invalidate. Reads populate the cache lazily on miss;
// writes only evict the affected keys so the next read recomputes from the
// authoritative store. Values are never pushed into the cache after a
// mutation, which rules out caching a value that differs from what the store
// actually persisted (database-side defaulting, triggers).
//
// # Fault Tolerance
//
// The cache is a pure optimization. Every backend fault is logged at warn
// level and collapsed into a miss-like outcome: Read returns
// LookupUnavailable, Write returns false, invalidation becomes a no-op.
// Callers of this package never receive a cache error.
//
// # Basic Usage
//
//	ops, err := cache.NewOps(backend, cache.Config{Prefix: "user"})
//	if err != nil {
//		return err
//	}
//
//	key := ops.KeyByTenantAndID(tenantID, id)
//	if rec, res := cache.Read[store.Record](ctx, ops, key); res.Hit() {
//		return rec, nil
//	}
//	rec, err := st.FindByID(ctx, id)
//	// ... tenant check ...
//	cache.Write(ctx, ops, key, rec)
package cache
