// Package repository holds the tenant-scoped domain repositories. Each
// repository is the sole owner of its authoritative store and composes a
// cache.Ops instance configured with its own key prefix and TTL.
//
// # Read Path
//
// Reads are cache-first: build the deterministic key, try the cache, and on
// a miss (or an unavailable backend) fall through to the store and populate
// the entry. Tenant-checked lookups re-verify ownership on every miss; the
// unchecked FindByID variant exists for system-internal call sites only.
//
// # Write Path
//
// Writes mutate the store first, then evict the affected entries: the by-id
// key, the by-tenant-and-id key, and the tenant's list keys. Values are
// never written back after a mutation, so the next read always recomputes
// from the store. Within one request invalidation happens strictly after
// the store write; across concurrent requests a reader racing a writer can
// observe a stale entry in the window between commit and eviction. That gap
// is accepted: no locks or cross-system transactions are used.
//
// # Error Policy
//
// Store errors propagate unchanged to the caller; the store is
// authoritative and its failures are application-visible. Cache errors are
// swallowed and logged inside the cache package and never surface here.
package repository
