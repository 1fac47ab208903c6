package cache_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-clinic/cache"
	"github.com/goliatone/go-clinic/pkg/testsupport"
	"github.com/goliatone/go-clinic/store"
)

func newOps(t *testing.T, backend cache.Backend) *cache.Ops {
	t.Helper()
	ops, err := cache.NewOps(backend, cache.Config{Prefix: "user"})
	if err != nil {
		t.Fatalf("NewOps: %v", err)
	}
	return ops
}

func TestNewOpsValidation(t *testing.T) {
	backend := testsupport.NewFakeBackend()

	tests := []struct {
		name    string
		backend cache.Backend
		cfg     cache.Config
		wantErr bool
	}{
		{"valid", backend, cache.Config{Prefix: "user"}, false},
		{"nil backend", nil, cache.Config{Prefix: "user"}, true},
		{"empty prefix", backend, cache.Config{}, true},
		{"prefix with separator", backend, cache.Config{Prefix: "user:x"}, true},
		{"prefix with wildcard", backend, cache.Config{Prefix: "user*"}, true},
		{"negative ttl", backend, cache.Config{Prefix: "user", TTL: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cache.NewOps(tt.backend, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewOps error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewOpsDefaultTTL(t *testing.T) {
	ops := newOps(t, testsupport.NewFakeBackend())
	if got := ops.TTL(); got != cache.DefaultTTL {
		t.Errorf("default TTL = %v, want %v", got, cache.DefaultTTL)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	ctx := context.Background()
	ops := newOps(t, testsupport.NewFakeBackend())

	rec := store.Record{"id": int64(42), "tenant_id": int64(7), "email": "a@b.com"}
	key := ops.KeyByID(42)

	if !cache.Write(ctx, ops, key, rec) {
		t.Fatal("Write reported not applied")
	}

	got, res := cache.Read[store.Record](ctx, ops, key)
	if res != cache.LookupHit {
		t.Fatalf("Read result = %v, want hit", res)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("round trip mismatch: got %#v, want %#v", got, rec)
	}
}

func TestReadWriteRoundTripList(t *testing.T) {
	ctx := context.Background()
	ops := newOps(t, testsupport.NewFakeBackend())

	records := []store.Record{
		{"id": int64(1), "tenant_id": int64(7), "role": "viewer"},
		{"id": int64(2), "tenant_id": int64(7), "role": "admin"},
	}
	key := ops.ListKey(7, map[string]any{"status": "active"})

	if !cache.Write(ctx, ops, key, records) {
		t.Fatal("Write reported not applied")
	}
	got, res := cache.Read[[]store.Record](ctx, ops, key)
	if res != cache.LookupHit {
		t.Fatalf("Read result = %v, want hit", res)
	}
	if !reflect.DeepEqual(got, records) {
		t.Errorf("round trip mismatch: got %#v, want %#v", got, records)
	}
}

func TestReadMissOnAbsentKey(t *testing.T) {
	ctx := context.Background()
	ops := newOps(t, testsupport.NewFakeBackend())

	if _, res := cache.Read[store.Record](ctx, ops, ops.KeyByID(404)); res != cache.LookupMiss {
		t.Errorf("Read result = %v, want miss", res)
	}
}

func TestReadUnavailableOnBackendFault(t *testing.T) {
	ctx := context.Background()
	backend := testsupport.NewFakeBackend()
	ops := newOps(t, backend)

	backend.FailGets = true
	rec, res := cache.Read[store.Record](ctx, ops, ops.KeyByID(5))
	if res != cache.LookupUnavailable {
		t.Errorf("Read result = %v, want unavailable", res)
	}
	if rec != nil {
		t.Errorf("Read value = %#v, want nil", rec)
	}
}

func TestWriteSwallowsBackendFault(t *testing.T) {
	ctx := context.Background()
	backend := testsupport.NewFakeBackend()
	ops := newOps(t, backend)

	backend.FailSets = true
	if cache.Write(ctx, ops, ops.KeyByID(5), store.Record{"id": int64(5)}) {
		t.Error("Write reported applied on a failing backend")
	}
}

func TestWriteTTLExpiry(t *testing.T) {
	ctx := context.Background()
	backend := testsupport.NewFakeBackend()
	ops := newOps(t, backend)

	now := time.Now()
	backend.Now = func() time.Time { return now }

	key := ops.KeyByID(42)
	if !cache.WriteTTL(ctx, ops, key, store.Record{"id": int64(42)}, 10*time.Second) {
		t.Fatal("WriteTTL reported not applied")
	}
	if _, res := cache.Read[store.Record](ctx, ops, key); res != cache.LookupHit {
		t.Fatalf("Read before expiry = %v, want hit", res)
	}

	now = now.Add(11 * time.Second)
	if _, res := cache.Read[store.Record](ctx, ops, key); res != cache.LookupMiss {
		t.Errorf("Read after expiry = %v, want miss", res)
	}
}

func TestInvalidateRecord(t *testing.T) {
	ctx := context.Background()
	backend := testsupport.NewFakeBackend()
	ops := newOps(t, backend)

	rec := store.Record{"id": int64(42), "tenant_id": int64(7)}
	cache.Write(ctx, ops, ops.KeyByID(42), rec)
	cache.Write(ctx, ops, ops.KeyByTenantAndID(7, 42), rec)

	ops.InvalidateRecord(ctx, 42, 7)

	if backend.Has("user:id:42") {
		t.Error("by-id key survived invalidation")
	}
	if backend.Has("user:tenant:7:id:42") {
		t.Error("by-tenant-and-id key survived invalidation")
	}
}

func TestInvalidateRecordWithoutTenantKeepsTenantKey(t *testing.T) {
	ctx := context.Background()
	backend := testsupport.NewFakeBackend()
	ops := newOps(t, backend)

	rec := store.Record{"id": int64(42), "tenant_id": int64(7)}
	cache.Write(ctx, ops, ops.KeyByID(42), rec)
	cache.Write(ctx, ops, ops.KeyByTenantAndID(7, 42), rec)

	ops.InvalidateRecord(ctx, 42, 0)

	if backend.Has("user:id:42") {
		t.Error("by-id key survived invalidation")
	}
	if !backend.Has("user:tenant:7:id:42") {
		t.Error("tenant-scoped key removed although the tenant was unknown")
	}
}

func TestInvalidateRecordIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := testsupport.NewFakeBackend()
	ops := newOps(t, backend)

	cache.Write(ctx, ops, ops.KeyByID(42), store.Record{"id": int64(42)})

	ops.InvalidateRecord(ctx, 42, 0)
	ops.InvalidateRecord(ctx, 42, 0)

	if backend.Has("user:id:42") {
		t.Error("key present after repeated invalidation")
	}
}

func TestInvalidateTenantLists(t *testing.T) {
	ctx := context.Background()
	backend := testsupport.NewFakeBackend()
	ops := newOps(t, backend)

	records := []store.Record{{"id": int64(1), "tenant_id": int64(7)}}
	cache.Write(ctx, ops, ops.ListKey(7, nil), records)
	cache.Write(ctx, ops, ops.ListKey(7, map[string]any{"status": "active"}), records)
	cache.Write(ctx, ops, ops.ListKey(8, nil), records)
	cache.Write(ctx, ops, ops.KeyByTenantAndID(7, 1), records[0])

	ops.InvalidateTenantLists(ctx, 7)

	if backend.Has(ops.ListKey(7, nil)) {
		t.Error("bare list key survived invalidation")
	}
	if backend.Has(ops.ListKey(7, map[string]any{"status": "active"})) {
		t.Error("filtered list key survived invalidation")
	}
	if !backend.Has(ops.ListKey(8, nil)) {
		t.Error("another tenant's list key was removed")
	}
	if !backend.Has(ops.KeyByTenantAndID(7, 1)) {
		t.Error("record key removed by list-only invalidation")
	}
}

func TestInvalidateTenant(t *testing.T) {
	ctx := context.Background()
	backend := testsupport.NewFakeBackend()
	ops := newOps(t, backend)

	rec := store.Record{"id": int64(1), "tenant_id": int64(7)}
	cache.Write(ctx, ops, ops.ListKey(7, nil), []store.Record{rec})
	cache.Write(ctx, ops, ops.ListKey(7, map[string]any{"role": "admin"}), []store.Record{rec})
	cache.Write(ctx, ops, ops.KeyByTenantAndID(7, 1), rec)
	cache.Write(ctx, ops, ops.KeyByID(1), rec)
	cache.Write(ctx, ops, ops.KeyByTenantAndID(8, 2), rec)

	ops.InvalidateTenant(ctx, 7)

	for _, key := range []string{
		"user:list:7",
		ops.ListKey(7, map[string]any{"role": "admin"}),
		"user:tenant:7:id:1",
	} {
		if backend.Has(key) {
			t.Errorf("key %q survived tenant invalidation", key)
		}
	}
	if !backend.Has("user:id:1") {
		t.Error("global by-id key removed by tenant invalidation")
	}
	if !backend.Has("user:tenant:8:id:2") {
		t.Error("another tenant's record key was removed")
	}
}

func TestInvalidationNoOpWhenBackendDown(t *testing.T) {
	ctx := context.Background()
	backend := testsupport.NewFakeBackend()
	ops := newOps(t, backend)

	cache.Write(ctx, ops, ops.ListKey(7, nil), []store.Record{})
	backend.FailKeys = true

	// Must not panic and must not surface an error.
	ops.InvalidateTenantLists(ctx, 7)
	ops.InvalidateTenant(ctx, 7)
}
