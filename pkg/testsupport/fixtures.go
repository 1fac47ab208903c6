// Package testsupport provides the shared fakes and record builders used by
// the cache, repository, and wiring tests. The fakes are deterministic and
// fully in-memory; failure switches let tests simulate an unreachable cache
// backend without a network.
package testsupport

import (
	"context"
	"errors"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-clinic/cache"
	"github.com/goliatone/go-clinic/store"
)

// ErrBackendDown is what the fake backend returns when a failure switch is
// set.
var ErrBackendDown = errors.New("testsupport: cache backend down")

// Interface assertions for the fakes
var (
	_ cache.Backend   = (*FakeBackend)(nil)
	_ store.UserStore = (*FakeUserStore)(nil)
)

// FakeBackend is an in-memory cache.Backend with per-operation failure
// switches and an injectable clock for TTL tests.
type FakeBackend struct {
	mu      sync.Mutex
	entries map[string]fakeEntry

	// Failure switches. When set, the corresponding operation returns
	// ErrBackendDown.
	FailGets    bool
	FailSets    bool
	FailDeletes bool
	FailKeys    bool

	// Now is the clock used for TTL expiry. Defaults to time.Now.
	Now func() time.Time
}

type fakeEntry struct {
	data     []byte
	deadline time.Time
}

// NewFakeBackend creates an empty fake backend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		entries: make(map[string]fakeEntry),
		Now:     time.Now,
	}
}

// Get implements cache.Backend.
func (b *FakeBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailGets {
		return nil, ErrBackendDown
	}
	entry, ok := b.entries[key]
	if !ok || !b.Now().Before(entry.deadline) {
		delete(b.entries, key)
		return nil, cache.ErrNotFound
	}
	return entry.data, nil
}

// Set implements cache.Backend.
func (b *FakeBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailSets {
		return ErrBackendDown
	}
	if ttl <= 0 {
		return errors.New("testsupport: ttl must be positive")
	}
	b.entries[key] = fakeEntry{data: value, deadline: b.Now().Add(ttl)}
	return nil
}

// Delete implements cache.Backend.
func (b *FakeBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailDeletes {
		return ErrBackendDown
	}
	delete(b.entries, key)
	return nil
}

// Keys implements cache.Backend.
func (b *FakeBackend) Keys(ctx context.Context, pattern string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailKeys {
		return nil, ErrBackendDown
	}
	var keys []string
	for key, entry := range b.entries {
		if !b.Now().Before(entry.deadline) {
			continue
		}
		if ok, err := path.Match(pattern, key); err == nil && ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// DeleteMany implements cache.Backend.
func (b *FakeBackend) DeleteMany(ctx context.Context, keys []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailDeletes {
		return ErrBackendDown
	}
	for _, key := range keys {
		delete(b.entries, key)
	}
	return nil
}

// Has reports whether a live entry exists for the key.
func (b *FakeBackend) Has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.entries[key]
	return ok && b.Now().Before(entry.deadline)
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (b *FakeBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// FakeUserStore is an in-memory store.UserStore that records which methods
// were called, so tests can assert whether a read was served from cache or
// fell through to the store.
type FakeUserStore struct {
	mu      sync.Mutex
	records map[int64]store.Record
	nextID  int64
	calls   []string

	// Err, when set, is returned by every operation.
	Err error
}

// NewFakeUserStore creates an empty fake store.
func NewFakeUserStore() *FakeUserStore {
	return &FakeUserStore{records: make(map[int64]store.Record), nextID: 1}
}

// Seed inserts a record under a fixed id without recording a call.
func (s *FakeUserStore) Seed(id int64, rec store.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := rec.Clone()
	clone["id"] = id
	s.records[id] = clone
	if id >= s.nextID {
		s.nextID = id + 1
	}
}

// Calls returns the recorded method names in call order.
func (s *FakeUserStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// ClearCalls resets the recorded call log.
func (s *FakeUserStore) ClearCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// Get returns a copy of the stored record, bypassing the call log.
func (s *FakeUserStore) Get(id int64) store.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id].Clone()
}

// FindByID implements store.RecordStore.
func (s *FakeUserStore) FindByID(ctx context.Context, id int64) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "FindByID")
	if s.Err != nil {
		return nil, s.Err
	}
	return s.records[id].Clone(), nil
}

// FindAll implements store.RecordStore.
func (s *FakeUserStore) FindAll(ctx context.Context, filter map[string]any) ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "FindAll")
	if s.Err != nil {
		return nil, s.Err
	}

	ids := make([]int64, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []store.Record
	for _, id := range ids {
		rec := s.records[id]
		if matchesFilter(rec, filter) {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

// Insert implements store.RecordStore.
func (s *FakeUserStore) Insert(ctx context.Context, data store.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "Insert")
	if s.Err != nil {
		return 0, s.Err
	}
	id := s.nextID
	s.nextID++
	rec := data.Clone()
	rec["id"] = id
	s.records[id] = rec
	return id, nil
}

// Update implements store.RecordStore.
func (s *FakeUserStore) Update(ctx context.Context, id int64, data store.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "Update")
	if s.Err != nil {
		return false, s.Err
	}
	rec, ok := s.records[id]
	if !ok {
		return false, nil
	}
	for k, v := range data {
		rec[k] = v
	}
	return true, nil
}

// Delete implements store.RecordStore.
func (s *FakeUserStore) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "Delete")
	if s.Err != nil {
		return false, s.Err
	}
	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	return true, nil
}

// FindByEmailAndTenant implements store.UserStore.
func (s *FakeUserStore) FindByEmailAndTenant(ctx context.Context, email string, tenantID int64) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "FindByEmailAndTenant")
	if s.Err != nil {
		return nil, s.Err
	}
	for _, rec := range s.records {
		if rec.String("email") == email && rec.TenantID() == tenantID {
			return rec.Clone(), nil
		}
	}
	return nil, nil
}

// EmailExists implements store.UserStore.
func (s *FakeUserStore) EmailExists(ctx context.Context, email string, tenantID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "EmailExists")
	if s.Err != nil {
		return false, s.Err
	}
	for _, rec := range s.records {
		if rec.String("email") == email && rec.TenantID() == tenantID {
			return true, nil
		}
	}
	return false, nil
}

func matchesFilter(rec store.Record, filter map[string]any) bool {
	for k, want := range filter {
		if wantInt, ok := asInt64(want); ok {
			if rec.Int64(k) != wantInt {
				return false
			}
			continue
		}
		if rec[k] != want {
			return false
		}
	}
	return true
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	default:
		return 0, false
	}
}

// NewUserRecord builds a user record for a tenant with a unique email.
func NewUserRecord(tenantID int64) store.Record {
	return store.Record{
		"tenant_id": tenantID,
		"email":     uuid.NewString() + "@example.com",
		"status":    "active",
		"role":      "viewer",
	}
}
