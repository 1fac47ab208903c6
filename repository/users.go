package repository

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-clinic/cache"
	"github.com/goliatone/go-clinic/store"
)

// Defaults applied to new users when the caller leaves the fields unset.
const (
	DefaultStatus = "active"
	DefaultRole   = "viewer"
)

// ErrEmailTaken is returned by Create when the tenant already has a user
// with the requested email.
var ErrEmailTaken = errors.New("repository: email already registered for tenant")

// Users is the tenant-scoped user repository. It is the only component that
// talks to the authoritative user store; every read/write entry point
// composes the cache behavior. Cache faults degrade to store reads; store
// faults propagate unchanged.
type Users struct {
	store store.UserStore
	cache *cache.Ops
}

// NewUsers wires a user store with its cache behavior. The behavior is
// expected to be configured with the "user" prefix.
func NewUsers(st store.UserStore, ops *cache.Ops) *Users {
	return &Users{store: st, cache: ops}
}

// FindByTenantAndID returns the tenant's record with the given id, or nil
// when absent. A record whose tenant does not match reads as absent, never
// as an error: ids are global, and existence of another tenant's data must
// not leak. The tenant check runs on every cache miss; a hit is trusted
// because the entry was only written after the same check passed.
func (u *Users) FindByTenantAndID(ctx context.Context, tenantID, id int64) (store.Record, error) {
	key := u.cache.KeyByTenantAndID(tenantID, id)
	if rec, res := cache.Read[store.Record](ctx, u.cache, key); res.Hit() {
		return rec, nil
	}

	rec, err := u.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.TenantID() != tenantID {
		return nil, nil
	}
	cache.Write(ctx, u.cache, key, rec)
	return rec, nil
}

// FindByTenant returns the tenant's records matching the given filters,
// ordered by id. The tenant id is merged into the store predicate; the list
// cache key hashes the filters sorted by name, so permutations of the same
// filter set share one entry.
func (u *Users) FindByTenant(ctx context.Context, tenantID int64, filters map[string]any) ([]store.Record, error) {
	key := u.cache.ListKey(tenantID, filters)
	if records, res := cache.Read[[]store.Record](ctx, u.cache, key); res.Hit() {
		return records, nil
	}

	predicate := make(map[string]any, len(filters)+1)
	for k, v := range filters {
		predicate[k] = v
	}
	predicate["tenant_id"] = tenantID

	records, err := u.store.FindAll(ctx, predicate)
	if err != nil {
		return nil, err
	}
	cache.Write(ctx, u.cache, key, records)
	return records, nil
}

// FindByID returns a record by id with NO tenant check. This is the
// intentional counterpart to FindByTenantAndID for system-internal call
// sites that have already authorized tenant scope (or operate across
// tenants); routing it through request-supplied ids would reintroduce
// cross-tenant leakage.
func (u *Users) FindByID(ctx context.Context, id int64) (store.Record, error) {
	key := u.cache.KeyByID(id)
	if rec, res := cache.Read[store.Record](ctx, u.cache, key); res.Hit() {
		return rec, nil
	}

	rec, err := u.store.FindByID(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	cache.Write(ctx, u.cache, key, rec)
	return rec, nil
}

// Create inserts a new user under the tenant and returns its id. A
// plaintext password field is hashed and discarded before persistence,
// tenant_id is force-set, and unset status/role fields receive defaults.
// Only the tenant's list cache is invalidated: a brand-new record cannot be
// in any single-record entry.
func (u *Users) Create(ctx context.Context, tenantID int64, data map[string]any) (int64, error) {
	rec := store.Record(data).Clone()
	if rec == nil {
		rec = store.Record{}
	}
	if err := validateNewUser(rec); err != nil {
		return 0, err
	}

	taken, err := u.store.EmailExists(ctx, rec.String("email"), tenantID)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, ErrEmailTaken
	}

	if err := hashCredential(rec); err != nil {
		return 0, err
	}
	rec["tenant_id"] = tenantID
	if _, ok := rec["status"]; !ok {
		rec["status"] = DefaultStatus
	}
	if _, ok := rec["role"]; !ok {
		rec["role"] = DefaultRole
	}

	id, err := u.store.Insert(ctx, rec)
	if err != nil {
		return 0, err
	}
	u.cache.InvalidateTenantLists(ctx, tenantID)
	return id, nil
}

// Update applies the given fields to an existing user. On success the stale
// by-id entry is dropped, the record is re-fetched through the cache path to
// discover its authoritative post-update tenant id, and the record and
// tenant list entries are invalidated; the by-id key is absent when Update
// returns. A store fault during the re-fetch propagates with ok=true, since
// the mutation itself committed.
func (u *Users) Update(ctx context.Context, id int64, data map[string]any) (bool, error) {
	upd := store.Record(data).Clone()
	delete(upd, "id")
	if err := hashCredential(upd); err != nil {
		return false, err
	}

	ok, err := u.store.Update(ctx, id, upd)
	if err != nil || !ok {
		return ok, err
	}

	// Drop the stale entry first so the re-fetch misses and hits the store.
	u.cache.InvalidateRecord(ctx, id, 0)
	rec, err := u.FindByID(ctx, id)
	if err != nil {
		return true, err
	}
	if rec != nil {
		tenantID := rec.TenantID()
		u.cache.InvalidateRecord(ctx, id, tenantID)
		u.cache.InvalidateTenantLists(ctx, tenantID)
	}
	return true, nil
}

// Delete removes a user. The record is fetched first, while it still
// exists, to learn which tenant's caches to invalidate.
func (u *Users) Delete(ctx context.Context, id int64) (bool, error) {
	rec, err := u.FindByID(ctx, id)
	if err != nil {
		return false, err
	}

	ok, err := u.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	var tenantID int64
	if rec != nil {
		tenantID = rec.TenantID()
	}
	u.cache.InvalidateRecord(ctx, id, tenantID)
	if tenantID > 0 {
		u.cache.InvalidateTenantLists(ctx, tenantID)
	}
	return ok, nil
}

// FindByEmailAndTenant returns the tenant's user with the given email, or
// nil when absent. Authentication paths must not tolerate staleness, so
// this lookup always goes to the store.
func (u *Users) FindByEmailAndTenant(ctx context.Context, email string, tenantID int64) (store.Record, error) {
	return u.store.FindByEmailAndTenant(ctx, email, tenantID)
}

// Authenticate verifies a tenant user's credentials and returns the record
// on success. An unknown email and a wrong password are indistinguishable
// to the caller.
func (u *Users) Authenticate(ctx context.Context, tenantID int64, email, password string) (store.Record, error) {
	rec, err := u.store.FindByEmailAndTenant(ctx, email, tenantID)
	if err != nil {
		return nil, err
	}
	if rec == nil || !store.VerifyPassword(rec.String("password_hash"), password) {
		return nil, nil
	}
	return rec, nil
}

// hashCredential replaces a plaintext password field with its hash. The
// plaintext never reaches the store.
func hashCredential(rec store.Record) error {
	plaintext, ok := rec["password"].(string)
	if !ok {
		return nil
	}
	hash, err := store.HashPassword(plaintext)
	if err != nil {
		return err
	}
	delete(rec, "password")
	rec["password_hash"] = hash
	return nil
}

func validateNewUser(rec store.Record) error {
	return validation.Errors{
		"email": validation.Validate(rec.String("email"), validation.Required, is.Email),
	}.Filter()
}
