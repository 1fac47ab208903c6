// Package store holds the authoritative record store contract and its
// implementations. Store errors are real application failures and propagate
// unchanged; nothing in this package masks them.
package store

import "context"

// Record is a persisted row as a field-name to value mapping. Every record
// carries a tenant_id field naming the tenant that owns it; ids are unique
// across the whole store, not per tenant.
type Record map[string]any

// ID returns the record's id, or zero when unset.
func (r Record) ID() int64 { return r.Int64("id") }

// TenantID returns the owning tenant's id, or zero when unset.
func (r Record) TenantID() int64 { return r.Int64("tenant_id") }

// Int64 coerces a numeric field to int64. Drivers and codecs disagree on
// integer width, so every common representation is accepted.
func (r Record) Int64(field string) int64 {
	switch v := r[field].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int16:
		return int64(v)
	case int8:
		return int64(v)
	case uint64:
		return int64(v)
	case uint32:
		return int64(v)
	case uint:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	default:
		return 0
	}
}

// String returns a string field, or "" when absent or differently typed.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Clone returns a shallow copy. Mutating the copy's top-level fields does
// not affect the original.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RecordStore is the synchronous contract every authoritative store
// implements. Absent records are (nil, nil), not an error.
type RecordStore interface {
	// FindByID returns the record with the given id, or nil when absent.
	FindByID(ctx context.Context, id int64) (Record, error)

	// FindAll returns the records matching every field in filter, ordered
	// by id. An empty filter matches everything.
	FindAll(ctx context.Context, filter map[string]any) ([]Record, error)

	// Insert persists a new record and returns its id.
	Insert(ctx context.Context, data Record) (int64, error)

	// Update applies the given fields to an existing record. It reports
	// whether a record was modified.
	Update(ctx context.Context, id int64, data Record) (bool, error)

	// Delete removes a record and reports whether one existed.
	Delete(ctx context.Context, id int64) (bool, error)
}

// UserStore extends RecordStore with the user-domain lookups the
// authentication paths need.
type UserStore interface {
	RecordStore

	// FindByEmailAndTenant returns the tenant's user with the given email,
	// or nil when absent.
	FindByEmailAndTenant(ctx context.Context, email string, tenantID int64) (Record, error)

	// EmailExists reports whether the tenant already has a user with the
	// given email.
	EmailExists(ctx context.Context, email string, tenantID int64) (bool, error)
}
