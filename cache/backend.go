package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Backend.Get when a key is absent or expired.
// It is the only backend error that Ops treats as a plain miss rather than
// a fault.
var ErrNotFound = errors.New("cache: entry not found")

// Backend is the key/value contract every cache store must satisfy.
// Values are opaque byte payloads; serialization happens above the backend.
//
// The ttl passed to Set is mandatory and must be positive: this layer never
// creates permanent entries. Keys returns the keys currently matching a
// glob-style pattern (`*` matches any suffix) scoped to the backend's own
// namespace. Delete and DeleteMany treat absent keys as a no-op.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	DeleteMany(ctx context.Context, keys []string) error
}

// Lookup reports the outcome of a cache read. It keeps the distinction
// between "the key was not there" and "the backend could not answer"
// explicit; callers collapse both into the same store-fallback path, but
// metrics and logs see them differently.
type Lookup int

const (
	// LookupMiss means the backend answered and the key was absent.
	LookupMiss Lookup = iota
	// LookupHit means the backend answered with a decodable value.
	LookupHit
	// LookupUnavailable means the backend failed or the payload could not
	// be decoded. Treated as a miss by callers.
	LookupUnavailable
)

// Hit reports whether the lookup produced a usable cached value.
func (l Lookup) Hit() bool { return l == LookupHit }

// String implements fmt.Stringer for log output.
func (l Lookup) String() string {
	switch l {
	case LookupHit:
		return "hit"
	case LookupMiss:
		return "miss"
	case LookupUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}
