package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator delimits cache key segments.
const KeySeparator = ":"

// KeyByID builds the globally scoped single-record key: {prefix}:id:{id}.
func (o *Ops) KeyByID(id int64) string {
	return o.prefix + ":id:" + strconv.FormatInt(id, 10)
}

// KeyByTenantAndID builds the tenant-scoped single-record key:
// {prefix}:tenant:{tenantID}:id:{id}.
func (o *Ops) KeyByTenantAndID(tenantID, id int64) string {
	return o.prefix + ":tenant:" + strconv.FormatInt(tenantID, 10) + ":id:" + strconv.FormatInt(id, 10)
}

// ListKey builds the tenant list key. Without filters the key is
// {prefix}:list:{tenantID}; with filters a deterministic hash segment is
// appended so that semantically identical filter sets share one entry no
// matter the map iteration or insertion order.
func (o *Ops) ListKey(tenantID int64, filters map[string]any) string {
	key := o.prefix + ":list:" + strconv.FormatInt(tenantID, 10)
	if len(filters) == 0 {
		return key
	}
	return key + KeySeparator + filterHash(filters)
}

// ListPattern matches every filtered list key for a tenant. The bare
// unfiltered list key has no hash segment and is NOT matched; invalidation
// adds it to the batch explicitly.
func (o *Ops) ListPattern(tenantID int64) string {
	return o.prefix + ":list:" + strconv.FormatInt(tenantID, 10) + ":*"
}

// TenantPattern matches every tenant-scoped single-record key for a tenant.
func (o *Ops) TenantPattern(tenantID int64) string {
	return o.prefix + ":tenant:" + strconv.FormatInt(tenantID, 10) + ":*"
}

// filterHash hashes a filter mapping sorted by key, so permutations of the
// same logical filter set always produce the same digest.
func filterHash(filters map[string]any) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := xxhash.New()
	for _, k := range keys {
		h.WriteString(k)
		h.WriteString("=")
		h.WriteString(fmt.Sprintf("%v", filters[k]))
		h.WriteString(";")
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// validPrefix rejects prefixes that would collide with the key grammar or
// the glob wildcard.
func validPrefix(prefix string) bool {
	if prefix == "" {
		return false
	}
	return !strings.ContainsAny(prefix, ":*?[]")
}
