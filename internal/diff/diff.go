// Package diff computes the novelty set between two snapshots: the record
// identifiers present in the newer one but absent from the older one.
package diff

import (
	"sort"

	"github.com/jmleung/deltamail/internal/snapshot"
)

// Set is a set of record identifiers.
type Set map[string]struct{}

// Has reports whether key is in the set.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Sorted returns the set's keys in ascending order.
func (s Set) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Keys extracts the identifier set from a record sequence. Values are
// trimmed of surrounding whitespace; empty or absent identifiers are
// excluded. Duplicate identifiers collapse.
func Keys(records []snapshot.Record, field string) Set {
	set := make(Set, len(records))
	for _, r := range records {
		if k := r.Get(field); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// NewKeys returns newer minus older: the identifiers that appeared between
// the two snapshots. Comparison is exact and case-sensitive, and the result
// is independent of row order in either input.
func NewKeys(older, newer Set) Set {
	novel := make(Set)
	for k := range newer {
		if !older.Has(k) {
			novel[k] = struct{}{}
		}
	}
	return novel
}
