package commits

import (
	"encoding/json"

	"github.com/panbanda/commitscope/pkg/models"
)

// Reducer folds one group of records into a value.
type Reducer[R, V any] func(group []R) V

// Count returns a reducer that counts the records in a group.
func Count[R any]() Reducer[R, int] {
	return func(group []R) int { return len(group) }
}

// Sum returns a reducer that sums an integer field over a group.
func Sum[R any](field func(R) int) Reducer[R, int] {
	return func(group []R) int {
		total := 0
		for _, r := range group {
			total += field(r)
		}
		return total
	}
}

// Entry is one key of a rollup with its reduced value.
type Entry[K comparable, V any] struct {
	Key   K `json:"key"`
	Value V `json:"value"`
}

// Rollup is the result of RollupByKey. Keys keep first-seen order.
type Rollup[K comparable, V any] struct {
	entries []Entry[K, V]
	index   map[K]int
}

// RollupByKey groups records by key and reduces each group. Key order
// is the order in which each key first appears in records.
func RollupByKey[R any, K comparable, V any](records []R, key func(R) K, reduce Reducer[R, V]) *Rollup[K, V] {
	var order []K
	groups := make(map[K][]R)
	for _, r := range records {
		k := key(r)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	out := &Rollup[K, V]{
		entries: make([]Entry[K, V], 0, len(order)),
		index:   make(map[K]int, len(order)),
	}
	for _, k := range order {
		out.index[k] = len(out.entries)
		out.entries = append(out.entries, Entry[K, V]{Key: k, Value: reduce(groups[k])})
	}
	return out
}

// Len returns the number of keys.
func (r *Rollup[K, V]) Len() int {
	return len(r.entries)
}

// Get returns the value for k.
func (r *Rollup[K, V]) Get(k K) (V, bool) {
	idx, ok := r.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return r.entries[idx].Value, true
}

// Keys returns the keys in first-seen order.
func (r *Rollup[K, V]) Keys() []K {
	keys := make([]K, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in first-seen order.
func (r *Rollup[K, V]) Entries() []Entry[K, V] {
	out := make([]Entry[K, V], len(r.entries))
	copy(out, r.entries)
	return out
}

// Map returns the rollup as an unordered map.
func (r *Rollup[K, V]) Map() map[K]V {
	m := make(map[K]V, len(r.entries))
	for _, e := range r.entries {
		m[e.Key] = e.Value
	}
	return m
}

// MarshalJSON encodes the rollup as an ordered list of entries.
func (r *Rollup[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.entries)
}

// LinesByType sums lines changed per type label.
func LinesByType(records []models.ChangeRecord) *Rollup[string, int] {
	return RollupByKey(records, models.ChangeRecord.TypeLabel, Sum(func(r models.ChangeRecord) int {
		return r.LinesChanged
	}))
}

// CountByType counts records per type label.
func CountByType(records []models.ChangeRecord) *Rollup[string, int] {
	return RollupByKey(records, models.ChangeRecord.TypeLabel, Count[models.ChangeRecord]())
}
