// Package intern deduplicates values into dense, index-addressed tables.
package intern

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// SharedStrings assigns stable indices to string-like entries. The first
// occurrence of a key defines its index; every Add counts as a reference.
type SharedStrings[T any] struct {
	index  map[string]int
	values []T
	total  int
}

// NewSharedStrings returns an empty table.
func NewSharedStrings[T any]() *SharedStrings[T] {
	return &SharedStrings[T]{index: make(map[string]int)}
}

// Add returns the index of key, appending v when the key is new.
func (s *SharedStrings[T]) Add(key string, v T) int {
	s.total++
	if i, ok := s.index[key]; ok {
		return i
	}
	i := len(s.values)
	s.index[key] = i
	s.values = append(s.values, v)
	return i
}

// Count is the number of unique entries.
func (s *SharedStrings[T]) Count() int { return len(s.values) }

// TotalRefs is the number of Add calls.
func (s *SharedStrings[T]) TotalRefs() int { return s.total }

// Values returns entries in index order. The slice is shared.
func (s *SharedStrings[T]) Values() []T { return s.values }

// Get returns the entry at i.
func (s *SharedStrings[T]) Get(i int) (T, bool) {
	if i < 0 || i >= len(s.values) {
		var zero T
		return zero, false
	}
	return s.values[i], true
}

// Table interns values by deep equality. Values are bucketed by the xxhash
// of their JSON encoding and compared with reflect.DeepEqual inside a
// bucket, so hash collisions never merge distinct values.
type Table[T any] struct {
	buckets map[uint64][]int
	values  []T
}

// NewTable returns a table pre-populated with seeds at indices 0..n-1.
func NewTable[T any](seeds ...T) *Table[T] {
	t := &Table[T]{buckets: make(map[uint64][]int)}
	for _, s := range seeds {
		t.Add(s)
	}
	return t
}

// Add returns the index of the first value deep-equal to v, appending v
// when none exists.
func (t *Table[T]) Add(v T) int {
	h := hashOf(v)
	for _, i := range t.buckets[h] {
		if reflect.DeepEqual(t.values[i], v) {
			return i
		}
	}
	i := len(t.values)
	t.values = append(t.values, v)
	t.buckets[h] = append(t.buckets[h], i)
	return i
}

// Find returns the index of a value deep-equal to v without adding it.
func (t *Table[T]) Find(v T) (int, bool) {
	for _, i := range t.buckets[hashOf(v)] {
		if reflect.DeepEqual(t.values[i], v) {
			return i, true
		}
	}
	return 0, false
}

// Len is the number of interned values.
func (t *Table[T]) Len() int { return len(t.values) }

// Values returns interned values in index order. The slice is shared.
func (t *Table[T]) Values() []T { return t.values }

func hashOf(v any) uint64 {
	b, err := json.Marshal(v)
	if err != nil {
		return xxhash.Sum64String(fmt.Sprintf("%T", v))
	}
	return xxhash.Sum64(b)
}
