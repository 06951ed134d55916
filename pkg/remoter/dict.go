package remoter

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Map is an insertion-ordered map that can be read-only. Copies of a Map
// share storage. The zero Map is nil: it has no entries and cannot grow.
type Map[K comparable, V any] struct {
	s        *mapStore[K, V]
	readOnly bool
}

type mapStore[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewMap returns an empty mutable map
func NewMap[K comparable, V any]() Map[K, V] {
	return Map[K, V]{s: &mapStore[K, V]{values: make(map[K]V)}}
}

// IsNil reports whether m is the zero Map
func (m Map[K, V]) IsNil() bool { return m.s == nil }

// ReadOnly reports whether mutation is rejected
func (m Map[K, V]) ReadOnly() bool { return m.readOnly || m.s == nil }

// ReadOnlyView returns a read-only map sharing storage with m
func (m Map[K, V]) ReadOnlyView() Map[K, V] {
	return Map[K, V]{s: m.s, readOnly: true}
}

// Len returns the number of entries
func (m Map[K, V]) Len() int {
	if m.s == nil {
		return 0
	}
	return len(m.s.keys)
}

// Get returns the value stored under k
func (m Map[K, V]) Get(k K) (V, bool) {
	if m.s == nil {
		var zero V
		return zero, false
	}
	v, ok := m.s.values[k]
	return v, ok
}

// Keys returns the keys in insertion order
func (m Map[K, V]) Keys() []K {
	if m.s == nil {
		return nil
	}
	return slices.Clone(m.s.keys)
}

// All iterates over entries in insertion order
func (m Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m.s == nil {
			return
		}
		for _, k := range m.s.keys {
			if !yield(k, m.s.values[k]) {
				return
			}
		}
	}
}

// Put stores v under k. A new key is appended to the iteration order.
func (m Map[K, V]) Put(k K, v V) error {
	if m.ReadOnly() {
		return ErrReadOnly
	}
	if _, exists := m.s.values[k]; !exists {
		m.s.keys = append(m.s.keys, k)
	}
	m.s.values[k] = v
	return nil
}

// Delete removes k
func (m Map[K, V]) Delete(k K) error {
	if m.ReadOnly() {
		return ErrReadOnly
	}
	if _, exists := m.s.values[k]; !exists {
		return nil
	}
	delete(m.s.values, k)
	m.s.keys = slices.DeleteFunc(m.s.keys, func(existing K) bool { return existing == k })
	return nil
}

// String renders the map in iteration order
func (m Map[K, V]) String() string {
	if m.s == nil {
		return "Map(nil)"
	}
	var b strings.Builder
	b.WriteString("Map[")
	for i, k := range m.s.keys {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%v:%v", k, m.s.values[k])
	}
	b.WriteString("]")
	return b.String()
}
