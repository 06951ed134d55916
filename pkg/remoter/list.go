package remoter

import (
	"fmt"
	"iter"
	"slices"
)

// List is an ordered collection that can be read-only. Copies of a List
// share storage. The zero List is nil: it has no elements and cannot grow.
type List[T any] struct {
	s        *listStore[T]
	readOnly bool
}

type listStore[T any] struct {
	items []T
}

// NewList returns a mutable list. The list takes ownership of items.
func NewList[T any](items ...T) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{s: &listStore[T]{items: items}}
}

// NewReadOnlyList returns a list that rejects mutation with ErrReadOnly.
// The list takes ownership of items.
func NewReadOnlyList[T any](items ...T) List[T] {
	l := NewList(items...)
	l.readOnly = true
	return l
}

// IsNil reports whether l is the zero List
func (l List[T]) IsNil() bool { return l.s == nil }

// ReadOnly reports whether mutation is rejected
func (l List[T]) ReadOnly() bool { return l.readOnly || l.s == nil }

// ReadOnlyView returns a read-only list sharing storage with l
func (l List[T]) ReadOnlyView() List[T] {
	return List[T]{s: l.s, readOnly: true}
}

// Len returns the number of elements
func (l List[T]) Len() int {
	if l.s == nil {
		return 0
	}
	return len(l.s.items)
}

// At returns the element at index i. It panics when i is out of range.
func (l List[T]) At(i int) T {
	return l.s.items[i]
}

// Items returns a copy of the elements
func (l List[T]) Items() []T {
	if l.s == nil {
		return nil
	}
	return slices.Clone(l.s.items)
}

// All iterates over index and element pairs in order
func (l List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if l.s == nil {
			return
		}
		for i, v := range l.s.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Append adds elements at the end
func (l List[T]) Append(items ...T) error {
	if l.ReadOnly() {
		return ErrReadOnly
	}
	l.s.items = append(l.s.items, items...)
	return nil
}

// Set replaces the element at index i
func (l List[T]) Set(i int, v T) error {
	if l.ReadOnly() {
		return ErrReadOnly
	}
	if i < 0 || i >= len(l.s.items) {
		return fmt.Errorf("remoter: index %d out of range [0,%d)", i, len(l.s.items))
	}
	l.s.items[i] = v
	return nil
}

// Remove deletes the element at index i
func (l List[T]) Remove(i int) error {
	if l.ReadOnly() {
		return ErrReadOnly
	}
	if i < 0 || i >= len(l.s.items) {
		return fmt.Errorf("remoter: index %d out of range [0,%d)", i, len(l.s.items))
	}
	l.s.items = slices.Delete(l.s.items, i, i+1)
	return nil
}

// String renders the list like a slice
func (l List[T]) String() string {
	if l.s == nil {
		return "List(nil)"
	}
	return fmt.Sprintf("List%v", l.s.items)
}
