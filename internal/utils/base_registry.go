package utils

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var ErrRegistrySealed = errors.New("registry is sealed")

// RegistryValidator vets one entry against the entries registered so far
type RegistryValidator[K comparable, V any] func(key K, value V, existing map[K]V) error

// BaseRegistry backs the annotation schema registry and the strategy table.
// Entries are added until Seal succeeds; after that the registry only
// answers lookups and may be shared freely between generation workers.
type BaseRegistry[K comparable, V any] struct {
	mu       sync.RWMutex
	entries  map[K]V
	validate RegistryValidator[K, V]
	sealed   bool

	name  string // e.g. "annotation", "strategy"
	key   string // e.g. "annotation type", "kind"
	value string // e.g. "schema", "rule"
}

func NewBaseRegistry[K comparable, V any](name, keyDesc, valueDesc string) *BaseRegistry[K, V] {
	return &BaseRegistry[K, V]{
		entries: make(map[K]V),
		name:    name,
		key:     keyDesc,
		value:   valueDesc,
	}
}

func (r *BaseRegistry[K, V]) SetValidator(validator RegistryValidator[K, V]) {
	r.mu.Lock()
	r.validate = validator
	r.mu.Unlock()
}

func (r *BaseRegistry[K, V]) fail(err error) error {
	return fmt.Errorf("%s registry: %w", r.name, err)
}

// Register stores value under key once the validator accepts it
func (r *BaseRegistry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.sealed:
		return r.fail(ErrRegistrySealed)
	case r.validate != nil:
		if err := r.validate(key, value, r.entries); err != nil {
			return r.fail(err)
		}
	}
	r.entries[key] = value
	return nil
}

// Seal makes the registry read-only. A failing check leaves it open.
func (r *BaseRegistry[K, V]) Seal(check func(entries map[K]V) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if check != nil {
		if err := check(r.entries); err != nil {
			return r.fail(err)
		}
	}
	r.sealed = true
	return nil
}

func (r *BaseRegistry[K, V]) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

func (r *BaseRegistry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// Lookup is Get with a not-found error naming the registry
func (r *BaseRegistry[K, V]) Lookup(key K) (V, error) {
	v, ok := r.Get(key)
	if !ok {
		return v, fmt.Errorf("no %s registered for %s %v", r.value, r.key, key)
	}
	return v, nil
}

func (r *BaseRegistry[K, V]) Has(key K) bool {
	_, ok := r.Get(key)
	return ok
}

// List returns the registered keys in no particular order
func (r *BaseRegistry[K, V]) List() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Collect(maps.Keys(r.entries))
}

func (r *BaseRegistry[K, V]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func NotEmptyKeyValidator[V any](keyDesc string) RegistryValidator[string, V] {
	return func(key string, _ V, _ map[string]V) error {
		if key == "" {
			return fmt.Errorf("%s cannot be empty", keyDesc)
		}
		return nil
	}
}

func NoDuplicateValidator[K comparable, V any](keyDesc string) RegistryValidator[K, V] {
	return func(key K, _ V, existing map[K]V) error {
		if _, dup := existing[key]; dup {
			return fmt.Errorf("%s %v is already registered", keyDesc, key)
		}
		return nil
	}
}

// ChainValidators runs validators in order and stops at the first failure
func ChainValidators[K comparable, V any](validators ...RegistryValidator[K, V]) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		for _, v := range validators {
			if err := v(key, value, existing); err != nil {
				return err
			}
		}
		return nil
	}
}
