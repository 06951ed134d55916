package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestBaseRegistry_ValidatorsAndSeal(t *testing.T) {
	r := NewBaseRegistry[string, int]("schema", "annotation type", "schema")
	r.SetValidator(ChainValidators(
		NotEmptyKeyValidator[int]("annotation type"),
		NoDuplicateValidator[string, int]("annotation type"),
	))

	if err := r.Register("remote", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register("", 2); err == nil {
		t.Error("expected empty key to be rejected")
	}
	if err := r.Register("remote", 3); err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Errorf("expected duplicate error, got %v", err)
	}

	missing := errors.New("missing oneway")
	if err := r.Seal(func(items map[string]int) error {
		if _, ok := items["oneway"]; !ok {
			return missing
		}
		return nil
	}); !errors.Is(err, missing) {
		t.Errorf("expected seal check failure, got %v", err)
	}
	if r.Sealed() {
		t.Error("failed seal must leave the registry open")
	}

	if err := r.Register("oneway", 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Seal(nil); err != nil {
		t.Fatalf("unexpected seal error: %v", err)
	}
	if err := r.Register("late", 5); !errors.Is(err, ErrRegistrySealed) {
		t.Errorf("expected ErrRegistrySealed, got %v", err)
	}

	if v, err := r.Lookup("oneway"); err != nil || v != 4 {
		t.Errorf("Lookup = %d, %v", v, err)
	}
	if _, err := r.Lookup("nope"); err == nil {
		t.Error("expected not-found error")
	}
	if r.Size() != 2 || len(r.List()) != 2 || !r.Has("remote") {
		t.Errorf("unexpected contents: %v", r.List())
	}
}
