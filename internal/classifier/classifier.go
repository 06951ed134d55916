// Package classifier resolves type descriptors to marshalling strategies.
package classifier

import (
	"fmt"
	"strings"

	"github.com/toyz/remoter/internal/errors"
	"github.com/toyz/remoter/internal/models"
	"github.com/toyz/remoter/internal/strategy"
	"github.com/toyz/remoter/internal/utils"
)

// Classifier maps descriptors to strategies. Results are memoised by
// descriptor fingerprint; the memo never changes what Classify returns.
type Classifier struct {
	memo *utils.Cache[string, *strategy.Strategy]
}

// New returns a classifier with an empty memo
func New() *Classifier {
	return &Classifier{memo: utils.NewCache[string, *strategy.Strategy]()}
}

// Classify resolves d, or fails with *errors.UnsupportedTypeError whose
// path is relative to d
func (c *Classifier) Classify(d *models.TypeDescriptor) (*strategy.Strategy, error) {
	if d == nil {
		return nil, nil
	}
	return c.memo.GetOrCompute(d.Fingerprint(), func() (*strategy.Strategy, error) {
		s, err := classify(d, nil, nil)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// ClassifyParam classifies the parameter at 0-based position index. Paths
// number parameters from 1.
func (c *Classifier) ClassifyParam(index int, d *models.TypeDescriptor) (*strategy.Strategy, error) {
	s, err := c.Classify(d)
	if err != nil {
		return nil, within(err, fmt.Sprintf("parameter %d", index+1))
	}
	return s, nil
}

// ClassifyReturn classifies a method's value result
func (c *Classifier) ClassifyReturn(d *models.TypeDescriptor) (*strategy.Strategy, error) {
	s, err := c.Classify(d)
	if err != nil {
		return nil, within(err, "return value")
	}
	return s, nil
}

// Stats reports memo usage
func (c *Classifier) Stats() utils.CacheStats {
	return c.memo.Stats()
}

func within(err error, segment string) error {
	if ute, ok := err.(*errors.UnsupportedTypeError); ok {
		return ute.Within(segment)
	}
	return err
}

func unsupported(path []string, d *models.TypeDescriptor, reason string) error {
	return errors.NewUnsupportedTypeError(path, d.String(), reason)
}

func push(path []string, segment string) []string {
	next := make([]string, len(path), len(path)+1)
	copy(next, path)
	return append(next, segment)
}

// classify dispatches on kind and recurses post-order. records holds the
// names of the records being classified, so a record reachable from itself
// resolves to a back-reference.
func classify(d *models.TypeDescriptor, path []string, records []string) (*strategy.Strategy, error) {
	if d.Unsupported != "" {
		return nil, unsupported(path, d, unsupportedReason(d.Unsupported))
	}
	if d.Nullable && !nullable(d) {
		return nil, unsupported(path, d, "pointers are only supported to primitives, enums and records")
	}

	s := &strategy.Strategy{
		Kind:     d.Kind,
		Nullable: d.Nullable,
	}

	switch d.Kind {
	case models.KindPrimitive:
		if d.Primitive == models.PrimitiveNone {
			return nil, unsupported(path, d, "unknown primitive")
		}
		s.Primitive = d.Primitive

	case models.KindEnum:
		if !d.Primitive.IsInteger() {
			return nil, unsupported(path, d, "enums must have an integer underlying type")
		}
		s.Name = d.Name
		s.Primitive = d.Primitive

	case models.KindCallback:
		if d.Name == "" {
			return nil, unsupported(path, d, "callback without an interface name")
		}
		s.Name = d.Name

	case models.KindRecord:
		s.Name = d.Name
		if d.BackRef || containsName(records, d.Name) {
			s.Ref = true
			break
		}
		if len(d.Fields) == 0 {
			return nil, unsupported(path, d, "records need at least one exported field")
		}
		nested := append(append([]string(nil), records...), d.Name)
		for _, f := range d.Fields {
			fs, err := classify(f.Type, push(path, "field "+f.Name), nested)
			if err != nil {
				return nil, err
			}
			s.Fields = append(s.Fields, strategy.FieldStrategy{Name: f.Name, Strategy: fs})
		}

	case models.KindCollection:
		elem, err := classify(d.Elem, push(path, "element 0"), records)
		if err != nil {
			return nil, err
		}
		s.Elem = elem
		s.Container = d.Container
		s.Mutable = d.Mutable

	case models.KindMap:
		if err := checkKey(d.Key, push(path, "map key")); err != nil {
			return nil, err
		}
		key, err := classify(d.Key, push(path, "map key"), records)
		if err != nil {
			return nil, err
		}
		value, err := classify(d.Elem, push(path, "map value"), records)
		if err != nil {
			return nil, err
		}
		s.Key = key
		s.Elem = value
		s.Container = d.Container
		s.Mutable = d.Mutable

	case models.KindArray:
		if d.Length < 0 {
			return nil, unsupported(path, d, "negative array length")
		}
		elem, err := classify(d.Elem, push(path, "element 0"), records)
		if err != nil {
			return nil, err
		}
		s.Elem = elem
		s.Length = d.Length

	default:
		return nil, unsupported(path, d, fmt.Sprintf("unknown kind %d", int(d.Kind)))
	}
	return s, nil
}

func nullable(d *models.TypeDescriptor) bool {
	switch d.Kind {
	case models.KindPrimitive:
		return d.Primitive != models.PrimitiveBytes
	case models.KindEnum, models.KindRecord:
		return true
	default:
		return false
	}
}

// checkKey accepts the key types builtin maps can sort and compare:
// integers, strings and integer enums. Float keys are rejected because a
// NaN key can be stored but never looked up again.
func checkKey(key *models.TypeDescriptor, path []string) error {
	if key == nil || key.Unsupported != "" {
		return nil
	}
	ok := !key.Nullable && (key.Kind == models.KindEnum ||
		key.Kind == models.KindPrimitive && (key.Primitive.IsInteger() || key.Primitive == models.PrimitiveString))
	if !ok {
		return unsupported(path, key, "map keys must be integers, strings or enums")
	}
	return nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// unsupportedReason explains a Go spelling the metadata source could not
// resolve
func unsupportedReason(spelling string) string {
	switch {
	case strings.HasPrefix(spelling, "chan ") || strings.HasPrefix(spelling, "<-chan") || strings.HasPrefix(spelling, "chan<-"):
		return "channels cannot cross a transport"
	case strings.HasPrefix(spelling, "func"):
		return "funcs cannot cross a transport; declare a callback interface"
	case spelling == "any" || strings.HasPrefix(spelling, "interface"):
		return "untyped values have no marshalling strategy"
	case strings.HasPrefix(spelling, "**"):
		return "pointers to pointers are not supported"
	case strings.HasPrefix(spelling, "*"):
		return "pointers are only supported to primitives, enums and records"
	case strings.Contains(spelling, "."):
		return "types from other packages are not supported"
	default:
		return "no marshalling strategy"
	}
}
