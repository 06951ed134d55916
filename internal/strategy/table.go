package strategy

import (
	stderrors "errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dave/jennifer/jen"
	"github.com/toyz/remoter/internal/errors"
	"github.com/toyz/remoter/internal/models"
	"github.com/toyz/remoter/internal/utils"
)

// Version identifies the wire format produced by the built-in rules. It is
// recorded in the header of every generated file and must change whenever
// a rule changes its encoding.
const Version = 1

var (
	// ErrPartialRule is returned when a rule lacks its encode or decode half
	ErrPartialRule = stderrors.New("rule must define both an encode and a decode half")

	// ErrIncompleteTable is returned when sealing a table that does not
	// cover every kind
	ErrIncompleteTable = stderrors.New("table does not cover every kind")
)

// EncodeFunc emits statements writing value through the emitter's writer
type EncodeFunc func(e *Emitter, s *Strategy, value jen.Code) []jen.Code

// DecodeFunc emits statements reading a value through the emitter's reader
// and assigning it to target. Target is addressable and holds the zero value.
type DecodeFunc func(e *Emitter, s *Strategy, target jen.Code) []jen.Code

// Rule is the paired encode and decode emitter for one kind
type Rule struct {
	Encode EncodeFunc
	Decode DecodeFunc
}

// Table maps every kind to its rule. A sealed table is read-only and safe
// for concurrent use.
type Table struct {
	rules *utils.BaseRegistry[models.Kind, Rule]
}

// NewTable returns an empty, unsealed table
func NewTable() *Table {
	rules := utils.NewBaseRegistry[models.Kind, Rule]("strategy", "kind", "rule")
	rules.SetValidator(utils.ChainValidators(
		validateKind,
		utils.NoDuplicateValidator[models.Kind, Rule]("kind"),
		validateRule,
	))
	return &Table{rules: rules}
}

func validateKind(kind models.Kind, _ Rule, _ map[models.Kind]Rule) error {
	if !slices.Contains(models.Kinds, kind) {
		return errors.NewRegistrationError("rule", kind.String(), "kind is not part of the closed kind set")
	}
	return nil
}

func validateRule(kind models.Kind, rule Rule, _ map[models.Kind]Rule) error {
	var missing []string
	if rule.Encode == nil {
		missing = append(missing, "encode")
	}
	if rule.Decode == nil {
		missing = append(missing, "decode")
	}
	if len(missing) > 0 {
		return errors.NewRegistrationError("rule", kind.String(), "missing "+strings.Join(missing, " and ")).
			WithCause(ErrPartialRule)
	}
	return nil
}

// Register adds the rule for kind
func (t *Table) Register(kind models.Kind, rule Rule) error {
	return t.rules.Register(kind, rule)
}

// Seal checks that every kind has a rule and freezes the table
func (t *Table) Seal() error {
	return t.rules.Seal(func(items map[models.Kind]Rule) error {
		var missing []string
		for _, kind := range models.Kinds {
			if _, ok := items[kind]; !ok {
				missing = append(missing, kind.String())
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: missing %s", ErrIncompleteTable, strings.Join(missing, ", "))
		}
		return nil
	})
}

// Sealed reports whether the table is frozen
func (t *Table) Sealed() bool {
	return t.rules.Sealed()
}

// Rule returns the rule registered for kind
func (t *Table) Rule(kind models.Kind) (Rule, bool) {
	return t.rules.Get(kind)
}

func (t *Table) mustRule(kind models.Kind) Rule {
	rule, ok := t.rules.Get(kind)
	if !ok {
		panic(fmt.Sprintf("strategy: no rule for kind %s", kind))
	}
	return rule
}

// Encode emits the encoding of value. Nullable strategies are wrapped in a
// presence flag here, so rules only see non-nullable values.
func (t *Table) Encode(e *Emitter, s *Strategy, value jen.Code) []jen.Code {
	rule := t.mustRule(s.Kind)
	if !s.Nullable {
		return rule.Encode(e, s, value)
	}

	inner := *s
	inner.Nullable = false
	present := append([]jen.Code{e.W().Dot("WritePresent").Call(jen.True())},
		rule.Encode(e, &inner, jen.Op("*").Add(value))...)
	return []jen.Code{
		jen.If(jen.Add(value).Op("==").Nil()).Block(
			e.W().Dot("WritePresent").Call(jen.False()),
		).Else().Block(present...),
	}
}

// Decode emits the decoding of a value into target
func (t *Table) Decode(e *Emitter, s *Strategy, target jen.Code) []jen.Code {
	rule := t.mustRule(s.Kind)
	if !s.Nullable {
		return rule.Decode(e, s, target)
	}

	inner := *s
	inner.Nullable = false
	p := e.temp("p")
	body := []jen.Code{jen.Var().Id(p).Add(inner.GoType())}
	body = append(body, rule.Decode(e, &inner, jen.Id(p))...)
	body = append(body, jen.Add(target).Op("=").Op("&").Id(p))
	return []jen.Code{
		jen.If(e.R().Dot("ReadPresent").Call()).Block(body...),
	}
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the sealed table of built-in rules. A misconfigured
// built-in table is a programming error and panics.
func Default() *Table {
	defaultOnce.Do(func() {
		t := NewTable()
		if err := RegisterBuiltins(t); err != nil {
			panic(fmt.Sprintf("strategy: %v", err))
		}
		if err := t.Seal(); err != nil {
			panic(fmt.Sprintf("strategy: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}
