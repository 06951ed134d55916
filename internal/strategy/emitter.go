package strategy

import (
	"fmt"

	"github.com/dave/jennifer/jen"
)

// Emitter carries the state of one generated function body: the writer and
// reader identifiers, a counter for temporaries and the records whose
// helpers the body calls.
type Emitter struct {
	table    *Table
	writer   string
	reader   string
	counter  int
	records  *RecordSet
	callback func(name string) string
}

// NewEmitter returns an emitter writing through the identifiers writer and
// reader. Records encountered are added to records.
func NewEmitter(table *Table, writer, reader string, records *RecordSet) *Emitter {
	if records == nil {
		records = NewRecordSet()
	}
	return &Emitter{
		table:   table,
		writer:  writer,
		reader:  reader,
		records: records,
	}
}

// WithCallbackPrefix sets how a callback interface name maps to the prefix
// of its generated proxy and stub constructors
func (e *Emitter) WithCallbackPrefix(fn func(name string) string) *Emitter {
	e.callback = fn
	return e
}

// Encode emits statements writing value
func (e *Emitter) Encode(s *Strategy, value jen.Code) []jen.Code {
	return e.table.Encode(e, s, value)
}

// Decode emits statements reading into target
func (e *Emitter) Decode(s *Strategy, target jen.Code) []jen.Code {
	return e.table.Decode(e, s, target)
}

// W returns the writer identifier
func (e *Emitter) W() *jen.Statement { return jen.Id(e.writer) }

// R returns the reader identifier
func (e *Emitter) R() *jen.Statement { return jen.Id(e.reader) }

// Records returns the record set shared by this emitter
func (e *Emitter) Records() *RecordSet { return e.records }

// CallbackPrefix maps a callback interface name to its generated prefix
func (e *Emitter) CallbackPrefix(name string) string {
	if e.callback == nil {
		return name
	}
	return e.callback(name)
}

func (e *Emitter) next() int {
	e.counter++
	return e.counter
}

func (e *Emitter) temp(prefix string) string {
	return fmt.Sprintf("_%s%d", prefix, e.next())
}

// RecordSet collects the records a package needs helpers for, in the order
// they were first seen
type RecordSet struct {
	order  []string
	byName map[string]*Strategy
}

// NewRecordSet returns an empty set
func NewRecordSet() *RecordSet {
	return &RecordSet{byName: make(map[string]*Strategy)}
}

// Add records s. Back-references and records already present are ignored.
func (rs *RecordSet) Add(s *Strategy) bool {
	if s.Ref {
		return false
	}
	if _, ok := rs.byName[s.Name]; ok {
		return false
	}
	record := *s
	record.Nullable = false
	rs.byName[s.Name] = &record
	rs.order = append(rs.order, s.Name)
	return true
}

// Merge adds every record of other
func (rs *RecordSet) Merge(other *RecordSet) {
	for _, s := range other.Records() {
		rs.Add(s)
	}
}

// Records returns the records in first-seen order
func (rs *RecordSet) Records() []*Strategy {
	out := make([]*Strategy, len(rs.order))
	for i, name := range rs.order {
		out[i] = rs.byName[name]
	}
	return out
}

// Len returns the number of records
func (rs *RecordSet) Len() int {
	return len(rs.order)
}
