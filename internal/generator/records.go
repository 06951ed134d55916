package generator

import (
	"github.com/dave/jennifer/jen"

	"github.com/toyz/remoter/internal/strategy"
)

// recordsFile emits a writer and a reader per record. Emitting a record's
// fields can discover further records, so the set is walked until it stops
// growing.
func (g *Generator) recordsFile(packageName string, records *strategy.RecordSet, prefixes func(string) string) *jen.File {
	f := newFile(packageName)

	for i := 0; i < records.Len(); i++ {
		s := records.Records()[i]

		enc := strategy.NewEmitter(g.table, "w", "r", records).WithCallbackPrefix(prefixes)
		var writes []jen.Code
		for _, field := range s.Fields {
			writes = append(writes, enc.Encode(field.Strategy, jen.Id("v").Dot(field.Name))...)
		}

		dec := strategy.NewEmitter(g.table, "w", "r", records).WithCallbackPrefix(prefixes)
		var reads []jen.Code
		for _, field := range s.Fields {
			reads = append(reads, dec.Decode(field.Strategy, jen.Id("v").Dot(field.Name))...)
		}
		reads = append(reads, jen.Return(jen.Id("v")))

		if i > 0 {
			f.Line()
		}
		f.Func().Id(strategy.RecordWriter(s.Name)).
			Params(jen.Id("w").Op("*").Qual(strategy.RuntimePath, "Writer"), jen.Id("v").Id(s.Name)).
			Block(writes...)
		f.Line()
		f.Func().Id(strategy.RecordReader(s.Name)).
			Params(jen.Id("r").Op("*").Qual(strategy.RuntimePath, "Reader")).
			Params(jen.Id("v").Id(s.Name)).
			Block(reads...)
	}
	return f
}
