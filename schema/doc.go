// Package schema describes bitfield records and bit-pattern-backed enums.
//
// A schema is built either programmatically (NewRecord, Field, NewEnum) or
// from a document in TOML, YAML or JSON:
//
//	doc, err := schema.LoadFile("regs.toml")
//	s, err := schema.Resolve(doc)
//
// # Type Descriptors
//
// Logical types are a tagged variant (Kind) interpreted by the layout,
// transcoder and codegen packages:
//
//   - bool: one bit
//   - u1..u128: native (8, 16, 32, 64, 128) or arbitrary width unsigned integers
//   - enum: declared width, named discriminants
//   - record: a nested bitfield
//   - tuple (T0, T1, ...): elements packed back to back
//   - Option<T> (also ?T): presence bit followed by T
//
// A field type may also be an array "[T; N]" of repeated instances spaced
// by a stride.
//
// # Annotations
//
// Per-field annotations set the access mode and an explicit position:
//
//	attr = "r, bits: 4..=7"
//	attr = "{ w, bit: 3 }"
//	attr = "bits: 0..4, stride := 4"
//
// Width checks happen in the layout package; this package only resolves
// names and syntax.
package schema
