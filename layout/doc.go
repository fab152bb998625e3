// Package layout computes bit widths and field offsets of bitfield records
// and validates schemas against their storage.
//
// # Width Rules
//
//   - bool: 1
//   - uN: N
//   - enum: its declared width
//   - record: its own total bit count
//   - tuple: sum of the element widths
//   - Option<T>: 1 + width of T, presence bit first
//
// # Offsets
//
// Field i is placed at the sum of the extents of fields 0..i-1 unless an
// explicit bit range overrides it. An override does not move the default
// position of later fields. A repeated field [T; N] spans
// (N-1)*stride + width(T) bits, stride defaulting to width(T). The record's
// total is the largest field end.
//
// # Usage
//
//	c := layout.NewCalculator()
//	info, err := c.Record(rec)
//	// info.Bits, info.Fields[i].Offset
//
//	err = layout.NewValidator(layout.Options{CheckOverlap: true}).Schema(s)
package layout
