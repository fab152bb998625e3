// Package transcoder packs and unpacks dynamic values against schema type
// descriptors.
//
// It is a single interpreter of the packing contract over every type shape,
// working on 128-bit words so one code path serves all storage widths:
//
//	raw, err := transcoder.Pack(typ, transcoder.UintOf(5), raw, 7)
//	v, err := transcoder.Unpack(typ, raw, 7)
//
// Packing writes only the type's window; every other bit of the word is
// preserved. An absent option clears its presence bit and leaves the
// payload bits as they were.
//
// # Values
//
//	Bool         bool
//	Uint         u1..u128
//	EnumValue    enum, Known false for unmapped patterns of partial enums
//	RecordValue  nested record, as its raw word
//	TupleValue   tuple, or the instances of a repeated field
//	OptionValue  Option<T>
//
// # Records
//
// Record wraps a record's layout to read and write fields by name, honoring
// access modes. The bitgen explorer is built on it.
//
// # Thread Safety
//
// EnumTable is safe for concurrent use. Encoder, Decoder and Record cache
// layouts and enum tables and are NOT thread-safe.
package transcoder
