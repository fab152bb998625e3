// Package bitpack packs logical values into fixed-width unsigned integers.
//
// A bitfield is a record whose fields occupy bit windows of a single backing
// integer. This package holds the runtime half of the packing contract that
// generated bitfield code calls into; the schema, layout and code generation
// live in sub-packages.
//
// # Architecture Overview
//
//	bitpack/             Storage family, window extract/insert, Uint128, Option
//	├── schema/          Type descriptors, annotations, schema documents
//	├── layout/          Bit widths, field offsets, static validation
//	├── transcoder/      Dynamic pack/unpack over type descriptors
//	├── codegen/         Go source generator for bitfields and enums
//	├── witimport/       WIT type definitions to schema documents
//	├── errors/          Structured static errors
//	└── cmd/bitgen/      Command line generator and layout explorer
//
// # Packing Contract
//
// For a logical type T stored in D with a constant width BITS(T):
//
//	unpack(raw, offset)    extracts the BITS(T) window at offset (bit 0 is the LSB)
//	pack(v, raw, offset)   replaces that window, leaving every other bit of raw intact
//
// Tuples pack their elements back to back in declaration order, an option is a
// presence bit followed by its payload, and a nested record embeds its low
// BITS(R) bits. Offsets are checked against the storage width when a schema is
// validated, never while packing.
//
// # Widening
//
// Storage widths are totally ordered (8 < 16 < 32 < 64 < 128). A value packed
// against a narrower storage can be embedded unchanged into any wider one:
//
//	var narrow uint8 = bitpack.Insert[uint8](0, 3, 4, 0xA)
//	wide := bitpack.Widen[uint8, uint32](narrow)
//	bitpack.Extract(wide, 3, 4) // 0xA
//
// # Thread Safety
//
// Every function in this package is pure and operates on value copies.
package bitpack
