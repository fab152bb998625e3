// Package witimport builds schema documents from WebAssembly Interface Type
// definitions, as decoded by go.bytecodealliance.org/wit from the JSON that
// `wasm-tools component wit --json` prints.
//
// Mapping:
//
//	bool            bool
//	u8 .. u64       u8 .. u64
//	enum            enum, width ceil(log2 n) with a minimum of 1;
//	                exhaustive when n is a power of two
//	flags           record of bool fields, one bit per flag
//	record          record
//	tuple<..>       tuple
//	option<T>       Option<T>
//	type aliases    followed
//
// Imported records are stored in the smallest native width holding all of
// their bits. Signed integers, floats, char, string, list, variant, result
// and resource handles have no bit-packed form and fail with an InvalidType
// error naming the WIT type, unless Options.SkipUnsupported is set.
//
// WIT names are kebab-case; they are imported with '-' replaced by '_'.
package witimport
