// Package codegen turns a resolved schema into Go source.
//
// For a record R stored in D the generated code declares:
//
//	type R D
//	const RBits = N
//	var _ [uint(W) - RBits]struct{} // fails to compile if R outgrows D
//	func (r R) Raw() D
//	func (r R) BitSize() uint
//	func (r R) F() T              // omitted for write-only fields
//	func (r R) WithF(v T) R       // omitted for read-only fields
//	func (r R) String() string
//
// Repeated fields take an index, F(i int) and WithF(i int, v T), and panic
// when it is out of range. Readers of partial enum fields return (E, bool).
// Unnamed fields are accessed as Get<i> and With<i>.
//
// For an enum E the generated code declares its variants as constants, EBits,
// String, Valid and EFromBits; exhaustive enums also get EMustFromBits.
//
// Field types map to Go as follows: bool to bool, uN to the smallest of
// uint8..uint64 or bitpack.Uint128, tuples to named structs with fields
// V0..Vn, Option<T> to bitpack.Option[T], and nested enums and records to
// their generated types. Records nest through bitpack.PackRecord and
// bitpack.UnpackRecord.
//
// The schema is validated before anything is emitted and the output is run
// through go/format.
package codegen
