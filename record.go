package bitpack

import "strconv"

// Record is implemented by every generated bitfield type. BitSize is the sum
// of the field widths, which may be smaller than the storage width.
type Record[S Storage] interface {
	BitSize() uint
	Raw() S
}

// Record128 is Record for types stored in a Uint128.
type Record128 interface {
	BitSize() uint
	Raw() Uint128
}

// PackRecord embeds the low BitSize bits of r at offset in raw.
// The record's storage S must not be wider than D.
func PackRecord[D, S Storage](raw D, offset uint, r Record[S]) D {
	return Insert(raw, offset, r.BitSize(), D(r.Raw()))
}

// UnpackRecord extracts a bits-wide window at offset and reinterprets it as
// the raw storage of a record.
func UnpackRecord[S, D Storage](raw D, offset, bits uint) S {
	return S(Extract(raw, offset, bits))
}

// PackRecord128 embeds a native record into 128-bit storage.
func PackRecord128[S Storage](raw Uint128, offset uint, r Record[S]) Uint128 {
	return Insert128(raw, offset, r.BitSize(), Widen128(r.Raw()))
}

// UnpackRecord128 extracts a native record's raw storage from 128-bit storage.
func UnpackRecord128[S Storage](raw Uint128, offset, bits uint) S {
	return S(Extract128(raw, offset, bits).Uint64())
}

// CheckIndex panics unless 0 <= i < n. Generated accessors of repeated
// fields call it so a bad index fails like indexing a Go array.
func CheckIndex(i, n int) {
	if i < 0 || i >= n {
		panic("bitpack: index out of range [" + strconv.Itoa(i) + "] with length " + strconv.Itoa(n))
	}
}
