package bitpack

import (
	"math/bits"
	"strconv"
)

// Storage is the family of native unsigned integers a record can be stored in.
// Uint128 extends the family to 128 bits with its own set of window operations.
type Storage interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Width returns the bit width of the storage type D.
func Width[D Storage]() uint {
	var zero D
	return uint(bits.Len64(uint64(^zero)))
}

// Mask returns a D with the low width bits set.
// A width equal to the storage width yields all ones.
func Mask[D Storage](width uint) D {
	return D(1)<<width - 1
}

// Extract returns the width-bit window of raw starting at offset, shifted
// down to bit 0.
func Extract[D Storage](raw D, offset, width uint) D {
	return raw >> offset & Mask[D](width)
}

// Insert returns raw with the width-bit window at offset replaced by the low
// width bits of v. Bits outside the window are preserved.
func Insert[D Storage](raw D, offset, width uint, v D) D {
	m := Mask[D](width) << offset
	return raw&^m | v<<offset&m
}

// FromBool returns 1 for true and 0 for false.
func FromBool[D Storage](b bool) D {
	if b {
		return 1
	}
	return 0
}

// Widen converts a value encoded against a narrower storage into a wider one.
// The bit pattern is unchanged; only the integer width grows. N must not be
// wider than W: the storage order only widens, and Widen panics otherwise
// rather than truncate.
func Widen[N, W Storage](v N) W {
	if Width[N]() > Width[W]() {
		panic("bitpack: Widen from " + strconv.FormatUint(uint64(Width[N]()), 10) +
			" to " + strconv.FormatUint(uint64(Width[W]()), 10) + " bits narrows")
	}
	return W(v)
}

// Widen128 widens any native storage value to the top of the storage order.
func Widen128[N Storage](v N) Uint128 {
	return Uint128From(uint64(v))
}
