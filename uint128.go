package bitpack

import (
	"math/big"
	"math/bits"
	"strconv"
)

// Uint128 is a 128-bit unsigned integer, the widest storage type.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Uint128From returns v widened to 128 bits.
func Uint128From(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// Mask128 returns a Uint128 with the low width bits set.
func Mask128(width uint) Uint128 {
	switch {
	case width == 0:
		return Uint128{}
	case width < 64:
		return Uint128{Lo: 1<<width - 1}
	case width < 128:
		return Uint128{Hi: 1<<(width-64) - 1, Lo: ^uint64(0)}
	default:
		return Uint128{Hi: ^uint64(0), Lo: ^uint64(0)}
	}
}

// Uint64 returns the low 64 bits.
func (u Uint128) Uint64() uint64 {
	return u.Lo
}

// IsZero reports whether all bits are clear.
func (u Uint128) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

// Equal reports whether u and v hold the same bits.
func (u Uint128) Equal(v Uint128) bool {
	return u.Hi == v.Hi && u.Lo == v.Lo
}

// And returns u & v.
func (u Uint128) And(v Uint128) Uint128 {
	return Uint128{Hi: u.Hi & v.Hi, Lo: u.Lo & v.Lo}
}

// Or returns u | v.
func (u Uint128) Or(v Uint128) Uint128 {
	return Uint128{Hi: u.Hi | v.Hi, Lo: u.Lo | v.Lo}
}

// AndNot returns u &^ v.
func (u Uint128) AndNot(v Uint128) Uint128 {
	return Uint128{Hi: u.Hi &^ v.Hi, Lo: u.Lo &^ v.Lo}
}

// Not returns ^u.
func (u Uint128) Not() Uint128 {
	return Uint128{Hi: ^u.Hi, Lo: ^u.Lo}
}

// Shl returns u << n. Shifts of 128 or more yield zero.
func (u Uint128) Shl(n uint) Uint128 {
	switch {
	case n == 0:
		return u
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{Hi: u.Lo << (n - 64)}
	default:
		return Uint128{Hi: u.Hi<<n | u.Lo>>(64-n), Lo: u.Lo << n}
	}
}

// Shr returns u >> n. Shifts of 128 or more yield zero.
func (u Uint128) Shr(n uint) Uint128 {
	switch {
	case n == 0:
		return u
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{Lo: u.Hi >> (n - 64)}
	default:
		return Uint128{Hi: u.Hi >> n, Lo: u.Lo>>n | u.Hi<<(64-n)}
	}
}

// Bit returns bit i of u.
func (u Uint128) Bit(i uint) bool {
	return !u.Shr(i).And(Uint128{Lo: 1}).IsZero()
}

// Len returns the minimum number of bits required to represent u.
func (u Uint128) Len() int {
	if u.Hi != 0 {
		return 64 + bits.Len64(u.Hi)
	}
	return bits.Len64(u.Lo)
}

// Big returns u as a big.Int.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

// String returns the decimal representation of u.
func (u Uint128) String() string {
	if u.Hi == 0 {
		return strconv.FormatUint(u.Lo, 10)
	}
	return u.Big().String()
}

// ParseUint128 parses a decimal, 0x, 0o or 0b prefixed unsigned integer.
func ParseUint128(s string) (Uint128, bool) {
	b, ok := new(big.Int).SetString(s, 0)
	if !ok || b.Sign() < 0 || b.BitLen() > 128 {
		return Uint128{}, false
	}
	lo := new(big.Int).And(b, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(b, 64)
	return Uint128{Hi: hi.Uint64(), Lo: lo.Uint64()}, true
}

// Extract128 is Extract for 128-bit storage.
func Extract128(raw Uint128, offset, width uint) Uint128 {
	return raw.Shr(offset).And(Mask128(width))
}

// Insert128 is Insert for 128-bit storage.
func Insert128(raw Uint128, offset, width uint, v Uint128) Uint128 {
	m := Mask128(width).Shl(offset)
	return raw.AndNot(m).Or(v.Shl(offset).And(m))
}

// FromBool128 returns 1 for true and 0 for false.
func FromBool128(b bool) Uint128 {
	if b {
		return Uint128{Lo: 1}
	}
	return Uint128{}
}
