package schema

import "github.com/wippyai/bitpack"

// Variant is one named discriminant of an enumeration.
type Variant struct {
	Name  string
	Doc   string
	Value bitpack.Uint128
}

// EnumSchema maps fixed-width bit patterns to named variants. Width is
// declared explicitly and never inferred from the variant count.
type EnumSchema struct {
	Name       string
	Doc        string
	Variants   []Variant
	Width      uint
	Exhaustive bool
}

// NewEnum builds an enum whose variants take the values 0, 1, 2, ...
func NewEnum(name string, width uint, exhaustive bool, names ...string) *EnumSchema {
	e := &EnumSchema{Name: name, Width: width, Exhaustive: exhaustive}
	for i, n := range names {
		e.Variants = append(e.Variants, Variant{Name: n, Value: bitpack.Uint128From(uint64(i))})
	}
	return e
}

// Variant returns the variant with the given name.
func (e *EnumSchema) Variant(name string) (Variant, bool) {
	for _, v := range e.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}
