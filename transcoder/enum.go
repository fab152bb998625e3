package transcoder

import (
	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/schema"
)

// EnumTable maps discriminants to variants and back. It is read-only after
// construction and safe for concurrent use.
type EnumTable struct {
	schema *schema.EnumSchema
	byBits map[bitpack.Uint128]schema.Variant
	byName map[string]schema.Variant
}

func NewEnumTable(e *schema.EnumSchema) *EnumTable {
	t := &EnumTable{
		schema: e,
		byBits: make(map[bitpack.Uint128]schema.Variant, len(e.Variants)),
		byName: make(map[string]schema.Variant, len(e.Variants)),
	}
	for _, v := range e.Variants {
		if _, dup := t.byBits[v.Value]; !dup {
			t.byBits[v.Value] = v
		}
		t.byName[v.Name] = v
	}
	return t
}

// Schema returns the enum the table was built from.
func (t *EnumTable) Schema() *schema.EnumSchema {
	return t.schema
}

// Lookup returns the variant whose discriminant is bits. The second result
// is false when no variant matches, which only happens for partial enums or
// patterns wider than the enum.
func (t *EnumTable) Lookup(bits bitpack.Uint128) (schema.Variant, bool) {
	v, ok := t.byBits[bits]
	return v, ok
}

// ByName returns the variant with the given name.
func (t *EnumTable) ByName(name string) (schema.Variant, bool) {
	v, ok := t.byName[name]
	return v, ok
}

// Value returns the EnumValue for a bit pattern, known or not.
func (t *EnumTable) Value(bits bitpack.Uint128) EnumValue {
	if v, ok := t.Lookup(bits); ok {
		return EnumValue{Name: v.Name, Bits: bits, Known: true}
	}
	return EnumValue{Bits: bits}
}

// Total reports whether every pattern of the enum's width maps to a variant.
func (t *EnumTable) Total() bool {
	w := t.schema.Width
	return w < 63 && len(t.byBits) == 1<<w
}
