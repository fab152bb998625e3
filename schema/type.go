package schema

import (
	"strconv"
	"strings"
)

// MaxWidth is the widest integer and storage type.
const MaxWidth = 128

// Type describes a logical type that can be packed into a bit window.
// Exactly the fields relevant to Kind are set.
type Type struct {
	Record *RecordSchema // KindRecord
	Enum   *EnumSchema   // KindEnum
	Elem   *Type         // KindOption
	Name   string        // KindRef, KindEnum, KindRecord
	Elems  []*Type       // KindTuple
	Width  uint          // KindBool, KindUint, KindArbUint
	Kind   Kind
}

// Bool returns the one-bit boolean type.
func Bool() *Type {
	return &Type{Kind: KindBool, Width: 1}
}

// Uint returns an unsigned integer of the given width. Native widths
// (8, 16, 32, 64, 128) produce KindUint, every other width KindArbUint.
func Uint(width uint) *Type {
	if IsNativeWidth(width) {
		return &Type{Kind: KindUint, Width: width}
	}
	return &Type{Kind: KindArbUint, Width: width}
}

// Tuple returns a tuple of the given element types.
func Tuple(elems ...*Type) *Type {
	return &Type{Kind: KindTuple, Elems: elems}
}

// Option returns an optional wrapper around elem.
func Option(elem *Type) *Type {
	return &Type{Kind: KindOption, Elem: elem}
}

// Ref returns an unresolved reference to a named enum or record.
func Ref(name string) *Type {
	return &Type{Kind: KindRef, Name: name}
}

// EnumType returns the type of values of e.
func EnumType(e *EnumSchema) *Type {
	return &Type{Kind: KindEnum, Name: e.Name, Enum: e}
}

// RecordType returns the type of values of r.
func RecordType(r *RecordSchema) *Type {
	return &Type{Kind: KindRecord, Name: r.Name, Record: r}
}

// IsNativeWidth reports whether width is one of the native storage widths.
func IsNativeWidth(width uint) bool {
	switch width {
	case 8, 16, 32, 64, 128:
		return true
	}
	return false
}

// NativeBucket returns the smallest native width that holds width bits.
func NativeBucket(width uint) (uint, bool) {
	switch {
	case width == 0:
		return 0, false
	case width <= 8:
		return 8, true
	case width <= 16:
		return 16, true
	case width <= 32:
		return 32, true
	case width <= 64:
		return 64, true
	case width <= 128:
		return 128, true
	}
	return 0, false
}

// String renders the type in schema syntax.
func (t *Type) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Type) write(b *strings.Builder) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	switch t.Kind {
	case KindBool:
		b.WriteString("bool")
	case KindUint, KindArbUint:
		b.WriteByte('u')
		b.WriteString(strconv.FormatUint(uint64(t.Width), 10))
	case KindEnum, KindRecord, KindRef:
		b.WriteString(t.Name)
	case KindTuple:
		b.WriteByte('(')
		for i, e := range t.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			e.write(b)
		}
		if len(t.Elems) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case KindOption:
		b.WriteString("Option<")
		t.Elem.write(b)
		b.WriteByte('>')
	default:
		b.WriteString("?")
	}
}

// Walk calls fn for t and every type nested inside it, depth first.
// Nested records are visited but not entered.
func (t *Type) Walk(fn func(*Type)) {
	if t == nil {
		return
	}
	fn(t)
	switch t.Kind {
	case KindTuple:
		for _, e := range t.Elems {
			e.Walk(fn)
		}
	case KindOption:
		t.Elem.Walk(fn)
	}
}
