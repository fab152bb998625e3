package transcoder

import (
	"fmt"
	"strings"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/schema"
)

// Value is a dynamic value of a schema type. The concrete types are Bool,
// Uint, EnumValue, RecordValue, TupleValue and OptionValue.
type Value interface {
	fmt.Stringer
	isValue()
}

// Bool is a value of the bool type.
type Bool bool

// Uint is a value of any integer type up to 128 bits.
type Uint struct {
	Bits bitpack.Uint128
}

// UintOf returns v as a Uint.
func UintOf(v uint64) Uint {
	return Uint{Bits: bitpack.Uint128From(v)}
}

// EnumValue is a value of an enum type. Known is false when Bits match no
// variant of a partial enum; Name is then empty and Bits keeps the pattern.
type EnumValue struct {
	Name  string
	Bits  bitpack.Uint128
	Known bool
}

// RecordValue is a nested record held as its raw storage word.
type RecordValue struct {
	Schema *schema.RecordSchema
	Raw    bitpack.Uint128
}

// TupleValue holds one value per tuple element, or one per instance of a
// repeated field.
type TupleValue []Value

// OptionValue is a value of Option<T>. Value is ignored when Present is false.
type OptionValue struct {
	Value   Value
	Present bool
}

// Some returns a present OptionValue.
func Some(v Value) OptionValue {
	return OptionValue{Value: v, Present: true}
}

// None returns an absent OptionValue.
func None() OptionValue {
	return OptionValue{}
}

func (Bool) isValue()        {}
func (Uint) isValue()        {}
func (EnumValue) isValue()   {}
func (RecordValue) isValue() {}
func (TupleValue) isValue()  {}
func (OptionValue) isValue() {}

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (u Uint) String() string {
	return u.Bits.String()
}

func (e EnumValue) String() string {
	if e.Known {
		return e.Name
	}
	return "?" + e.Bits.String()
}

func (r RecordValue) String() string {
	name := "record"
	if r.Schema != nil {
		name = r.Schema.Name
	}
	return fmt.Sprintf("%s(%#x)", name, r.Raw.Big())
}

func (t TupleValue) String() string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = valueString(v)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (o OptionValue) String() string {
	if !o.Present {
		return "None"
	}
	return "Some(" + valueString(o.Value) + ")"
}

func valueString(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}

// Zero returns the value whose packed form is all zero bits.
func Zero(t *schema.Type) Value {
	switch t.Kind {
	case schema.KindBool:
		return Bool(false)
	case schema.KindUint, schema.KindArbUint:
		return Uint{}
	case schema.KindEnum:
		return NewEnumTable(t.Enum).Value(bitpack.Uint128{})
	case schema.KindRecord:
		return RecordValue{Schema: t.Record}
	case schema.KindTuple:
		out := make(TupleValue, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = Zero(e)
		}
		return out
	case schema.KindOption:
		return None()
	}
	return nil
}
