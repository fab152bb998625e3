package transcoder

import (
	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/schema"
)

// Decoder unpacks dynamic values from storage words.
type Decoder struct {
	calc   *layout.Calculator
	tables map[*schema.EnumSchema]*EnumTable
}

func NewDecoder() *Decoder {
	return NewDecoderWithCalculator(layout.NewCalculator())
}

func NewDecoderWithCalculator(c *layout.Calculator) *Decoder {
	return &Decoder{
		calc:   c,
		tables: make(map[*schema.EnumSchema]*EnumTable),
	}
}

// Unpack reads the value of t from the window of raw starting at offset.
// It fails only for types without a width. An enum pattern with no variant
// yields an EnumValue with Known false.
func (d *Decoder) Unpack(t *schema.Type, raw bitpack.Uint128, offset uint) (Value, error) {
	switch t.Kind {
	case schema.KindBool:
		return Bool(raw.Bit(offset)), nil

	case schema.KindUint, schema.KindArbUint:
		return Uint{Bits: bitpack.Extract128(raw, offset, t.Width)}, nil

	case schema.KindEnum:
		bits := bitpack.Extract128(raw, offset, t.Enum.Width)
		return d.table(t.Enum).Value(bits), nil

	case schema.KindRecord:
		width, err := d.calc.Bits(t)
		if err != nil {
			return nil, err
		}
		return RecordValue{Schema: t.Record, Raw: bitpack.Extract128(raw, offset, width)}, nil

	case schema.KindTuple:
		out := make(TupleValue, len(t.Elems))
		for i, elem := range t.Elems {
			v, err := d.Unpack(elem, raw, offset)
			if err != nil {
				return nil, err
			}
			out[i] = v
			w, err := d.calc.Bits(elem)
			if err != nil {
				return nil, err
			}
			offset += w
		}
		return out, nil

	case schema.KindOption:
		if !raw.Bit(offset) {
			return None(), nil
		}
		v, err := d.Unpack(t.Elem, raw, offset+1)
		if err != nil {
			return nil, err
		}
		return Some(v), nil
	}
	return nil, errors.InvalidType(errors.PhaseUnpack, nil, t.String(), "type cannot be unpacked")
}

func (d *Decoder) table(es *schema.EnumSchema) *EnumTable {
	t, ok := d.tables[es]
	if !ok {
		t = NewEnumTable(es)
		d.tables[es] = t
	}
	return t
}

// Unpack unpacks a value with a fresh Decoder.
func Unpack(t *schema.Type, raw bitpack.Uint128, offset uint) (Value, error) {
	return NewDecoder().Unpack(t, raw, offset)
}
