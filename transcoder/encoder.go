package transcoder

import (
	"strconv"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/schema"
)

// Encoder packs dynamic values into storage words.
type Encoder struct {
	calc   *layout.Calculator
	tables map[*schema.EnumSchema]*EnumTable
}

func NewEncoder() *Encoder {
	return NewEncoderWithCalculator(layout.NewCalculator())
}

func NewEncoderWithCalculator(c *layout.Calculator) *Encoder {
	return &Encoder{
		calc:   c,
		tables: make(map[*schema.EnumSchema]*EnumTable),
	}
}

// Pack returns raw with v written to the window of t starting at offset.
// Bits outside that window are preserved. Integers wider than their type
// are truncated to it, as a window insert would.
func (e *Encoder) Pack(t *schema.Type, v Value, raw bitpack.Uint128, offset uint) (bitpack.Uint128, error) {
	return e.pack(t, v, raw, offset, nil)
}

func (e *Encoder) pack(t *schema.Type, v Value, raw bitpack.Uint128, offset uint, path []string) (bitpack.Uint128, error) {
	switch t.Kind {
	case schema.KindBool:
		b, ok := v.(Bool)
		if !ok {
			return raw, errors.TypeMismatch(errors.PhasePack, path, t.String(), v)
		}
		return bitpack.Insert128(raw, offset, 1, bitpack.FromBool128(bool(b))), nil

	case schema.KindUint, schema.KindArbUint:
		u, ok := v.(Uint)
		if !ok {
			return raw, errors.TypeMismatch(errors.PhasePack, path, t.String(), v)
		}
		return bitpack.Insert128(raw, offset, t.Width, u.Bits), nil

	case schema.KindEnum:
		ev, ok := v.(EnumValue)
		if !ok {
			return raw, errors.TypeMismatch(errors.PhasePack, path, t.String(), v)
		}
		bits := ev.Bits
		if ev.Name != "" {
			variant, found := e.table(t.Enum).ByName(ev.Name)
			if !found {
				return raw, errors.New(errors.PhasePack, errors.KindNotFound).
					Path(path...).
					Type(t.Name).
					Value(ev.Name).
					Detail("enum %s has no variant %q", t.Name, ev.Name).
					Build()
			}
			bits = variant.Value
		}
		return bitpack.Insert128(raw, offset, t.Enum.Width, bits), nil

	case schema.KindRecord:
		rv, ok := v.(RecordValue)
		if !ok {
			return raw, errors.TypeMismatch(errors.PhasePack, path, t.String(), v)
		}
		width, err := e.calc.Bits(t)
		if err != nil {
			return raw, err
		}
		return bitpack.Insert128(raw, offset, width, rv.Raw), nil

	case schema.KindTuple:
		tv, ok := v.(TupleValue)
		if !ok || len(tv) != len(t.Elems) {
			return raw, errors.TypeMismatch(errors.PhasePack, path, t.String(), v)
		}
		for i, elem := range t.Elems {
			var err error
			raw, err = e.pack(elem, tv[i], raw, offset, append(path, strconv.Itoa(i)))
			if err != nil {
				return raw, err
			}
			w, err := e.calc.Bits(elem)
			if err != nil {
				return raw, err
			}
			offset += w
		}
		return raw, nil

	case schema.KindOption:
		ov, ok := v.(OptionValue)
		if !ok {
			return raw, errors.TypeMismatch(errors.PhasePack, path, t.String(), v)
		}
		raw = bitpack.Insert128(raw, offset, 1, bitpack.FromBool128(ov.Present))
		if !ov.Present {
			// payload bits keep whatever the frame held
			return raw, nil
		}
		return e.pack(t.Elem, ov.Value, raw, offset+1, path)
	}
	return raw, errors.InvalidType(errors.PhasePack, path, t.String(), "type cannot be packed")
}

func (e *Encoder) table(es *schema.EnumSchema) *EnumTable {
	t, ok := e.tables[es]
	if !ok {
		t = NewEnumTable(es)
		e.tables[es] = t
	}
	return t
}

// Pack packs v with a fresh Encoder.
func Pack(t *schema.Type, v Value, raw bitpack.Uint128, offset uint) (bitpack.Uint128, error) {
	return NewEncoder().Pack(t, v, raw, offset)
}
