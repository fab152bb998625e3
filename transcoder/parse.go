package transcoder

import (
	"strings"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/schema"
)

// ParseValue parses the text form of a value of t, as printed by
// Value.String:
//
//	true, false           bool (also 1, 0)
//	42, 0x2a, 0b101010    integers and raw record words
//	Name or 3             enum variant by name or discriminant
//	None, Some(x), x      options
//	(a, b)                tuples
//
// Integers that do not fit their type are rejected.
func ParseValue(t *schema.Type, s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch t.Kind {
	case schema.KindBool:
		switch strings.ToLower(s) {
		case "true", "1":
			return Bool(true), nil
		case "false", "0":
			return Bool(false), nil
		}
		return nil, parseError(t, s, "expected true or false")

	case schema.KindUint, schema.KindArbUint:
		u, err := parseBits(t, s, t.Width)
		if err != nil {
			return nil, err
		}
		return Uint{Bits: u}, nil

	case schema.KindEnum:
		table := NewEnumTable(t.Enum)
		if v, ok := table.ByName(s); ok {
			return EnumValue{Name: v.Name, Bits: v.Value, Known: true}, nil
		}
		u, err := parseBits(t, strings.TrimPrefix(s, "?"), t.Enum.Width)
		if err != nil {
			return nil, parseError(t, s, "not a variant of "+t.Name)
		}
		return table.Value(u), nil

	case schema.KindRecord:
		u, err := parseBits(t, s, uint(t.Record.Storage))
		if err != nil {
			return nil, err
		}
		return RecordValue{Schema: t.Record, Raw: u}, nil

	case schema.KindOption:
		switch {
		case s == "" || strings.EqualFold(s, "none"):
			return None(), nil
		case strings.HasPrefix(s, "Some(") && strings.HasSuffix(s, ")"):
			s = s[len("Some(") : len(s)-1]
		}
		v, err := ParseValue(t.Elem, s)
		if err != nil {
			return nil, err
		}
		return Some(v), nil

	case schema.KindTuple:
		if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
			return nil, parseError(t, s, "tuples are written (a, b, ...)")
		}
		parts := splitTopLevel(s[1 : len(s)-1])
		if len(parts) != len(t.Elems) {
			return nil, parseError(t, s, "wrong number of tuple elements")
		}
		out := make(TupleValue, len(parts))
		for i, p := range parts {
			v, err := ParseValue(t.Elems[i], p)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, errors.InvalidType(errors.PhasePack, nil, t.String(), "type has no text form")
}

func parseBits(t *schema.Type, s string, width uint) (bitpack.Uint128, error) {
	u, ok := bitpack.ParseUint128(strings.ReplaceAll(s, "_", ""))
	if !ok {
		return u, parseError(t, s, "expected an unsigned integer")
	}
	if u.Len() > int(width) {
		return u, errors.New(errors.PhasePack, errors.KindOverflow).
			Type(t.String()).
			Value(s).
			Detail("%s does not fit in %d bits", s, width).
			Build()
	}
	return u, nil
}

// splitTopLevel splits on commas outside parentheses and angle brackets.
// A trailing comma, as in "(a,)", is dropped.
func splitTopLevel(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '<':
			depth++
		case ')', '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		parts = append(parts, last)
	}
	return parts
}

func parseError(t *schema.Type, s, detail string) error {
	return errors.New(errors.PhasePack, errors.KindInvalidData).
		Type(t.String()).
		Value(s).
		Detail("cannot parse %q: %s", s, detail).
		Build()
}
