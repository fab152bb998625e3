package schema

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/wippyai/bitpack/errors"
)

// ParseType parses a type expression:
//
//	bool
//	u1 .. u128
//	(T0, T1, ...)      tuple, () is the empty tuple
//	Option<T> or ?T    optional
//	Name               enum or record reference
//
// References are left unresolved (KindRef).
func ParseType(src string) (*Type, error) {
	p := &typeParser{src: src}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

// ParseFieldType parses a field type, which may additionally be an array
// of repeated instances "[T; N]". count is 0 for a plain type.
func ParseFieldType(src string) (t *Type, count int, err error) {
	s := strings.TrimSpace(src)
	if !strings.HasPrefix(s, "[") {
		t, err = ParseType(s)
		return t, 0, err
	}
	if !strings.HasSuffix(s, "]") {
		return nil, 0, errors.InvalidType(errors.PhaseParse, nil, src, "unterminated array type")
	}
	inner := s[1 : len(s)-1]
	i := strings.LastIndexByte(inner, ';')
	if i < 0 {
		return nil, 0, errors.InvalidType(errors.PhaseParse, nil, src, "array type needs a count: [T; N]")
	}
	n, perr := strconv.ParseUint(strings.TrimSpace(inner[i+1:]), 10, 16)
	if perr != nil || n == 0 {
		return nil, 0, errors.InvalidType(errors.PhaseParse, nil, src, "array count must be a positive integer")
	}
	t, err = ParseType(inner[:i])
	if err != nil {
		return nil, 0, err
	}
	return t, int(n), nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(detail string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidType).
		Type(strings.TrimSpace(p.src)).
		Detail(detail, args...).
		Build()
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) expect(c byte) error {
	if p.peek() != c {
		if p.pos >= len(p.src) {
			return p.errorf("expected %q at end of input", c)
		}
		return p.errorf("expected %q at offset %d", c, p.pos)
	}
	p.pos++
	return nil
}

func (p *typeParser) parseType() (*Type, error) {
	switch c := p.peek(); {
	case c == 0:
		return nil, p.errorf("missing type")
	case c == '?':
		p.pos++
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return Option(elem), nil
	case c == '(':
		return p.parseTuple()
	case isIdentStart(c):
		return p.parseNamed()
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}

func (p *typeParser) parseTuple() (*Type, error) {
	p.pos++ // '('
	var elems []*Type
	for {
		if p.peek() == ')' {
			p.pos++
			return Tuple(elems...), nil
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
		default:
			return nil, p.errorf("expected ',' or ')' in tuple")
		}
	}
}

func (p *typeParser) parseNamed() (*Type, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]

	switch {
	case name == "bool":
		return Bool(), nil
	case name == "Option":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return Option(elem), nil
	case isUintName(name):
		w, err := strconv.ParseUint(name[1:], 10, 16)
		if err != nil || w == 0 || w > MaxWidth {
			return nil, p.errorf("integer width must be in 1..=%d", MaxWidth)
		}
		return Uint(uint(w)), nil
	}
	return Ref(name), nil
}

// isBuiltinName reports whether parseNamed resolves name to a builtin type
// instead of a reference.
func isBuiltinName(name string) bool {
	return name == "bool" || name == "Option" || isUintName(name)
}

func isUintName(name string) bool {
	if len(name) < 2 || name[0] != 'u' {
		return false
	}
	for i := 1; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
