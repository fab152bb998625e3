package codegen

import (
	"fmt"
	"strconv"
)

// pos is a bit offset in generated code: a constant part plus an optional
// runtime part for instances of repeated fields.
type pos struct {
	v string
	c uint
}

func at(c uint) pos { return pos{c: c} }

func (p pos) add(n uint) pos {
	p.c += n
	return p
}

func (p pos) String() string {
	switch {
	case p.v == "":
		return strconv.FormatUint(uint64(p.c), 10)
	case p.c == 0:
		return p.v
	}
	return fmt.Sprintf("%d+%s", p.c, p.v)
}

// backend renders window operations for one storage width. Native widths
// go through the generic bitpack.Extract/Insert; 128 bits use the Uint128
// variants.
// Every method rendering a bitpack reference registers the runtime import.
type backend struct {
	g    *Generator
	bits uint
}

func (g *Generator) backend(bits uint) backend {
	return backend{g: g, bits: bits}
}

func (s backend) wide() bool {
	return s.bits == 128
}

// goType is the Go type of a raw storage word.
func (s backend) goType() string {
	if s.wide() {
		s.g.runtime()
		return "bitpack.Uint128"
	}
	return "uint" + strconv.FormatUint(uint64(s.bits), 10)
}

func (s backend) extract(raw string, off pos, width string) string {
	s.g.runtime()
	if s.wide() {
		return fmt.Sprintf("bitpack.Extract128(%s, %s, %s)", raw, off, width)
	}
	return fmt.Sprintf("bitpack.Extract(%s, %s, %s)", raw, off, width)
}

func (s backend) insert(raw string, off pos, width, v string) string {
	s.g.runtime()
	if s.wide() {
		return fmt.Sprintf("bitpack.Insert128(%s, %s, %s, %s)", raw, off, width, v)
	}
	return fmt.Sprintf("bitpack.Insert(%s, %s, %s, %s)", raw, off, width, v)
}

// bit tests a single bit.
func (s backend) bit(raw string, off pos) string {
	if s.wide() {
		return fmt.Sprintf("%s.Bit(%s)", raw, off)
	}
	return s.extract(raw, off, "1") + " != 0"
}

func (s backend) fromBool(v string) string {
	s.g.runtime()
	if s.wide() {
		return "bitpack.FromBool128(" + v + ")"
	}
	return "bitpack.FromBool[" + s.goType() + "](" + v + ")"
}

// fromInt converts a Go integer value, stored natively in wide or narrow
// form, to a storage word.
func (s backend) fromInt(v string, valueWide bool) string {
	switch {
	case s.wide() && valueWide:
		s.g.runtime()
		return "bitpack.Uint128(" + v + ")"
	case s.wide():
		s.g.runtime()
		return "bitpack.Uint128From(uint64(" + v + "))"
	}
	return s.goType() + "(" + v + ")"
}

// toInt converts a storage word to the Go type typ.
func (s backend) toInt(x, typ string, valueWide bool) string {
	if s.wide() && !valueWide {
		return typ + "(" + x + ".Uint64())"
	}
	return typ + "(" + x + ")"
}

func (s backend) optionPack() string {
	s.g.runtime()
	if s.wide() {
		return "bitpack.PackOption128"
	}
	return "bitpack.PackOption"
}
