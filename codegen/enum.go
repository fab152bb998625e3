package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/bitpack/schema"
)

func (g *Generator) enum(w *bytes.Buffer, e *schema.EnumSchema) error {
	name := exported(e.Name)
	for _, id := range []string{name, name + "Bits", name + "FromBits"} {
		if err := g.declare(id, e.Name); err != nil {
			return err
		}
	}
	consts := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		consts[i] = name + exported(v.Name)
		if err := g.declare(consts[i], e.Name); err != nil {
			return err
		}
	}

	base := g.intType(e.Width)
	wide := base == "bitpack.Uint128"

	comment(w, e.Doc, fmt.Sprintf("%s is a %d-bit enumeration.", name, e.Width))
	fmt.Fprintf(w, "type %s %s\n\n", name, base)

	// Uint128 is a struct, so wide variants are variables.
	if wide {
		w.WriteString("var (\n")
	} else {
		w.WriteString("const (\n")
	}
	for i, v := range e.Variants {
		if v.Doc != "" {
			comment(w, v.Doc, "")
		}
		if wide {
			fmt.Fprintf(w, "\t%s = %s{Hi: %#x, Lo: %#x}\n", consts[i], name, v.Value.Hi, v.Value.Lo)
		} else {
			fmt.Fprintf(w, "\t%s %s = %d\n", consts[i], name, v.Value.Lo)
		}
	}
	w.WriteString(")\n\n")

	fmt.Fprintf(w, "// %sBits is the width of %s in bits.\n", name, name)
	fmt.Fprintf(w, "const %sBits = %d\n\n", name, e.Width)

	fmt.Fprintf(w, "func (e %s) String() string {\n", name)
	if len(e.Variants) > 0 {
		w.WriteString("\tswitch e {\n")
		for i, v := range e.Variants {
			fmt.Fprintf(w, "\tcase %s:\n\t\treturn %q\n", consts[i], v.Name)
		}
		w.WriteString("\t}\n")
	}
	if wide {
		fmt.Fprintf(w, "\treturn %q + bitpack.Uint128(e).String() + \")\"\n}\n\n", name+"(")
	} else {
		g.imports["strconv"] = true
		fmt.Fprintf(w, "\treturn %q + strconv.FormatUint(uint64(e), 10) + \")\"\n}\n\n", name+"(")
	}

	fmt.Fprintf(w, "// Valid reports whether e is a declared variant of %s.\n", name)
	fmt.Fprintf(w, "func (e %s) Valid() bool {\n", name)
	if len(e.Variants) > 0 {
		fmt.Fprintf(w, "\tswitch e {\n\tcase %s:\n\t\treturn true\n\t}\n", strings.Join(consts, ", "))
	}
	w.WriteString("\treturn false\n}\n\n")

	fmt.Fprintf(w, "// %sFromBits converts a bit pattern to a %s. The pattern is kept as is;\n", name, name)
	w.WriteString("// the second result reports whether it names a variant.\n")
	fmt.Fprintf(w, "func %sFromBits(bits %s) (%s, bool) {\n", name, base, name)
	fmt.Fprintf(w, "\te := %s(bits)\n\treturn e, e.Valid()\n}\n\n", name)

	if e.Exhaustive {
		if err := g.declare(name+"MustFromBits", e.Name); err != nil {
			return err
		}
		fmt.Fprintf(w, "// %sMustFromBits converts a bit pattern to a %s. Every pattern of\n", name, name)
		fmt.Fprintf(w, "// %sBits bits names a variant; higher bits are ignored.\n", name)
		fmt.Fprintf(w, "func %sMustFromBits(bits %s) %s {\n", name, base, name)
		if wide {
			fmt.Fprintf(w, "\treturn %s(bits.And(bitpack.Mask128(%sBits)))\n}\n\n", name, name)
		} else {
			fmt.Fprintf(w, "\treturn %s(bits & (1<<%sBits - 1))\n}\n\n", name, name)
		}
	}

	Logger().Debug("generated enum",
		zap.String("enum", e.Name),
		zap.Uint("width", e.Width),
		zap.Bool("exhaustive", e.Exhaustive),
		zap.Int("variants", len(e.Variants)))
	return nil
}
