package codegen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/schema"
)

// recordGen emits one record type.
type recordGen struct {
	*Generator
	rec   *schema.RecordSchema
	info  *layout.Info
	name  string
	store backend
}

func (g *Generator) record(w *bytes.Buffer, r *schema.RecordSchema) error {
	info, err := g.calc.Record(r)
	if err != nil {
		return err
	}
	rg := &recordGen{
		Generator: g,
		rec:       r,
		info:      info,
		name:      exported(r.Name),
		store:     g.backend(r.Storage.Bits()),
	}
	if err := g.declare(rg.name, r.Name); err != nil {
		return err
	}
	if err := g.declare(rg.name+"Bits", r.Name); err != nil {
		return err
	}
	seen := make(map[string]string)
	for _, fi := range info.Fields {
		for _, m := range []string{fieldMethod(fi.Name, fi.Index), setterMethod(fi.Name, fi.Index)} {
			if prev, dup := seen[m]; dup && prev != fi.Label() {
				return errors.Duplicate(errors.PhaseGenerate, []string{r.Name, fi.Label()}, "method "+rg.name+"."+m+", also generated for", prev)
			}
			seen[m] = fi.Label()
		}
		if err := g.collectTuples(fi.Field.Type, rg.name+exported(fieldCtx(fi)),
			fmt.Sprintf("%s is the value of %s.%s.", rg.name+exported(fieldCtx(fi)), r.Name, fi.Label()), r.Name); err != nil {
			return err
		}
	}
	rg.emit(w)

	Logger().Debug("generated record",
		zap.String("record", r.Name),
		zap.String("storage", r.Storage.String()),
		zap.Uint("bits", info.Bits),
		zap.Int("fields", len(info.Fields)))
	return nil
}

func fieldCtx(fi layout.FieldInfo) string {
	if fi.Name == "" {
		return "Field" + strconv.Itoa(fi.Index)
	}
	return fi.Name
}

func (rg *recordGen) emit(w *bytes.Buffer) {
	name, raw := rg.name, rg.store.goType()

	comment(w, rg.rec.Doc, fmt.Sprintf("%s is a bitfield stored in %s.", name, rg.rec.Storage))
	fmt.Fprintf(w, "type %s %s\n\n", name, raw)
	fmt.Fprintf(w, "// %sBits is the number of bits %s occupies.\n", name, name)
	fmt.Fprintf(w, "const %sBits = %d\n\n", name, rg.info.Bits)
	fmt.Fprintf(w, "// %s must fit its storage.\n", name)
	fmt.Fprintf(w, "var _ [uint(%d) - %sBits]struct{}\n\n", rg.store.bits, name)

	fmt.Fprintf(w, "// Raw returns the storage word of r.\n")
	fmt.Fprintf(w, "func (r %s) Raw() %s { return %s(r) }\n\n", name, raw, raw)
	fmt.Fprintf(w, "// BitSize returns %sBits.\n", name)
	fmt.Fprintf(w, "func (r %s) BitSize() uint { return %sBits }\n\n", name, name)

	for _, fi := range rg.info.Fields {
		if fi.Access.CanRead() {
			rg.reader(w, fi)
		}
		if fi.Access.CanWrite() {
			rg.writer(w, fi)
		}
	}
	rg.stringer(w)
	rg.emitTuples(w)
}

// fieldPos returns the offset of a field, indexed by i for repeated fields.
func fieldPos(fi layout.FieldInfo) pos {
	p := at(fi.Offset)
	if fi.Field.Repeated() {
		p.v = "uint(i)*" + strconv.FormatUint(uint64(fi.Stride), 10)
	}
	return p
}

func (rg *recordGen) fieldType(fi layout.FieldInfo) string {
	return rg.goType(fi.Field.Type, rg.name+exported(fieldCtx(fi)))
}

func partialEnum(t *schema.Type) bool {
	return t.Kind == schema.KindEnum && !t.Enum.Exhaustive
}

func (rg *recordGen) reader(w *bytes.Buffer, fi layout.FieldInfo) {
	f := fi.Field
	typ := rg.fieldType(fi)
	method := fieldMethod(fi.Name, fi.Index)
	params := ""
	if f.Repeated() {
		params = "i int"
	}

	doc := strings.TrimSpace(f.Doc)
	if doc == "" {
		doc = fmt.Sprintf("%s returns %s.", method, describe(fi))
	}
	comment(w, doc, "")
	if partialEnum(f.Type) {
		w.WriteString("// The second result is false if the bits name no variant.\n")
		fmt.Fprintf(w, "func (r %s) %s(%s) (%s, bool) {\n", rg.name, method, params, typ)
	} else {
		fmt.Fprintf(w, "func (r %s) %s(%s) %s {\n", rg.name, method, params, typ)
	}
	if f.Repeated() {
		rg.runtime()
		fmt.Fprintf(w, "\tbitpack.CheckIndex(i, %d)\n", fi.Count)
	}

	off := fieldPos(fi)
	if partialEnum(f.Type) {
		e := f.Type.Enum
		base := rg.intType(e.Width)
		bits := rg.store.toInt(rg.store.extract("r.Raw()", off, exported(e.Name)+"Bits"), base, base == "bitpack.Uint128")
		fmt.Fprintf(w, "\treturn %sFromBits(%s)\n}\n\n", exported(e.Name), bits)
		return
	}
	fmt.Fprintf(w, "\treturn %s\n}\n\n", rg.read(f.Type, "r.Raw()", off, rg.name+exported(fieldCtx(fi))))
}

func (rg *recordGen) writer(w *bytes.Buffer, fi layout.FieldInfo) {
	f := fi.Field
	method := setterMethod(fi.Name, fi.Index)
	params := "v " + rg.fieldType(fi)
	if f.Repeated() {
		params = "i int, " + params
	}

	fmt.Fprintf(w, "// %s returns a copy of r with %s set to v.\n", method, describe(fi))
	fmt.Fprintf(w, "func (r %s) %s(%s) %s {\n", rg.name, method, params, rg.name)
	if f.Repeated() {
		rg.runtime()
		fmt.Fprintf(w, "\tbitpack.CheckIndex(i, %d)\n", fi.Count)
	}
	w.WriteString("\traw := r.Raw()\n")
	for _, stmt := range rg.write(f.Type, "raw", fieldPos(fi), "v", rg.name+exported(fieldCtx(fi))) {
		fmt.Fprintf(w, "\t%s\n", stmt)
	}
	fmt.Fprintf(w, "\treturn %s(raw)\n}\n\n", rg.name)
}

func describe(fi layout.FieldInfo) string {
	label := fi.Name
	if label == "" {
		label = "field " + strconv.Itoa(fi.Index)
	}
	if fi.Field.Repeated() {
		return fmt.Sprintf("instance i of %s (bits %d+%d*i, %d wide)", label, fi.Offset, fi.Stride, fi.Width)
	}
	if fi.Width == 1 {
		return fmt.Sprintf("%s (bit %d)", label, fi.Offset)
	}
	return fmt.Sprintf("%s (bits %d..%d)", label, fi.Offset, fi.End())
}

// read returns an expression of the Go type of t holding the window of t
// at off in raw.
func (rg *recordGen) read(t *schema.Type, raw string, off pos, ctx string) string {
	s := rg.store
	switch t.Kind {
	case schema.KindBool:
		return s.bit(raw, off)

	case schema.KindUint, schema.KindArbUint:
		typ := rg.intType(t.Width)
		return s.toInt(s.extract(raw, off, strconv.FormatUint(uint64(t.Width), 10)), typ, typ == "bitpack.Uint128")

	case schema.KindEnum:
		name := exported(t.Enum.Name)
		return s.toInt(s.extract(raw, off, name+"Bits"), name, rg.intType(t.Enum.Width) == "bitpack.Uint128")

	case schema.KindRecord:
		name := exported(t.Record.Name)
		child := rg.backend(t.Record.Storage.Bits())
		rg.runtime()
		switch {
		case child.wide():
			return fmt.Sprintf("%s(%s)", name, s.extract(raw, off, name+"Bits"))
		case s.wide():
			return fmt.Sprintf("%s(bitpack.UnpackRecord128[%s](%s, %s, %sBits))", name, child.goType(), raw, off, name)
		}
		return fmt.Sprintf("%s(bitpack.UnpackRecord[%s](%s, %s, %sBits))", name, child.goType(), raw, off, name)

	case schema.KindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = fmt.Sprintf("V%d: %s", i, rg.read(e, raw, off, elemCtx(ctx, i)))
			off = off.add(rg.bits(e))
		}
		return ctx + "{" + strings.Join(parts, ", ") + "}"

	case schema.KindOption:
		rg.runtime()
		return fmt.Sprintf("bitpack.MakeOption(%s, %s)", s.bit(raw, off), rg.read(t.Elem, raw, off.add(1), ctx))
	}
	return "nil"
}

// write returns statements assigning raw with v packed at off.
func (rg *recordGen) write(t *schema.Type, raw string, off pos, v, ctx string) []string {
	s := rg.store
	assign := func(expr string) []string {
		return []string{raw + " = " + expr}
	}
	switch t.Kind {
	case schema.KindBool:
		return assign(s.insert(raw, off, "1", s.fromBool(v)))

	case schema.KindUint, schema.KindArbUint:
		wide := rg.intType(t.Width) == "bitpack.Uint128"
		return assign(s.insert(raw, off, strconv.FormatUint(uint64(t.Width), 10), s.fromInt(v, wide)))

	case schema.KindEnum:
		wide := rg.intType(t.Enum.Width) == "bitpack.Uint128"
		return assign(s.insert(raw, off, exported(t.Enum.Name)+"Bits", s.fromInt(v, wide)))

	case schema.KindRecord:
		name := exported(t.Record.Name)
		child := rg.backend(t.Record.Storage.Bits())
		rg.runtime()
		switch {
		case child.wide():
			return assign(s.insert(raw, off, name+"Bits", "bitpack.Uint128("+v+")"))
		case s.wide():
			return assign(fmt.Sprintf("bitpack.PackRecord128[%s](%s, %s, %s)", child.goType(), raw, off, v))
		}
		return assign(fmt.Sprintf("bitpack.PackRecord[%s, %s](%s, %s, %s)", s.goType(), child.goType(), raw, off, v))

	case schema.KindTuple:
		var out []string
		for i, e := range t.Elems {
			out = append(out, rg.write(e, raw, off, fmt.Sprintf("%s.V%d", v, i), elemCtx(ctx, i))...)
			off = off.add(rg.bits(e))
		}
		return out

	case schema.KindOption:
		elem := rg.goType(t.Elem, ctx)
		inner := rg.write(t.Elem, "raw", off.add(1), "x", ctx)
		body := strings.Join(append(inner, "return raw"), "\n")
		return assign(fmt.Sprintf("%s(%s, %s, %s, func(raw %s, x %s) %s {\n%s\n})",
			s.optionPack(), raw, off, v, s.goType(), elem, s.goType(), body))
	}
	return nil
}

func (rg *recordGen) bits(t *schema.Type) uint {
	// widths were computed during validation
	w, _ := rg.calc.Bits(t)
	return w
}

// stringer emits String, listing every readable field.
func (rg *recordGen) stringer(w *bytes.Buffer) {
	var pre, labels, args []string
	for _, fi := range rg.info.Fields {
		if !fi.Access.CanRead() {
			continue
		}
		method := fieldMethod(fi.Name, fi.Index)
		partial := partialEnum(fi.Field.Type)
		labels = append(labels, fi.Label()+": %v")

		if !fi.Field.Repeated() {
			if partial {
				local := "f" + strconv.Itoa(fi.Index)
				pre = append(pre, fmt.Sprintf("%s, _ := r.%s()", local, method))
				args = append(args, local)
			} else {
				args = append(args, "r."+method+"()")
			}
			continue
		}

		elems := make([]string, fi.Count)
		for i := range elems {
			if partial {
				local := fmt.Sprintf("f%d_%d", fi.Index, i)
				pre = append(pre, fmt.Sprintf("%s, _ := r.%s(%d)", local, method, i))
				elems[i] = local
			} else {
				elems[i] = fmt.Sprintf("r.%s(%d)", method, i)
			}
		}
		args = append(args, fmt.Sprintf("[%d]%s{%s}", fi.Count, rg.fieldType(fi), strings.Join(elems, ", ")))
	}

	fmt.Fprintf(w, "func (r %s) String() string {\n", rg.name)
	for _, p := range pre {
		fmt.Fprintf(w, "\t%s\n", p)
	}
	format := rg.rec.Name + "{" + strings.Join(labels, ", ") + "}"
	if len(args) == 0 {
		fmt.Fprintf(w, "\treturn %q\n}\n\n", format)
		return
	}
	rg.imports["fmt"] = true
	fmt.Fprintf(w, "\treturn fmt.Sprintf(%q, %s)\n}\n\n", format, strings.Join(args, ", "))
}
