package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"path"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/schema"
)

// DefaultRuntimeImport is the import path of the runtime package generated
// code depends on.
const DefaultRuntimeImport = "github.com/wippyai/bitpack"

// Options configures a Generator.
type Options struct {
	// Package is the Go package name. Defaults to the schema's package,
	// then to "bitfields".
	Package string
	// RuntimeImport overrides DefaultRuntimeImport.
	RuntimeImport string
	// Source names the schema file in the generated header.
	Source string
	// Layout configures the validation run before generating.
	Layout layout.Options
}

// Generator emits Go source for a resolved schema.
type Generator struct {
	opts    Options
	calc    *layout.Calculator
	buf     bytes.Buffer
	imports map[string]bool
	names   map[string]string // top-level identifier -> declaring schema item
	tuples  []tupleDecl
}

type tupleDecl struct {
	typ  *schema.Type
	name string
	doc  string
}

func New(opts Options) *Generator {
	if opts.RuntimeImport == "" {
		opts.RuntimeImport = DefaultRuntimeImport
	}
	return &Generator{opts: opts}
}

// Generate validates s and returns formatted Go source declaring every enum
// and record in it.
func (g *Generator) Generate(s *schema.Schema) ([]byte, error) {
	g.buf.Reset()
	g.imports = make(map[string]bool)
	g.names = make(map[string]string)
	g.tuples = nil

	v := layout.NewValidator(g.opts.Layout)
	if err := v.Schema(s); err != nil {
		return nil, err
	}
	g.calc = v.Calculator()

	pkg := g.opts.Package
	if pkg == "" {
		pkg = s.Package
	}
	if pkg == "" {
		pkg = "bitfields"
	}

	var body bytes.Buffer
	var errs errors.List
	for _, e := range s.Enums {
		errs.Add(g.enum(&body, e))
	}
	for _, r := range s.Records {
		errs.Add(g.record(&body, r))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	g.header(pkg)
	g.buf.Write(body.Bytes())

	src, err := format.Source(g.buf.Bytes())
	if err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, errors.KindInvalidData, err, "format generated source")
	}
	Logger().Debug("generated package",
		zap.String("package", pkg),
		zap.Int("enums", len(s.Enums)),
		zap.Int("records", len(s.Records)),
		zap.Int("bytes", len(src)))
	return src, nil
}

func (g *Generator) header(pkg string) {
	source := ""
	if g.opts.Source != "" {
		source = " from " + path.Base(g.opts.Source)
	}
	fmt.Fprintf(&g.buf, "// Code generated by bitgen%s. DO NOT EDIT.\n\n", source)
	fmt.Fprintf(&g.buf, "package %s\n\n", pkg)

	if len(g.imports) == 0 {
		return
	}
	// standard library first, then everything else, as goimports groups them
	var std, other []string
	for p := range g.imports {
		if stdlib(p) {
			std = append(std, p)
		} else {
			other = append(other, p)
		}
	}
	sort.Strings(std)
	sort.Strings(other)

	g.buf.WriteString("import (\n")
	for _, p := range std {
		fmt.Fprintf(&g.buf, "\t%s\n", strconv.Quote(p))
	}
	if len(std) > 0 && len(other) > 0 {
		g.buf.WriteString("\n")
	}
	for _, p := range other {
		if p == g.opts.RuntimeImport && path.Base(p) != "bitpack" {
			fmt.Fprintf(&g.buf, "\tbitpack %s\n", strconv.Quote(p))
			continue
		}
		fmt.Fprintf(&g.buf, "\t%s\n", strconv.Quote(p))
	}
	g.buf.WriteString(")\n\n")
}

// stdlib reports whether an import path belongs to the standard library,
// whose first path element never contains a dot.
func stdlib(p string) bool {
	first, _, _ := strings.Cut(p, "/")
	return !strings.Contains(first, ".")
}

func (g *Generator) runtime() {
	g.imports[g.opts.RuntimeImport] = true
}

// declare reserves a top-level identifier.
func (g *Generator) declare(name, owner string) error {
	if prev, ok := g.names[name]; ok {
		return errors.New(errors.PhaseGenerate, errors.KindDuplicate).
			Path(owner).
			Value(name).
			Detail("generated identifier %s is also declared by %s", name, prev).
			Build()
	}
	g.names[name] = owner
	return nil
}

// goType returns the Go type of t. Tuples get a named struct whose name is
// derived from ctx.
func (g *Generator) goType(t *schema.Type, ctx string) string {
	switch t.Kind {
	case schema.KindBool:
		return "bool"
	case schema.KindUint, schema.KindArbUint:
		return g.intType(t.Width)
	case schema.KindEnum:
		return exported(t.Enum.Name)
	case schema.KindRecord:
		return exported(t.Record.Name)
	case schema.KindTuple:
		return ctx
	case schema.KindOption:
		g.runtime()
		return "bitpack.Option[" + g.goType(t.Elem, ctx) + "]"
	}
	return "any"
}

// intType returns the smallest Go unsigned type holding width bits.
func (g *Generator) intType(width uint) string {
	bucket, _ := schema.NativeBucket(width)
	if bucket == 128 {
		g.runtime()
		return "bitpack.Uint128"
	}
	return "uint" + strconv.FormatUint(uint64(bucket), 10)
}

// collectTuples registers a struct declaration for every tuple inside t.
func (g *Generator) collectTuples(t *schema.Type, ctx, doc, owner string) error {
	switch t.Kind {
	case schema.KindTuple:
		if err := g.declare(ctx, owner); err != nil {
			return err
		}
		g.tuples = append(g.tuples, tupleDecl{typ: t, name: ctx, doc: doc})
		for i, e := range t.Elems {
			if err := g.collectTuples(e, elemCtx(ctx, i), fmt.Sprintf("%s is element %d of %s.", elemCtx(ctx, i), i, ctx), owner); err != nil {
				return err
			}
		}
	case schema.KindOption:
		return g.collectTuples(t.Elem, ctx, doc, owner)
	}
	return nil
}

func elemCtx(ctx string, i int) string {
	return ctx + "V" + strconv.Itoa(i)
}

func (g *Generator) emitTuples(w *bytes.Buffer) {
	for _, d := range g.tuples {
		fmt.Fprintf(w, "// %s\n", d.doc)
		fmt.Fprintf(w, "type %s struct {\n", d.name)
		for i, e := range d.typ.Elems {
			fmt.Fprintf(w, "\tV%d %s\n", i, g.goType(e, elemCtx(d.name, i)))
		}
		w.WriteString("}\n\n")
	}
	g.tuples = nil
}

// comment writes doc as a Go comment, falling back to def.
func comment(w *bytes.Buffer, doc, def string) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		doc = def
	}
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			w.WriteString("//\n")
			continue
		}
		fmt.Fprintf(w, "// %s\n", line)
	}
}
