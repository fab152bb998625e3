package witimport

import (
	"io"
	"math/bits"
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/schema"
)

// Options configures an Importer.
type Options struct {
	// Package is copied into the imported document.
	Package string
	// SkipUnsupported drops declarations that cannot be bit-packed instead
	// of failing the import.
	SkipUnsupported bool
}

// Importer converts WIT type definitions to schema declarations.
type Importer struct {
	opts  Options
	doc   *schema.Document
	names map[*wit.TypeDef]string
	used  map[string]*wit.TypeDef
	bits  map[*wit.TypeDef]uint
	state map[*wit.TypeDef]int
}

const (
	pending = iota + 1
	done
	failed
)

func NewImporter(opts Options) *Importer {
	return &Importer{opts: opts}
}

// LoadFile decodes a WIT JSON file and imports every record, enum and flags
// definition in it.
func LoadFile(path string, opts Options) (*schema.Document, error) {
	res, err := wit.LoadJSON(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseImport, errors.KindInvalidData, err, "decode "+path)
	}
	return NewImporter(opts).ImportResolve(res)
}

// Decode is LoadFile for an already open reader.
func Decode(r io.Reader, opts Options) (*schema.Document, error) {
	res, err := wit.DecodeJSON(r)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseImport, errors.KindInvalidData, err, "decode WIT JSON")
	}
	return NewImporter(opts).ImportResolve(res)
}

// ImportResolve imports every named record, enum and flags definition of
// res.
func (im *Importer) ImportResolve(res *wit.Resolve) (*schema.Document, error) {
	var defs []*wit.TypeDef
	for _, t := range res.TypeDefs {
		if t.Name != nil && declared(t.Kind) {
			defs = append(defs, t)
		}
	}
	return im.Import(defs...)
}

// Import converts defs, and every definition they reference, to a schema
// document. Definitions must be named records, enums or flags.
func (im *Importer) Import(defs ...*wit.TypeDef) (*schema.Document, error) {
	im.doc = &schema.Document{Package: im.opts.Package}
	im.names = make(map[*wit.TypeDef]string)
	im.used = make(map[string]*wit.TypeDef)
	im.bits = make(map[*wit.TypeDef]uint)
	im.state = make(map[*wit.TypeDef]int)

	var errs errors.List
	for _, t := range defs {
		if t.Name == nil || !declared(t.Kind) {
			errs.Add(errors.InvalidType(errors.PhaseImport, nil, label(t), "only named records, enums and flags can be imported"))
			continue
		}
		if _, err := im.declare(t); err != nil {
			if im.opts.SkipUnsupported {
				Logger().Warn("skipping WIT type", zap.String("type", t.TypeName()), zap.Error(err))
				continue
			}
			errs.Add(err)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	Logger().Debug("imported WIT types",
		zap.Int("enums", len(im.doc.Enums)),
		zap.Int("bitfields", len(im.doc.Bitfields)))
	return im.doc, nil
}

func declared(k wit.TypeDefKind) bool {
	switch k.(type) {
	case *wit.Record, *wit.Enum, *wit.Flags:
		return true
	}
	return false
}

// declare emits the declaration of a named record, enum or flags definition
// after everything it references, and returns its schema name.
func (im *Importer) declare(t *wit.TypeDef) (string, error) {
	switch im.state[t] {
	case done:
		return im.names[t], nil
	case pending:
		return "", errors.New(errors.PhaseImport, errors.KindInvalidType).
			Type(t.TypeName()).
			Detail("recursive type").
			Build()
	case failed:
		return "", errors.InvalidType(errors.PhaseImport, nil, t.TypeName(), "references a type that cannot be imported")
	}
	im.state[t] = pending

	name, err := im.name(t)
	if err == nil {
		switch k := t.Kind.(type) {
		case *wit.Record:
			err = im.record(t, name, k)
		case *wit.Enum:
			im.enum(t, name, k)
		case *wit.Flags:
			err = im.flags(t, name, k)
		}
	}
	if err != nil {
		im.state[t] = failed
		return "", err
	}
	im.state[t] = done
	return name, nil
}

// name picks a unique schema identifier, qualifying clashes with the name
// of the owning interface.
func (im *Importer) name(t *wit.TypeDef) (string, error) {
	name := identifier(*t.Name)
	if prev, ok := im.used[name]; ok && prev != t {
		if iface, ok := t.Owner.(*wit.Interface); ok && iface.Name != nil {
			name = identifier(*iface.Name) + "_" + name
		}
	}
	if prev, ok := im.used[name]; ok && prev != t {
		return "", errors.Duplicate(errors.PhaseImport, []string{*t.Name}, "type", name)
	}
	im.used[name] = t
	im.names[t] = name
	return name, nil
}

func identifier(witName string) string {
	return strings.ReplaceAll(witName, "-", "_")
}

func (im *Importer) record(t *wit.TypeDef, name string, r *wit.Record) error {
	decl := schema.BitfieldDecl{Name: name, Doc: t.Docs.Contents}
	var total uint
	for _, f := range r.Fields {
		expr, w, err := im.typeExpr(f.Type)
		if err != nil {
			return withPath(err, name, f.Name)
		}
		decl.Fields = append(decl.Fields, schema.FieldDecl{
			Name: identifier(f.Name),
			Type: expr,
			Doc:  f.Docs.Contents,
		})
		total += w
	}
	storage, err := storageFor(name, total)
	if err != nil {
		return err
	}
	decl.StorageType = storage
	im.bits[t] = total
	im.doc.Bitfields = append(im.doc.Bitfields, decl)
	return nil
}

func (im *Importer) enum(t *wit.TypeDef, name string, e *wit.Enum) {
	width, exhaustive := EnumWidth(len(e.Cases))
	decl := schema.EnumDecl{
		Name:       name,
		Doc:        t.Docs.Contents,
		Width:      width,
		Exhaustive: exhaustive,
		Variants:   make([]schema.VariantDecl, len(e.Cases)),
	}
	for i, c := range e.Cases {
		decl.Variants[i] = schema.VariantDecl{Name: identifier(c.Name), Doc: c.Docs.Contents}
	}
	im.bits[t] = width
	im.doc.Enums = append(im.doc.Enums, decl)
}

func (im *Importer) flags(t *wit.TypeDef, name string, f *wit.Flags) error {
	decl := schema.BitfieldDecl{Name: name, Doc: t.Docs.Contents}
	for _, flag := range f.Flags {
		decl.Fields = append(decl.Fields, schema.FieldDecl{
			Name: identifier(flag.Name),
			Type: "bool",
			Doc:  flag.Docs.Contents,
		})
	}
	storage, err := storageFor(name, uint(len(f.Flags)))
	if err != nil {
		return err
	}
	decl.StorageType = storage
	im.bits[t] = uint(len(f.Flags))
	im.doc.Bitfields = append(im.doc.Bitfields, decl)
	return nil
}

// EnumWidth returns the bit width of an enum with n cases and whether every
// pattern of that width names a case.
func EnumWidth(n int) (width uint, exhaustive bool) {
	if n > 1 {
		width = uint(bits.Len(uint(n - 1)))
	}
	if width == 0 {
		width = 1
	}
	return width, n == 1<<width
}

func storageFor(name string, total uint) (string, error) {
	if total == 0 {
		return "u8", nil
	}
	bucket, ok := schema.NativeBucket(total)
	if !ok {
		return "", errors.New(errors.PhaseImport, errors.KindOverflow).
			Path(name).
			Value(total).
			Detail("record needs %d bits, more than any storage holds", total).
			Build()
	}
	return "u" + strconv.FormatUint(uint64(bucket), 10), nil
}

// typeExpr returns the schema type expression of t and its width in bits.
func (im *Importer) typeExpr(t wit.Type) (string, uint, error) {
	switch t := t.(type) {
	case wit.Bool:
		return "bool", 1, nil
	case wit.U8:
		return "u8", 8, nil
	case wit.U16:
		return "u16", 16, nil
	case wit.U32:
		return "u32", 32, nil
	case wit.U64:
		return "u64", 64, nil
	case *wit.TypeDef:
		return im.typeDefExpr(t)
	}
	// primitives have no TypeName; WITKind is their canonical spelling
	return "", 0, unsupported(t.WITKind())
}

func (im *Importer) typeDefExpr(t *wit.TypeDef) (string, uint, error) {
	switch k := t.Kind.(type) {
	case *wit.Record, *wit.Enum, *wit.Flags:
		if t.Name == nil {
			return "", 0, unsupported(label(t))
		}
		name, err := im.declare(t)
		if err != nil {
			return "", 0, err
		}
		return name, im.bits[t], nil

	case *wit.Tuple:
		parts := make([]string, len(k.Types))
		var total uint
		for i, e := range k.Types {
			expr, w, err := im.typeExpr(e)
			if err != nil {
				return "", 0, err
			}
			parts[i] = expr
			total += w
		}
		return "(" + strings.Join(parts, ", ") + ")", total, nil

	case *wit.Option:
		expr, w, err := im.typeExpr(k.Type)
		if err != nil {
			return "", 0, err
		}
		return "Option<" + expr + ">", w + 1, nil

	case wit.Type:
		// alias
		return im.typeExpr(k)
	}
	return "", 0, unsupported(t.Kind.WITKind())
}

// label names t in errors.
func label(t *wit.TypeDef) string {
	if t.Name != nil {
		return *t.Name
	}
	return "anonymous " + t.Kind.WITKind()
}

func unsupported(typ string) error {
	return errors.InvalidType(errors.PhaseImport, nil, typ, "no bit-packed representation")
}

func withPath(err error, path ...string) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		e.Path = path
	}
	return err
}
