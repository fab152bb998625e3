package schema

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/errors"
)

// Schema is a resolved set of enums and records. Every type reference in a
// field has been replaced by the enum or record it names.
type Schema struct {
	Package string
	Enums   []*EnumSchema
	Records []*RecordSchema
}

// Enum returns the enum with the given name.
func (s *Schema) Enum(name string) (*EnumSchema, bool) {
	for _, e := range s.Enums {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Record returns the record with the given name.
func (s *Schema) Record(name string) (*RecordSchema, bool) {
	for _, r := range s.Records {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Resolve turns a decoded document into a schema. All problems found are
// reported together as an *errors.List.
func Resolve(doc *Document) (*Schema, error) {
	s := &Schema{Package: doc.Package}
	var errs errors.List
	seen := make(map[string]bool)

	declare := func(name string) bool {
		if !isIdentifier(name) {
			errs.Add(errors.InvalidType(errors.PhaseResolve, []string{name}, name, "not a valid identifier"))
			return false
		}
		if isBuiltinName(name) {
			errs.Add(errors.InvalidType(errors.PhaseResolve, []string{name}, name, "shadows a builtin type"))
			return false
		}
		if seen[name] {
			errs.Add(errors.Duplicate(errors.PhaseResolve, []string{name}, "type", name))
			return false
		}
		seen[name] = true
		return true
	}

	for _, d := range doc.Enums {
		if !declare(d.Name) {
			continue
		}
		e, err := buildEnum(d)
		errs.Add(err)
		s.Enums = append(s.Enums, e)
	}

	for _, d := range doc.Bitfields {
		if !declare(d.Name) {
			continue
		}
		r, err := buildRecord(d)
		errs.Add(err)
		if r != nil {
			s.Records = append(s.Records, r)
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	if err := s.Link(); err != nil {
		return nil, err
	}
	Logger().Debug("schema resolved",
		zap.Int("enums", len(s.Enums)),
		zap.Int("records", len(s.Records)))
	return s, nil
}

func buildEnum(d EnumDecl) (*EnumSchema, error) {
	e := &EnumSchema{
		Name:       d.Name,
		Doc:        d.Doc,
		Width:      d.Width,
		Exhaustive: d.Exhaustive,
	}
	var errs errors.List
	names := make(map[string]bool)
	next := bitpack.Uint128{}
	for _, v := range d.Variants {
		if !isIdentifier(v.Name) {
			errs.Add(errors.InvalidType(errors.PhaseResolve, []string{d.Name, v.Name}, v.Name, "not a valid variant name"))
			continue
		}
		if names[v.Name] {
			errs.Add(errors.Duplicate(errors.PhaseResolve, []string{d.Name}, "variant", v.Name))
			continue
		}
		names[v.Name] = true
		value := next
		if v.Value != nil {
			value = bitpack.Uint128From(*v.Value)
		}
		e.Variants = append(e.Variants, Variant{Name: v.Name, Doc: v.Doc, Value: value})
		next = increment(value)
	}
	return e, errs.Err()
}

func increment(u bitpack.Uint128) bitpack.Uint128 {
	lo := u.Lo + 1
	hi := u.Hi
	if lo == 0 {
		hi++
	}
	return bitpack.Uint128{Hi: hi, Lo: lo}
}

func buildRecord(d BitfieldDecl) (*RecordSchema, error) {
	storage, ok := ParseStorage(d.StorageType)
	if !ok {
		detail := "storage_type must be one of u8, u16, u32, u64, u128"
		if d.StorageType == "" {
			detail = "storage_type is required"
		}
		return nil, errors.InvalidStorageWidth([]string{d.Name}, d.StorageType, detail)
	}

	r := &RecordSchema{Name: d.Name, Doc: d.Doc, Storage: storage}
	var errs errors.List
	names := make(map[string]bool)
	for i, fd := range d.Fields {
		f := &FieldSchema{Name: fd.Name, Doc: fd.Doc, Attr: fd.Attr, Index: i}
		path := []string{d.Name, f.Label()}

		if fd.Name != "" {
			if !isIdentifier(fd.Name) {
				errs.Add(errors.InvalidType(errors.PhaseResolve, path, fd.Type, "not a valid field name"))
				continue
			}
			if names[fd.Name] {
				errs.Add(errors.Duplicate(errors.PhaseResolve, []string{d.Name}, "field", fd.Name))
				continue
			}
			names[fd.Name] = true
		}

		t, count, err := ParseFieldType(fd.Type)
		if err != nil {
			errs.Add(at(err, path))
			continue
		}
		f.Type = t
		f.Count = count

		a, err := ParseAnnotation(fd.Attr)
		if err != nil {
			errs.Add(at(err, path))
			continue
		}
		f.Access = a.Access
		f.Range = a.Range
		f.Stride = a.Stride
		if f.Stride != 0 && f.Count == 0 {
			errs.Add(errors.MalformedAnnotation(path, fd.Attr, "stride requires a repeated field type [T; N]"))
			continue
		}
		r.Fields = append(r.Fields, f)
	}
	return r, errs.Err()
}

// Link resolves every type reference in the schema's records, then rejects
// cyclic nesting and nested records stored wider than their parent.
func (s *Schema) Link() error {
	var errs errors.List
	for _, r := range s.Records {
		for _, f := range r.Fields {
			t, err := s.link(f.Type, []string{r.Name, f.Label()})
			if err != nil {
				errs.Add(err)
				continue
			}
			f.Type = t
		}
	}
	if err := errs.Err(); err != nil {
		return err
	}

	for _, r := range s.Records {
		if err := checkCycle(r, nil); err != nil {
			errs.Add(err)
		}
		for _, f := range r.Fields {
			f.Type.Walk(func(t *Type) {
				if t.Kind == KindRecord && t.Record.Storage > r.Storage {
					errs.Add(errors.New(errors.PhaseResolve, errors.KindInvalidType).
						Path(r.Name, f.Label()).
						Type(t.Name).
						Storage(r.Storage.String()).
						Detail("nested record is stored in %s, wider than its parent", t.Record.Storage).
						Build())
				}
			})
		}
	}
	return errs.Err()
}

func (s *Schema) link(t *Type, path []string) (*Type, error) {
	switch t.Kind {
	case KindRef:
		if e, ok := s.Enum(t.Name); ok {
			return EnumType(e), nil
		}
		if r, ok := s.Record(t.Name); ok {
			return RecordType(r), nil
		}
		return nil, errors.InvalidType(errors.PhaseResolve, path, t.Name, "unknown type")
	case KindTuple:
		elems := make([]*Type, len(t.Elems))
		for i, e := range t.Elems {
			linked, err := s.link(e, path)
			if err != nil {
				return nil, err
			}
			elems[i] = linked
		}
		return Tuple(elems...), nil
	case KindOption:
		elem, err := s.link(t.Elem, path)
		if err != nil {
			return nil, err
		}
		return Option(elem), nil
	}
	return t, nil
}

func checkCycle(r *RecordSchema, stack []*RecordSchema) error {
	for _, s := range stack {
		if s == r {
			names := make([]string, 0, len(stack)+1)
			for _, n := range stack {
				names = append(names, n.Name)
			}
			names = append(names, r.Name)
			return errors.InvalidType(errors.PhaseResolve, []string{stack[0].Name}, r.Name,
				"record nests itself: "+strings.Join(names, " -> "))
		}
	}
	stack = append(stack, r)
	for _, f := range r.Fields {
		var err error
		f.Type.Walk(func(t *Type) {
			if err == nil && t.Kind == KindRecord {
				err = checkCycle(t.Record, stack)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func at(err error, path []string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = path
	}
	return err
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
