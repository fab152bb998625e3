package layout

import (
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/schema"
)

// FieldInfo is the resolved position of one field.
type FieldInfo struct {
	Field    *schema.FieldSchema
	Name     string
	Index    int
	Offset   uint // first bit of the first instance
	Width    uint // bits of one instance
	Extent   uint // bits from Offset to the end of the last instance
	Count    int  // repeated instances, 0 for a single field
	Stride   uint // distance between instances, equals Width unless overridden
	Explicit bool
	Access   schema.Access
}

// Label returns the field name, or its index for unnamed fields.
func (f FieldInfo) Label() string {
	return f.Field.Label()
}

// End returns the bit just past the field.
func (f FieldInfo) End() uint {
	return f.Offset + f.Extent
}

// ElemOffset returns the offset of instance i of a repeated field.
// It panics if i is out of range, like indexing a Go array.
func (f FieldInfo) ElemOffset(i int) uint {
	n := f.Count
	if n == 0 {
		n = 1
	}
	if i < 0 || i >= n {
		panic("layout: index out of range")
	}
	return f.Offset + uint(i)*f.Stride
}

// Info is the layout of a record.
type Info struct {
	Record  *schema.RecordSchema
	Fields  []FieldInfo
	Bits    uint
	Storage schema.Storage
}

// Field returns the layout of the named field. Unnamed fields are found by
// their index.
func (info *Info) Field(name string) (FieldInfo, bool) {
	for _, f := range info.Fields {
		if f.Label() == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// UnusedBits returns the number of storage bits above the last field.
func (info *Info) UnusedBits() uint {
	if info.Bits >= info.Storage.Bits() {
		return 0
	}
	return info.Storage.Bits() - info.Bits
}

// Calculator resolves widths and offsets. Results are cached per record, so
// a Calculator must not be shared across goroutines.
type Calculator struct {
	cache    map[*schema.RecordSchema]*Info
	visiting map[*schema.RecordSchema]bool
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache:    make(map[*schema.RecordSchema]*Info),
		visiting: make(map[*schema.RecordSchema]bool),
	}
}

// Bits returns the width of t in bits.
func (c *Calculator) Bits(t *schema.Type) (uint, error) {
	if t == nil {
		return 0, errors.InvalidType(errors.PhaseValidate, nil, "<nil>", "missing type")
	}
	switch t.Kind {
	case schema.KindBool:
		return 1, nil
	case schema.KindUint, schema.KindArbUint:
		if t.Width == 0 || t.Width > schema.MaxWidth {
			return 0, errors.InvalidType(errors.PhaseValidate, nil, t.String(), "integer width must be in 1..=128")
		}
		return t.Width, nil
	case schema.KindEnum:
		return t.Enum.Width, nil
	case schema.KindRecord:
		info, err := c.Record(t.Record)
		if err != nil {
			return 0, err
		}
		return info.Bits, nil
	case schema.KindTuple:
		return c.calculateTuple(t)
	case schema.KindOption:
		inner, err := c.Bits(t.Elem)
		if err != nil {
			return 0, err
		}
		return 1 + inner, nil
	case schema.KindRef:
		return 0, errors.InvalidType(errors.PhaseValidate, nil, t.Name, "unresolved type reference")
	}
	return 0, errors.InvalidType(errors.PhaseValidate, nil, t.String(), "type has no bit width")
}

func (c *Calculator) calculateTuple(t *schema.Type) (uint, error) {
	var total uint
	for _, e := range t.Elems {
		w, err := c.Bits(e)
		if err != nil {
			return 0, err
		}
		total += w
	}
	return total, nil
}

// Record computes the offset of every field of r and its total bit count.
// It does not compare the total against the storage; see Validator.
func (c *Calculator) Record(r *schema.RecordSchema) (*Info, error) {
	if cached, ok := c.cache[r]; ok {
		return cached, nil
	}
	if c.visiting[r] {
		return nil, errors.InvalidType(errors.PhaseValidate, []string{r.Name}, r.Name, "record nests itself")
	}
	c.visiting[r] = true
	defer delete(c.visiting, r)

	info, err := c.calculateRecord(r)
	if err != nil {
		return nil, err
	}
	c.cache[r] = info
	return info, nil
}

func (c *Calculator) calculateRecord(r *schema.RecordSchema) (*Info, error) {
	info := &Info{
		Record:  r,
		Storage: r.Storage,
		Fields:  make([]FieldInfo, 0, len(r.Fields)),
	}

	var offset uint
	for _, f := range r.Fields {
		width, err := c.Bits(f.Type)
		if err != nil {
			return nil, atField(err, r, f)
		}

		fi := FieldInfo{
			Field:  f,
			Name:   f.Name,
			Index:  f.Index,
			Offset: offset,
			Width:  width,
			Extent: width,
			Count:  f.Count,
			Stride: width,
			Access: f.Access,
		}
		if f.Stride != 0 {
			fi.Stride = f.Stride
		}
		if f.Count > 1 {
			fi.Extent = uint(f.Count-1)*fi.Stride + width
		}
		if f.Range != nil {
			fi.Offset = f.Range.Start
			fi.Explicit = true
		}

		// the default position of the next field ignores overrides
		offset += fi.Extent

		if fi.End() > info.Bits {
			info.Bits = fi.End()
		}
		info.Fields = append(info.Fields, fi)
	}
	return info, nil
}

func atField(err error, r *schema.RecordSchema, f *schema.FieldSchema) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		e.Path = []string{r.Name, f.Label()}
	}
	return err
}
