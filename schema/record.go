package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Access is the access mode of a field.
type Access uint8

const (
	AccessReadWrite Access = iota
	AccessRead
	AccessWrite
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "r"
	case AccessWrite:
		return "w"
	default:
		return "rw"
	}
}

// CanRead reports whether a reader is generated for the field.
func (a Access) CanRead() bool { return a != AccessWrite }

// CanWrite reports whether a mutator is generated for the field.
func (a Access) CanWrite() bool { return a != AccessRead }

// Range is a half-open bit range [Start, End).
type Range struct {
	Start uint
	End   uint
}

// Size returns the number of bits in the range.
func (r Range) Size() uint {
	return r.End - r.Start
}

func (r Range) String() string {
	if r.Size() == 1 {
		return fmt.Sprintf("bit %d", r.Start)
	}
	return fmt.Sprintf("bits %d..%d", r.Start, r.End)
}

// Storage is the bit width of the integer backing a record.
type Storage uint

// ParseStorage parses a storage type name such as "u16".
func ParseStorage(s string) (Storage, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "u") {
		return 0, false
	}
	n, err := strconv.ParseUint(s[1:], 10, 8)
	if err != nil || !IsNativeWidth(uint(n)) {
		return 0, false
	}
	return Storage(n), true
}

// Bits returns the storage width.
func (s Storage) Bits() uint { return uint(s) }

func (s Storage) String() string {
	return "u" + strconv.FormatUint(uint64(s), 10)
}

// FieldSchema is one field of a record.
type FieldSchema struct {
	Type   *Type
	Range  *Range // explicit position, nil for default placement
	Name   string // empty for unnamed fields
	Doc    string
	Attr   string // annotation source text
	Index  int
	Count  int  // repeated instances, 0 for a single field
	Stride uint // bit distance between repeated instances, 0 if unset
	Access Access
}

// Label returns the field name, or its index for unnamed fields.
func (f *FieldSchema) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return strconv.Itoa(f.Index)
}

// Repeated reports whether the field declares several instances.
func (f *FieldSchema) Repeated() bool {
	return f.Count > 0
}

// RecordSchema is a bitfield: ordered fields packed into one storage integer.
type RecordSchema struct {
	Name    string
	Doc     string
	Fields  []*FieldSchema
	Storage Storage
}

// Field returns the field with the given name.
func (r *RecordSchema) Field(name string) (*FieldSchema, bool) {
	for _, f := range r.Fields {
		if f.Name == name || (f.Name == "" && f.Label() == name) {
			return f, true
		}
	}
	return nil, false
}

// NewRecord builds a record schema, numbering the fields in order.
func NewRecord(name string, storage Storage, fields ...*FieldSchema) *RecordSchema {
	for i, f := range fields {
		f.Index = i
	}
	return &RecordSchema{Name: name, Storage: storage, Fields: fields}
}

// Field builds a default-placed read-write field.
func Field(name string, t *Type) *FieldSchema {
	return &FieldSchema{Name: name, Type: t}
}
