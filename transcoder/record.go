package transcoder

import (
	"strconv"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/schema"
)

// Record reads and writes fields of one record's storage word by name.
// Access modes are enforced: reading a write-only field or writing a
// read-only one fails with an access error.
type Record struct {
	Info *layout.Info
	enc  *Encoder
	dec  *Decoder
}

// NewRecord computes the layout of r. It does not validate r against its
// storage; run a layout.Validator first.
func NewRecord(r *schema.RecordSchema) (*Record, error) {
	calc := layout.NewCalculator()
	info, err := calc.Record(r)
	if err != nil {
		return nil, err
	}
	return &Record{
		Info: info,
		enc:  NewEncoderWithCalculator(calc),
		dec:  NewDecoderWithCalculator(calc),
	}, nil
}

// FieldValue pairs a field's layout with its current value. Value is nil for
// write-only fields.
type FieldValue struct {
	Value Value
	Field layout.FieldInfo
}

// Fields decodes every field of raw in declaration order.
func (r *Record) Fields(raw bitpack.Uint128) ([]FieldValue, error) {
	out := make([]FieldValue, 0, len(r.Info.Fields))
	for _, fi := range r.Info.Fields {
		fv := FieldValue{Field: fi}
		if fi.Access.CanRead() {
			v, err := r.read(fi, raw)
			if err != nil {
				return nil, err
			}
			fv.Value = v
		}
		out = append(out, fv)
	}
	return out, nil
}

// Get returns the value of the named field. A repeated field yields a
// TupleValue with one element per instance.
func (r *Record) Get(raw bitpack.Uint128, name string) (Value, error) {
	fi, err := r.field(name)
	if err != nil {
		return nil, err
	}
	if !fi.Access.CanRead() {
		return nil, errors.Access(errors.PhaseUnpack, []string{r.Info.Record.Name, name}, "field is write-only")
	}
	return r.read(fi, raw)
}

// Set returns raw with the named field replaced by v. Other fields are left
// untouched.
func (r *Record) Set(raw bitpack.Uint128, name string, v Value) (bitpack.Uint128, error) {
	fi, err := r.field(name)
	if err != nil {
		return raw, err
	}
	path := []string{r.Info.Record.Name, name}
	if !fi.Access.CanWrite() {
		return raw, errors.Access(errors.PhasePack, path, "field is read-only")
	}
	if !fi.Field.Repeated() {
		return r.enc.pack(fi.Field.Type, v, raw, fi.Offset, path)
	}
	tv, ok := v.(TupleValue)
	if !ok || len(tv) != fi.Count {
		return raw, errors.TypeMismatch(errors.PhasePack, path, fieldTypeName(fi), v)
	}
	for i, elem := range tv {
		raw, err = r.enc.pack(fi.Field.Type, elem, raw, fi.ElemOffset(i), path)
		if err != nil {
			return raw, err
		}
	}
	return raw, nil
}

// SetElem replaces instance i of a repeated field. It panics if i is out of
// range.
func (r *Record) SetElem(raw bitpack.Uint128, name string, i int, v Value) (bitpack.Uint128, error) {
	fi, err := r.field(name)
	if err != nil {
		return raw, err
	}
	path := []string{r.Info.Record.Name, name}
	if !fi.Access.CanWrite() {
		return raw, errors.Access(errors.PhasePack, path, "field is read-only")
	}
	return r.enc.pack(fi.Field.Type, v, raw, fi.ElemOffset(i), path)
}

func (r *Record) read(fi layout.FieldInfo, raw bitpack.Uint128) (Value, error) {
	if !fi.Field.Repeated() {
		return r.dec.Unpack(fi.Field.Type, raw, fi.Offset)
	}
	out := make(TupleValue, fi.Count)
	for i := range out {
		v, err := r.dec.Unpack(fi.Field.Type, raw, fi.ElemOffset(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *Record) field(name string) (layout.FieldInfo, error) {
	fi, ok := r.Info.Field(name)
	if !ok {
		return fi, errors.NotFound(errors.PhasePack, "field", r.Info.Record.Name+"."+name)
	}
	return fi, nil
}

func fieldTypeName(fi layout.FieldInfo) string {
	t := fi.Field.Type.String()
	if fi.Field.Repeated() {
		return "[" + t + "; " + strconv.Itoa(fi.Count) + "]"
	}
	return t
}

// GetField reads one field of a record word.
func GetField(r *schema.RecordSchema, raw bitpack.Uint128, name string) (Value, error) {
	rec, err := NewRecord(r)
	if err != nil {
		return nil, err
	}
	return rec.Get(raw, name)
}

// SetField writes one field of a record word.
func SetField(r *schema.RecordSchema, raw bitpack.Uint128, name string, v Value) (bitpack.Uint128, error) {
	rec, err := NewRecord(r)
	if err != nil {
		return raw, err
	}
	return rec.Set(raw, name, v)
}
