package layout

import (
	"fmt"
	"math/bits"

	"go.uber.org/zap"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/schema"
)

// Options tunes the Validator.
type Options struct {
	// CheckOverlap rejects explicitly placed fields whose bits intersect
	// another field.
	CheckOverlap bool
}

// Validator checks records and enums before code is generated or values are
// packed. Every problem found is reported, collected in an *errors.List.
type Validator struct {
	calc *Calculator
	opts Options
}

func NewValidator(opts Options) *Validator {
	return &Validator{calc: NewCalculator(), opts: opts}
}

// Calculator returns the calculator whose cache the validator fills.
func (v *Validator) Calculator() *Calculator {
	return v.calc
}

// Schema validates every enum and record of s.
func (v *Validator) Schema(s *schema.Schema) error {
	var errs errors.List
	for _, e := range s.Enums {
		errs.Add(v.Enum(e))
	}
	for _, r := range s.Records {
		_, err := v.Record(r)
		errs.Add(err)
	}
	return errs.Err()
}

// Record validates r and returns its layout. The layout is returned even
// when validation fails, as long as widths could be computed.
func (v *Validator) Record(r *schema.RecordSchema) (*Info, error) {
	if r.Storage == 0 || r.Storage.Bits() > schema.MaxWidth || !schema.IsNativeWidth(r.Storage.Bits()) {
		return nil, errors.InvalidStorageWidth([]string{r.Name}, r.Storage.String(),
			"storage must be one of u8, u16, u32, u64, u128")
	}

	info, err := v.calc.Record(r)
	if err != nil {
		return nil, err
	}

	var errs errors.List
	storage := r.Storage.Bits()
	for _, fi := range info.Fields {
		f := fi.Field
		path := []string{r.Name, fi.Label()}

		if f.Range != nil {
			size := f.Range.Size()
			if size != fi.Width && (fi.Count <= 1 || size != fi.Extent) {
				errs.Add(errors.New(errors.PhaseValidate, errors.KindMalformedAnnotation).
					Path(path...).
					Type(f.Type.String()).
					Value(f.Attr).
					Detail("%s has %d bits but %s is %d bits wide", f.Range, size, f.Type, fi.Width).
					Build())
				continue
			}
		}
		if f.Stride != 0 && f.Stride < fi.Width {
			errs.Add(errors.New(errors.PhaseValidate, errors.KindMalformedAnnotation).
				Path(path...).
				Type(f.Type.String()).
				Value(f.Attr).
				Detail("stride %d is smaller than the element width %d", f.Stride, fi.Width).
				Build())
			continue
		}
		if fi.End() > storage {
			errs.Add(errors.Overflow(path, fieldType(f), r.Storage.String(), fi.End(), storage))
			continue
		}

		if f.Type.Kind == schema.KindEnum && !f.Type.Enum.Exhaustive && f.Access.CanRead() {
			Logger().Debug("partial enum field reads may not match a variant",
				zap.String("record", r.Name),
				zap.String("field", fi.Label()),
				zap.String("enum", f.Type.Name))
		}
	}

	if v.opts.CheckOverlap {
		errs.Add(checkOverlap(info))
	}

	if err := errs.Err(); err != nil {
		return info, err
	}
	if unused := info.UnusedBits(); unused > 0 {
		Logger().Debug("record leaves storage bits unused",
			zap.String("record", r.Name),
			zap.Uint("bits", info.Bits),
			zap.String("storage", r.Storage.String()),
			zap.Uint("unused", unused))
	}
	return info, nil
}

// checkOverlap reports explicitly placed fields that share bits with any
// other field. Fields placed by default never overlap each other.
func checkOverlap(info *Info) error {
	var errs errors.List
	for i, a := range info.Fields {
		for j, b := range info.Fields {
			if j <= i || (!a.Explicit && !b.Explicit) {
				continue
			}
			if a.Extent == 0 || b.Extent == 0 {
				continue
			}
			if bit, ok := firstShared(a, b); ok {
				errs.Add(errors.New(errors.PhaseValidate, errors.KindOverflow).
					Path(info.Record.Name, b.Label()).
					Type(fieldType(b.Field)).
					Storage(info.Storage.String()).
					Value(bit).
					Detail("bit %d overlaps field %s", bit, a.Label()).
					Build())
			}
		}
	}
	return errs.Err()
}

// firstShared returns the lowest bit used by instances of both fields.
// Repeated fields with a stride leave gaps, so instance windows are compared
// rather than whole extents.
func firstShared(a, b FieldInfo) (uint, bool) {
	if a.End() <= b.Offset || b.End() <= a.Offset {
		return 0, false
	}
	found := false
	var lowest uint
	for i := 0; i < max(a.Count, 1); i++ {
		as := a.ElemOffset(i)
		ae := as + a.Width
		for j := 0; j < max(b.Count, 1); j++ {
			bs := b.ElemOffset(j)
			be := bs + b.Width
			lo, hi := max(as, bs), min(ae, be)
			if lo < hi && (!found || lo < lowest) {
				lowest, found = lo, true
			}
		}
	}
	return lowest, found
}

func fieldType(f *schema.FieldSchema) string {
	if f.Count > 0 {
		return fmt.Sprintf("[%s; %d]", f.Type, f.Count)
	}
	return f.Type.String()
}

// Enum validates e: the width must be in 1..=128, every discriminant must fit
// the width, names and values must be unique, and an exhaustive enum must
// name every one of its 2^width patterns.
func (v *Validator) Enum(e *schema.EnumSchema) error {
	path := []string{e.Name}
	if e.Width == 0 || e.Width > schema.MaxWidth {
		return errors.InvalidStorageWidth(path, fmt.Sprintf("u%d", e.Width),
			fmt.Sprintf("enum width %d must be in 1..=%d", e.Width, schema.MaxWidth))
	}

	var errs errors.List
	names := make(map[string]bool, len(e.Variants))
	values := make(map[bitpack.Uint128]string, len(e.Variants))
	for _, variant := range e.Variants {
		if names[variant.Name] {
			errs.Add(errors.Duplicate(errors.PhaseValidate, path, "variant", variant.Name))
			continue
		}
		names[variant.Name] = true

		if variant.Value.Len() > int(e.Width) {
			errs.Add(errors.InvalidEnum(append(path, variant.Name), e.Name,
				fmt.Sprintf("value %s does not fit in %d bits", variant.Value, e.Width)))
			continue
		}
		if prev, ok := values[variant.Value]; ok {
			errs.Add(errors.InvalidEnum(append(path, variant.Name), e.Name,
				fmt.Sprintf("value %s is already used by %s", variant.Value, prev)))
			continue
		}
		values[variant.Value] = variant.Name
	}

	if e.Exhaustive && !coversAll(len(e.Variants), e.Width) {
		errs.Add(errors.InvalidEnum(path, e.Name,
			fmt.Sprintf("exhaustive enum of width %d needs 2^%d variants, has %d", e.Width, e.Width, len(e.Variants))))
	}
	return errs.Err()
}

// coversAll reports whether count == 2^width. With values unique and below
// 2^width this is the whole totality check.
func coversAll(count int, width uint) bool {
	if width >= bits.UintSize-1 {
		return false
	}
	return count == 1<<width
}
