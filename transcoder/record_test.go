package transcoder

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/schema"
)

func statusRecord() *schema.RecordSchema {
	return schema.NewRecord("Status", 32,
		&schema.FieldSchema{Name: "ready", Type: schema.Bool(), Access: schema.AccessRead},
		&schema.FieldSchema{Name: "reset", Type: schema.Bool(), Access: schema.AccessWrite},
		&schema.FieldSchema{Name: "lanes", Type: schema.Uint(3), Count: 3, Stride: 4},
		&schema.FieldSchema{Name: "mode", Type: schema.EnumType(mode()), Range: &schema.Range{Start: 20, End: 22}},
	)
}

func TestRecord_GetSet(t *testing.T) {
	rec, err := NewRecord(statusRecord())
	if err != nil {
		t.Fatal(err)
	}

	raw := bitpack.Uint128From(1) // ready
	raw, err = rec.Set(raw, "lanes", TupleValue{UintOf(1), UintOf(7), UintOf(2)})
	if err != nil {
		t.Fatal(err)
	}
	raw, err = rec.Set(raw, "mode", EnumValue{Name: "D"})
	if err != nil {
		t.Fatal(err)
	}

	// lanes at 2, 6, 10; mode at 20
	want := uint64(1 | 1<<2 | 7<<6 | 2<<10 | 3<<20)
	if !raw.Equal(bitpack.Uint128From(want)) {
		t.Errorf("raw = %#x, want %#x", raw.Uint64(), want)
	}

	lanes, err := rec.Get(raw, "lanes")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(TupleValue{UintOf(1), UintOf(7), UintOf(2)}, lanes); diff != "" {
		t.Errorf("lanes (-want +got):\n%s", diff)
	}

	raw, err = rec.SetElem(raw, "lanes", 1, UintOf(0))
	if err != nil {
		t.Fatal(err)
	}
	if raw.Uint64()&(7<<6) != 0 {
		t.Errorf("SetElem did not clear lane 1: %#x", raw.Uint64())
	}
	if raw.Uint64()&(2<<10) == 0 {
		t.Errorf("SetElem touched lane 2: %#x", raw.Uint64())
	}
}

func TestRecord_Access(t *testing.T) {
	rec, _ := NewRecord(statusRecord())
	access := &errors.Error{Kind: errors.KindAccess}

	if _, err := rec.Set(bitpack.Uint128{}, "ready", Bool(true)); !stderrors.Is(err, access) {
		t.Errorf("writing read-only field: %v", err)
	}
	if _, err := rec.Get(bitpack.Uint128{}, "reset"); !stderrors.Is(err, access) {
		t.Errorf("reading write-only field: %v", err)
	}
	if _, err := rec.Set(bitpack.Uint128{}, "reset", Bool(true)); err != nil {
		t.Errorf("writing write-only field: %v", err)
	}
	if _, err := rec.Get(bitpack.Uint128{}, "nope"); !stderrors.Is(err, &errors.Error{Kind: errors.KindNotFound}) {
		t.Errorf("unknown field: %v", err)
	}
	if _, err := rec.Set(bitpack.Uint128{}, "lanes", UintOf(1)); !stderrors.Is(err, &errors.Error{Kind: errors.KindTypeMismatch}) {
		t.Errorf("scalar for repeated field: %v", err)
	}
}

func TestRecord_Fields(t *testing.T) {
	rec, _ := NewRecord(statusRecord())
	fields, err := rec.Fields(bitpack.Uint128From(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 4 {
		t.Fatalf("got %d fields", len(fields))
	}
	if fields[0].Value != Bool(true) {
		t.Errorf("ready = %v", fields[0].Value)
	}
	if fields[1].Value != nil {
		t.Errorf("write-only field decoded as %v", fields[1].Value)
	}
	if fields[3].Field.Offset != 20 || !fields[3].Field.Explicit {
		t.Errorf("mode layout = %+v", fields[3].Field)
	}
}

func TestRecord_UnnamedField(t *testing.T) {
	r := schema.NewRecord("Pair", 8, schema.Field("", schema.Uint(4)), schema.Field("", schema.Uint(4)))
	raw, err := SetField(r, bitpack.Uint128{}, "1", UintOf(0xa))
	if err != nil {
		t.Fatal(err)
	}
	if raw.Uint64() != 0xa0 {
		t.Errorf("raw = %#x", raw.Uint64())
	}
}
