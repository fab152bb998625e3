package schema

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/bitpack"
	"github.com/wippyai/bitpack/errors"
)

func mustResolve(t *testing.T, src string) *Schema {
	t.Helper()
	doc, err := Decode([]byte(src), FormatTOML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	s, err := Resolve(doc)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return s
}

func resolveErr(t *testing.T, src string) error {
	t.Helper()
	doc, err := Decode([]byte(src), FormatTOML)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	_, err = Resolve(doc)
	if err == nil {
		t.Fatal("Resolve succeeded, want error")
	}
	return err
}

func TestResolve(t *testing.T) {
	s := mustResolve(t, controlTOML)

	if s.Package != "regs" {
		t.Errorf("package = %q", s.Package)
	}
	mode, ok := s.Enum("Mode")
	if !ok {
		t.Fatal("enum Mode missing")
	}
	var values []uint64
	for _, v := range mode.Variants {
		values = append(values, v.Value.Uint64())
	}
	if diff := cmp.Diff([]uint64{0, 1, 2, 3}, values); diff != "" {
		t.Errorf("variant values (-want +got):\n%s", diff)
	}

	ctrl, ok := s.Record("Control")
	if !ok {
		t.Fatal("record Control missing")
	}
	if ctrl.Storage != 16 || ctrl.Doc != "Control register." {
		t.Errorf("record = %+v", ctrl)
	}
	f6, ok := ctrl.Field("f6")
	if !ok {
		t.Fatal("field f6 missing")
	}
	if f6.Type.Kind != KindEnum || f6.Type.Enum != mode {
		t.Errorf("f6 type = %v (%v), want resolved Mode", f6.Type, f6.Type.Kind)
	}
	if f6.Index != 1 {
		t.Errorf("f6 index = %d", f6.Index)
	}
}

func TestResolve_VariantValuesContinue(t *testing.T) {
	s := mustResolve(t, `
[[enum]]
name = "E"
width = 8
variants = [{ name = "A" }, { name = "B", value = 10 }, { name = "C" }, { name = "D", value = 3 }, { name = "F" }]
`)
	e, _ := s.Enum("E")
	want := map[string]uint64{"A": 0, "B": 10, "C": 11, "D": 3, "F": 4}
	for _, v := range e.Variants {
		if !v.Value.Equal(bitpack.Uint128From(want[v.Name])) {
			t.Errorf("%s = %v, want %d", v.Name, v.Value, want[v.Name])
		}
	}
}

func TestResolve_NestedAndComposite(t *testing.T) {
	s := mustResolve(t, `
[[enum]]
name = "Mode"
width = 2
variants = [{ name = "Off" }, { name = "On" }]

[[bitfield]]
name = "Inner"
storage_type = "u8"
fields = [{ name = "a", type = "u3" }]

[[bitfield]]
name = "Outer"
storage_type = "u32"
fields = [
  { name = "pair", type = "(Inner, ?Mode)" },
  { type = "[u4; 2]", attr = "stride := 5" },
  { name = "flag", type = "bool", attr = "r, bit: 30" },
]
`)
	outer, _ := s.Record("Outer")
	pair := outer.Fields[0].Type
	if pair.Elems[0].Kind != KindRecord || pair.Elems[1].Elem.Kind != KindEnum {
		t.Errorf("pair = %v, references not resolved", pair)
	}
	arr := outer.Fields[1]
	if arr.Name != "" || arr.Label() != "1" || arr.Count != 2 || arr.Stride != 5 {
		t.Errorf("array field = %+v", arr)
	}
	flag := outer.Fields[2]
	if flag.Access != AccessRead || flag.Range == nil || *flag.Range != (Range{30, 31}) {
		t.Errorf("flag = %+v", flag)
	}
	if f, ok := outer.Field("1"); !ok || f != arr {
		t.Error("unnamed field not found by index label")
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind errors.Kind
		text string
	}{
		{
			name: "bad storage",
			src:  "[[bitfield]]\nname = \"R\"\nstorage_type = \"u12\"\nfields = []\n",
			kind: errors.KindInvalidStorageWidth,
			text: "storage_type must be one of",
		},
		{
			name: "missing storage",
			src:  "[[bitfield]]\nname = \"R\"\nfields = []\n",
			kind: errors.KindInvalidStorageWidth,
			text: "storage_type is required",
		},
		{
			name: "unknown type",
			src:  "[[bitfield]]\nname = \"R\"\nstorage_type = \"u8\"\nfields = [{ name = \"x\", type = \"Nope\" }]\n",
			kind: errors.KindInvalidType,
			text: "unknown type",
		},
		{
			name: "bad annotation",
			src:  "[[bitfield]]\nname = \"R\"\nstorage_type = \"u8\"\nfields = [{ name = \"x\", type = \"u1\", attr = \"r, w\" }]\n",
			kind: errors.KindMalformedAnnotation,
			text: "R.x",
		},
		{
			name: "stride without array",
			src:  "[[bitfield]]\nname = \"R\"\nstorage_type = \"u8\"\nfields = [{ name = \"x\", type = \"u1\", attr = \"stride := 2\" }]\n",
			kind: errors.KindMalformedAnnotation,
			text: "stride requires",
		},
		{
			name: "duplicate field",
			src:  "[[bitfield]]\nname = \"R\"\nstorage_type = \"u8\"\nfields = [{ name = \"x\", type = \"u1\" }, { name = \"x\", type = \"u2\" }]\n",
			kind: errors.KindDuplicate,
			text: `duplicate field "x"`,
		},
		{
			name: "duplicate type",
			src:  "[[enum]]\nname = \"R\"\nwidth = 1\nvariants = []\n[[bitfield]]\nname = \"R\"\nstorage_type = \"u8\"\nfields = []\n",
			kind: errors.KindDuplicate,
			text: `duplicate type "R"`,
		},
		{
			name: "duplicate variant",
			src:  "[[enum]]\nname = \"E\"\nwidth = 1\nvariants = [{ name = \"A\" }, { name = \"A\" }]\n",
			kind: errors.KindDuplicate,
			text: `duplicate variant "A"`,
		},
		{
			name: "bad identifier",
			src:  "[[bitfield]]\nname = \"9R\"\nstorage_type = \"u8\"\nfields = []\n",
			kind: errors.KindInvalidType,
			text: "not a valid identifier",
		},
		{
			name: "record named like an integer",
			src:  "[[bitfield]]\nname = \"u7\"\nstorage_type = \"u8\"\nfields = []\n",
			kind: errors.KindInvalidType,
			text: "shadows a builtin type",
		},
		{
			name: "enum named bool",
			src:  "[[enum]]\nname = \"bool\"\nwidth = 1\nvariants = []\n",
			kind: errors.KindInvalidType,
			text: "shadows a builtin type",
		},
		{
			name: "record named Option",
			src:  "[[bitfield]]\nname = \"Option\"\nstorage_type = \"u8\"\nfields = []\n",
			kind: errors.KindInvalidType,
			text: "shadows a builtin type",
		},
		{
			name: "cycle",
			src: "[[bitfield]]\nname = \"A\"\nstorage_type = \"u8\"\nfields = [{ name = \"b\", type = \"B\" }]\n" +
				"[[bitfield]]\nname = \"B\"\nstorage_type = \"u8\"\nfields = [{ name = \"a\", type = \"?A\" }]\n",
			kind: errors.KindInvalidType,
			text: "A -> B -> A",
		},
		{
			name: "nested wider than parent",
			src: "[[bitfield]]\nname = \"Big\"\nstorage_type = \"u32\"\nfields = [{ name = \"x\", type = \"u2\" }]\n" +
				"[[bitfield]]\nname = \"Small\"\nstorage_type = \"u8\"\nfields = [{ name = \"big\", type = \"Big\" }]\n",
			kind: errors.KindInvalidType,
			text: "wider than its parent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := resolveErr(t, tt.src)
			if !isKind(err, tt.kind) {
				t.Errorf("error = %v, want kind %s", err, tt.kind)
			}
			if !strings.Contains(err.Error(), tt.text) {
				t.Errorf("error %q does not mention %q", err, tt.text)
			}
		})
	}
}

func TestIsBuiltinName(t *testing.T) {
	tests := map[string]bool{
		"bool":   true,
		"Option": true,
		"u1":     true,
		"u128":   true,
		"u0":     true,
		"u":      false,
		"u8x":    false,
		"Bool":   false,
		"option": false,
		"Mode":   false,
	}
	for name, want := range tests {
		if got := isBuiltinName(name); got != want {
			t.Errorf("isBuiltinName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestResolve_ReportsAllErrors(t *testing.T) {
	err := resolveErr(t, `
[[bitfield]]
name = "R"
storage_type = "u8"
fields = [
  { name = "a", type = "u0" },
  { name = "b", type = "u1", attr = "bogus" },
  { name = "c", type = "(u1" },
]
`)
	list, ok := err.(*errors.List)
	if !ok {
		t.Fatalf("error type %T, want *errors.List", err)
	}
	if len(list.Errors) != 3 {
		t.Errorf("got %d errors, want 3:\n%v", len(list.Errors), err)
	}
	for _, e := range list.Errors {
		if len(e.Path) != 2 || e.Path[0] != "R" {
			t.Errorf("error path = %v", e.Path)
		}
	}
}

func TestNewRecord(t *testing.T) {
	r := NewRecord("R", 8, Field("a", Uint(3)), Field("", Bool()))
	if r.Fields[1].Index != 1 || r.Fields[1].Label() != "1" {
		t.Errorf("fields not numbered: %+v", r.Fields[1])
	}
	if _, ok := r.Field("a"); !ok {
		t.Error("field a not found")
	}
	if _, ok := r.Field("z"); ok {
		t.Error("unexpected field z")
	}
}
