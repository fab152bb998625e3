package witimport

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/schema"
)

func ptr(s string) *string { return &s }

func enumDef(name string, cases ...string) *wit.TypeDef {
	e := &wit.Enum{}
	for _, c := range cases {
		e.Cases = append(e.Cases, wit.EnumCase{Name: c})
	}
	return &wit.TypeDef{Name: ptr(name), Kind: e}
}

func TestEnumWidth(t *testing.T) {
	tests := []struct {
		n          int
		width      uint
		exhaustive bool
	}{
		{1, 1, false},
		{2, 1, true},
		{3, 2, false},
		{4, 2, true},
		{5, 3, false},
		{8, 3, true},
		{9, 4, false},
		{256, 8, true},
		{257, 9, false},
	}
	for _, tt := range tests {
		width, exhaustive := EnumWidth(tt.n)
		if width != tt.width || exhaustive != tt.exhaustive {
			t.Errorf("EnumWidth(%d) = %d, %v; want %d, %v", tt.n, width, exhaustive, tt.width, tt.exhaustive)
		}
	}
}

func TestImport(t *testing.T) {
	mode := enumDef("power-mode", "off", "low", "high")
	mode.Docs.Contents = "Power mode."
	perms := &wit.TypeDef{
		Name: ptr("perms"),
		Kind: &wit.Flags{Flags: []wit.Flag{{Name: "read"}, {Name: "write"}, {Name: "exec"}}},
	}
	level := &wit.TypeDef{Name: ptr("level"), Kind: wit.U8{}}
	pair := &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.Bool{}, wit.U16{}}}}
	ctrl := &wit.TypeDef{
		Name: ptr("control"),
		Kind: &wit.Record{Fields: []wit.Field{
			{Name: "mode", Type: mode, Docs: wit.Docs{Contents: "Current mode."}},
			{Name: "perms", Type: perms},
			{Name: "level", Type: level},
			{Name: "pair", Type: pair},
			{Name: "limit", Type: &wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}}},
		}},
	}

	doc, err := NewImporter(Options{Package: "hw"}).Import(ctrl)
	if err != nil {
		t.Fatal(err)
	}

	want := &schema.Document{
		Package: "hw",
		Enums: []schema.EnumDecl{{
			Name:     "power_mode",
			Doc:      "Power mode.",
			Width:    2,
			Variants: []schema.VariantDecl{{Name: "off"}, {Name: "low"}, {Name: "high"}},
		}},
		Bitfields: []schema.BitfieldDecl{
			{
				Name:        "perms",
				StorageType: "u8",
				Fields: []schema.FieldDecl{
					{Name: "read", Type: "bool"},
					{Name: "write", Type: "bool"},
					{Name: "exec", Type: "bool"},
				},
			},
			{
				Name:        "control",
				StorageType: "u64",
				Fields: []schema.FieldDecl{
					{Name: "mode", Type: "power_mode", Doc: "Current mode."},
					{Name: "perms", Type: "perms"},
					{Name: "level", Type: "u8"},
					{Name: "pair", Type: "(bool, u16)"},
					{Name: "limit", Type: "Option<u32>"},
				},
			},
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("Import mismatch (-want +got):\n%s", diff)
	}

	// 2 + 3 + 8 + 17 + 33 bits
	s, err := schema.Resolve(doc)
	if err != nil {
		t.Fatalf("imported document does not resolve: %v", err)
	}
	rec, ok := s.Record("control")
	if !ok {
		t.Fatal("control not resolved")
	}
	info, err := layout.NewValidator(layout.Options{CheckOverlap: true}).Record(rec)
	if err != nil {
		t.Fatal(err)
	}
	if info.Bits != 63 {
		t.Errorf("control bits = %d, want 63", info.Bits)
	}
}

func TestImport_SharedReference(t *testing.T) {
	mode := enumDef("mode", "a", "b")
	a := &wit.TypeDef{Name: ptr("a"), Kind: &wit.Record{Fields: []wit.Field{{Name: "m", Type: mode}}}}
	b := &wit.TypeDef{Name: ptr("b"), Kind: &wit.Record{Fields: []wit.Field{
		{Name: "m", Type: mode},
		{Name: "inner", Type: a},
	}}}

	doc, err := NewImporter(Options{}).Import(a, b, mode)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Enums) != 1 || len(doc.Bitfields) != 2 {
		t.Fatalf("got %d enums, %d bitfields", len(doc.Enums), len(doc.Bitfields))
	}
	if !doc.Enums[0].Exhaustive || doc.Enums[0].Width != 1 {
		t.Errorf("mode = %+v", doc.Enums[0])
	}
	if got := doc.Bitfields[1].Fields[1].Type; got != "a" {
		t.Errorf("inner type = %q", got)
	}
}

func TestImport_NameClash(t *testing.T) {
	mk := func(iface string) *wit.TypeDef {
		d := enumDef("mode", "x", "y")
		d.Owner = &wit.Interface{Name: ptr(iface)}
		return d
	}
	doc, err := NewImporter(Options{}).Import(mk("uart"), mk("spi-bus"))
	if err != nil {
		t.Fatal(err)
	}
	got := []string{doc.Enums[0].Name, doc.Enums[1].Name}
	if diff := cmp.Diff([]string{"mode", "spi_bus_mode"}, got); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}

func TestImport_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		field wit.Type
		typ   string
	}{
		{"signed", wit.S32{}, "s32"},
		{"signed byte", wit.S8{}, "s8"},
		{"char", wit.Char{}, "char"},
		{"float", wit.F64{}, "f64"},
		{"string", wit.String{}, "string"},
		{"list", &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}, "list"},
		{"result", &wit.TypeDef{Kind: &wit.Result{OK: wit.U8{}}}, "result"},
		{"nested in option", &wit.TypeDef{Kind: &wit.Option{Type: wit.Char{}}}, "char"},
		{"nested in tuple", &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U8{}, wit.F32{}}}}, "f32"},
		{"anonymous record", &wit.TypeDef{Kind: &wit.Record{}}, "anonymous record"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &wit.TypeDef{Name: ptr("r"), Kind: &wit.Record{Fields: []wit.Field{{Name: "f", Type: tt.field}}}}
			_, err := NewImporter(Options{}).Import(rec)
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseImport, Kind: errors.KindInvalidType}) {
				t.Fatalf("error = %v, want InvalidType", err)
			}
			if !strings.Contains(err.Error(), tt.typ) {
				t.Errorf("error %q does not name %s", err, tt.typ)
			}
		})
	}
}

func TestImport_SkipUnsupported(t *testing.T) {
	bad := &wit.TypeDef{Name: ptr("bad"), Kind: &wit.Record{Fields: []wit.Field{{Name: "s", Type: wit.String{}}}}}
	user := &wit.TypeDef{Name: ptr("user"), Kind: &wit.Record{Fields: []wit.Field{{Name: "b", Type: bad}}}}
	good := enumDef("good", "a")

	res := &wit.Resolve{TypeDefs: []*wit.TypeDef{
		bad,
		user,
		good,
		{Name: ptr("blob"), Kind: &wit.List{Type: wit.U8{}}},
	}}

	if _, err := NewImporter(Options{}).ImportResolve(res); err == nil {
		t.Fatal("expected error without SkipUnsupported")
	}
	doc, err := NewImporter(Options{SkipUnsupported: true}).ImportResolve(res)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Bitfields) != 0 || len(doc.Enums) != 1 || doc.Enums[0].Name != "good" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestImport_TooWide(t *testing.T) {
	var fields []wit.Field
	for _, n := range []string{"a", "b", "c"} {
		fields = append(fields, wit.Field{Name: n, Type: wit.U64{}})
	}
	rec := &wit.TypeDef{Name: ptr("big"), Kind: &wit.Record{Fields: fields}}
	_, err := NewImporter(Options{}).Import(rec)
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindOverflow}) {
		t.Errorf("error = %v, want Overflow", err)
	}
}

func TestImport_EmptyFlags(t *testing.T) {
	doc, err := NewImporter(Options{}).Import(&wit.TypeDef{Name: ptr("none"), Kind: &wit.Flags{}})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Bitfields[0].StorageType != "u8" {
		t.Errorf("storage = %s", doc.Bitfields[0].StorageType)
	}
}
