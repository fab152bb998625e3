package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/bitpack/errors"
)

const controlTOML = `
package = "regs"

[[enum]]
name = "Mode"
width = 2
exhaustive = true
variants = [{ name = "A" }, { name = "B" }, { name = "C" }, { name = "D" }]

[[bitfield]]
name = "Control"
storage_type = "u16"
doc = "Control register."
fields = [
  { name = "f1", type = "u7" },
  { name = "f6", type = "Mode", attr = "rw" },
]
`

const controlYAML = `
package: regs
enum:
  - name: Mode
    width: 2
    exhaustive: true
    variants:
      - name: A
      - name: B
      - name: C
      - name: D
bitfield:
  - name: Control
    storage_type: u16
    doc: Control register.
    fields:
      - name: f1
        type: u7
      - name: f6
        type: Mode
        attr: rw
`

const controlJSON = `{
  "package": "regs",
  "enum": [{"name": "Mode", "width": 2, "exhaustive": true,
            "variants": [{"name": "A"}, {"name": "B"}, {"name": "C"}, {"name": "D"}]}],
  "bitfield": [{"name": "Control", "storage_type": "u16", "doc": "Control register.",
                "fields": [{"name": "f1", "type": "u7"}, {"name": "f6", "type": "Mode", "attr": "rw"}]}]
}`

func controlDocument() *Document {
	return &Document{
		Package: "regs",
		Enums: []EnumDecl{{
			Name:       "Mode",
			Width:      2,
			Exhaustive: true,
			Variants:   []VariantDecl{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}},
		}},
		Bitfields: []BitfieldDecl{{
			Name:        "Control",
			StorageType: "u16",
			Doc:         "Control register.",
			Fields: []FieldDecl{
				{Name: "f1", Type: "u7"},
				{Name: "f6", Type: "Mode", Attr: "rw"},
			},
		}},
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		format Format
		data   string
	}{
		{FormatTOML, controlTOML},
		{FormatYAML, controlYAML},
		{FormatJSON, controlJSON},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			doc, err := Decode([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if diff := cmp.Diff(controlDocument(), doc); diff != "" {
				t.Errorf("document mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_ExplicitVariantValues(t *testing.T) {
	doc, err := Decode([]byte(`
[[enum]]
name = "Level"
width = 4
variants = [{ name = "Low", value = 1 }, { name = "High", value = 12 }]
`), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	vs := doc.Enums[0].Variants
	if vs[0].Value == nil || *vs[0].Value != 1 || vs[1].Value == nil || *vs[1].Value != 12 {
		t.Errorf("variant values not decoded: %+v", vs)
	}
}

func TestDecode_RejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		format Format
		data   string
	}{
		{FormatTOML, "[[bitfield]]\nname = \"R\"\nstorage = \"u8\"\n"},
		{FormatYAML, "bitfield:\n  - name: R\n    storage: u8\n"},
		{FormatJSON, `{"bitfields": []}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format)
			if !isKind(err, errors.KindInvalidData) {
				t.Errorf("error = %v, want invalid data", err)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, err := Decode([]byte("[[bitfield"), FormatTOML); err == nil {
		t.Error("expected toml syntax error")
	}
	if _, err := Decode([]byte("x"), Format("ini")); !isKind(err, errors.KindUnsupported) {
		t.Errorf("error = %v, want unsupported", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(controlDocument(), format)
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			doc, err := Decode(data, format)
			if err != nil {
				t.Fatalf("Decode error: %v\n%s", err, data)
			}
			if diff := cmp.Diff(controlDocument(), doc); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regs.yml")
	if err := os.WriteFile(path, []byte(controlYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Bitfields[0].Name != "Control" {
		t.Errorf("loaded %+v", doc)
	}

	if _, err := LoadFile(filepath.Join(dir, "regs.txt")); !isKind(err, errors.KindInvalidData) {
		t.Errorf("unknown extension error = %v", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}
