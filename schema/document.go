package schema

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"

	"github.com/wippyai/bitpack/errors"
)

// Document is the textual form of a schema as read from TOML, YAML or JSON.
type Document struct {
	Package   string         `json:"package,omitempty" toml:"package,omitempty"`
	Enums     []EnumDecl     `json:"enum,omitempty" toml:"enum,omitempty"`
	Bitfields []BitfieldDecl `json:"bitfield,omitempty" toml:"bitfield,omitempty"`
}

// EnumDecl declares a bit-pattern-backed enumeration.
type EnumDecl struct {
	Name       string        `json:"name" toml:"name"`
	Doc        string        `json:"doc,omitempty" toml:"doc,omitempty"`
	Variants   []VariantDecl `json:"variants" toml:"variants"`
	Width      uint          `json:"width" toml:"width"`
	Exhaustive bool          `json:"exhaustive,omitempty" toml:"exhaustive,omitempty"`
}

// VariantDecl declares one enum variant. A missing value continues from the
// previous variant.
type VariantDecl struct {
	Value *uint64 `json:"value,omitempty" toml:"value,omitempty"`
	Name  string  `json:"name" toml:"name"`
	Doc   string  `json:"doc,omitempty" toml:"doc,omitempty"`
}

// BitfieldDecl declares a record packed into StorageType.
type BitfieldDecl struct {
	Name        string      `json:"name" toml:"name"`
	StorageType string      `json:"storage_type" toml:"storage_type"`
	Doc         string      `json:"doc,omitempty" toml:"doc,omitempty"`
	Fields      []FieldDecl `json:"fields" toml:"fields"`
}

// FieldDecl declares one field. Attr holds the annotation string.
type FieldDecl struct {
	Name string `json:"name,omitempty" toml:"name,omitempty"`
	Type string `json:"type" toml:"type"`
	Attr string `json:"attr,omitempty" toml:"attr,omitempty"`
	Doc  string `json:"doc,omitempty" toml:"doc,omitempty"`
}

// Format is a schema document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the document format from a file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	}
	return "", false
}

// LoadFile reads and decodes a schema document.
func LoadFile(path string) (*Document, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, errors.Load("unrecognized schema extension "+filepath.Ext(path), nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	Logger().Debug("loading schema document", zap.String("path", path), zap.String("format", string(format)))
	return Decode(data, format)
}

// Decode decodes a schema document. Unknown keys are rejected.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatTOML:
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, errors.Load("decode toml", err)
		}
		// Route through the JSON tags so all formats share one set of keys.
		bridged, err := yaml.Marshal(tree.ToMap())
		if err != nil {
			return nil, errors.Load("decode toml", err)
		}
		if err := yaml.UnmarshalStrict(bridged, &doc); err != nil {
			return nil, errors.Load("decode toml", err)
		}
	case FormatYAML, FormatJSON:
		if err := yaml.UnmarshalStrict(data, &doc); err != nil {
			return nil, errors.Load("decode "+string(format), err)
		}
	default:
		return nil, errors.Unsupported(errors.PhaseLoad, "schema format "+string(format))
	}
	return &doc, nil
}

// Encode renders a document in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		y, err := yaml.Marshal(doc)
		if err != nil {
			return nil, err
		}
		return yaml.YAMLToJSON(y)
	case FormatTOML:
		return toml.Marshal(*doc)
	}
	return nil, errors.Unsupported(errors.PhaseLoad, "schema format "+string(format))
}
