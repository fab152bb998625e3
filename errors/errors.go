package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in schema processing the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // reading schema documents
	PhaseParse    Phase = "parse"    // type expressions and annotations
	PhaseResolve  Phase = "resolve"  // name resolution
	PhaseValidate Phase = "validate" // width and offset checks
	PhaseGenerate Phase = "generate" // code emission
	PhaseImport   Phase = "import"   // WIT import
	PhasePack     Phase = "pack"     // dynamic packing
	PhaseUnpack   Phase = "unpack"   // dynamic unpacking
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidStorageWidth Kind = "invalid_storage_width"
	KindOverflow            Kind = "overflow"
	KindMalformedAnnotation Kind = "malformed_annotation"
	KindInvalidType         Kind = "invalid_type"
	KindInvalidEnum         Kind = "invalid_enum"
	KindDuplicate           Kind = "duplicate"
	KindNotFound            Kind = "not_found"
	KindTypeMismatch        Kind = "type_mismatch"
	KindAccess              Kind = "access"
	KindInvalidData         Kind = "invalid_data"
	KindUnsupported         Kind = "unsupported"
)

// Error is the structured error type used throughout bitpack
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Type    string
	Storage string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" || e.Storage != "" {
		b.WriteString(": ")
		if e.Type != "" && e.Storage != "" {
			b.WriteString("type ")
			b.WriteString(e.Type)
			b.WriteString(", storage ")
			b.WriteString(e.Storage)
		} else if e.Type != "" {
			b.WriteString("type ")
			b.WriteString(e.Type)
		} else {
			b.WriteString("storage ")
			b.WriteString(e.Storage)
		}
	}

	if e.Detail != "" {
		if e.Type != "" || e.Storage != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target with an empty
// Phase matches any phase.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return (t.Phase == "" || e.Phase == t.Phase) && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the schema path (record, field, ...)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the logical type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Storage sets the storage type name
func (b *Builder) Storage(s string) *Builder {
	b.err.Storage = s
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the static error taxonomy

// InvalidStorageWidth creates an error for a storage or enum width outside the
// supported range
func InvalidStorageWidth(path []string, storage string, detail string) *Error {
	return &Error{
		Phase:   PhaseValidate,
		Kind:    KindInvalidStorageWidth,
		Path:    path,
		Storage: storage,
		Detail:  detail,
	}
}

// Overflow creates an error for bits that do not fit their storage
func Overflow(path []string, typ, storage string, bits, width uint) *Error {
	return &Error{
		Phase:   PhaseValidate,
		Kind:    KindOverflow,
		Path:    path,
		Type:    typ,
		Storage: storage,
		Detail:  fmt.Sprintf("requires %d bits, storage holds %d", bits, width),
		Value:   bits,
	}
}

// MalformedAnnotation creates an annotation syntax or consistency error
func MalformedAnnotation(path []string, annotation string, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindMalformedAnnotation,
		Path:   path,
		Detail: detail,
		Value:  annotation,
	}
}

// InvalidType creates an error for a type that has no bit width
func InvalidType(phase Phase, path []string, typ string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidType,
		Path:   path,
		Type:   typ,
		Detail: detail,
	}
}

// InvalidEnum creates an error for an inconsistent enumeration
func InvalidEnum(path []string, enumType string, detail string) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInvalidEnum,
		Path:   path,
		Type:   enumType,
		Detail: detail,
	}
}

// Duplicate creates an error for a name declared twice
func Duplicate(phase Phase, path []string, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Path:   path,
		Detail: fmt.Sprintf("duplicate %s %q", what, name),
		Value:  name,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
		Value:  name,
	}
}

// TypeMismatch creates an error for a dynamic value that does not match its type
func TypeMismatch(phase Phase, path []string, typ string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Type:   typ,
		Detail: fmt.Sprintf("cannot use %T", value),
		Value:  value,
	}
}

// Access creates an error for reading a write-only or writing a read-only field
func Access(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAccess,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a schema loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// List collects every error found while processing a schema document so a
// single run reports all of them
type List struct {
	Errors []*Error
}

// Add appends err if it is non-nil. Nested lists are flattened.
func (l *List) Add(err error) {
	if err == nil {
		return
	}
	switch e := err.(type) {
	case *Error:
		l.Errors = append(l.Errors, e)
	case *List:
		l.Errors = append(l.Errors, e.Errors...)
	default:
		l.Errors = append(l.Errors, Wrap(PhaseValidate, KindInvalidData, err, ""))
	}
}

// Err returns nil for an empty list and the list itself otherwise
func (l *List) Err() error {
	if len(l.Errors) == 0 {
		return nil
	}
	return l
}

func (l *List) Error() string {
	if len(l.Errors) == 0 {
		return "no errors"
	}
	if len(l.Errors) == 1 {
		return l.Errors[0].Error()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d schema errors:\n", len(l.Errors)))

	// Group by top-level declaration for cleaner output
	byDecl := make(map[string][]*Error)
	var order []string
	for _, e := range l.Errors {
		decl := ""
		if len(e.Path) > 0 {
			decl = e.Path[0]
		}
		if _, exists := byDecl[decl]; !exists {
			order = append(order, decl)
		}
		byDecl[decl] = append(byDecl[decl], e)
	}

	for _, decl := range order {
		b.WriteString("\n  ")
		if decl == "" {
			b.WriteString("(document)")
		} else {
			b.WriteString(decl)
		}
		b.WriteString(":\n")
		for _, e := range byDecl[decl] {
			b.WriteString("    - ")
			b.WriteString(e.Error())
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (l *List) Unwrap() []error {
	out := make([]error, len(l.Errors))
	for i, e := range l.Errors {
		out[i] = e
	}
	return out
}
