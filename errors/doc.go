// Package errors provides structured error types for bitpack.
//
// Every schema failure is static: it is reported while a schema is loaded,
// resolved, validated or generated, never while a packed value is read or
// written. Errors are categorized by Phase (where the error occurred) and Kind
// (error category). The Error type carries the schema path, the offending
// logical type and the storage type.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindOverflow).
//		Path("Control", "mode").
//		Type("u9").
//		Storage("u8").
//		Detail("requires %d bits, storage holds %d", 9, 8).
//		Build()
//
// Or use convenience constructors for the common cases:
//
//	err := errors.Overflow(path, "u9", "u8", 9, 8)
//	err := errors.MalformedAnnotation(path, "stride := 0", "stride must be positive")
//
// All errors implement the standard error interface and support errors.Is/As.
// A List aggregates the errors of a whole document.
package errors
