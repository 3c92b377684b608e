// Package errors provides structured error types for the tagbridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: field path, Go/native type
// names, and cause chain.
//
// Four Kinds form the boundary taxonomy callers are expected to branch on:
//
//	KindConversion   - a host value cannot map to a boundary type
//	KindAllocation   - a value converts but no native representation can be
//	                   materialized; raised strictly before any engine call
//	KindIO           - native open/save failure
//	KindInvalidState - operation on a closed handle or invalidated wrapper
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLower, errors.KindOverflow).
//		Path("artwork").
//		Detail("payload exceeds guest address space").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidState("tag.title")
//	err := errors.AllocationFailed(errors.PhaseLower, size, 1)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
