// Package errors provides error handling for the caps engine.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing diagnostics
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := register(); err != nil {
//	    return errors.Wrap(err, "failed to register capability")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrDuplicateCapability) {
//	    // handle duplicate declaration
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the engine's build-time failure taxonomy.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrDuplicateCapability indicates the same capability identity was
	// registered twice (equal canonical key, not merely a digest collision).
	ErrDuplicateCapability = New("duplicate capability")

	// ErrUnknownCapability indicates a query or guard references a
	// capability name that was never registered.
	ErrUnknownCapability = New("unknown capability reference")

	// ErrNoMatch indicates specialization resolution found no variant
	// whose guard is satisfied.
	ErrNoMatch = New("no matching specialization")

	// ErrAmbiguousMatch indicates two or more variants tied on both
	// specificity tier and bound count.
	ErrAmbiguousMatch = New("ambiguous specialization")

	// ErrRegistryFrozen indicates a registration was attempted after the
	// build phase ended.
	ErrRegistryFrozen = New("capability registry is frozen")
)

// IsDuplicateCapability checks if an error is or wraps ErrDuplicateCapability.
func IsDuplicateCapability(err error) bool {
	return err != nil && Is(err, ErrDuplicateCapability)
}

// IsUnknownCapability checks if an error is or wraps ErrUnknownCapability.
func IsUnknownCapability(err error) bool {
	return err != nil && Is(err, ErrUnknownCapability)
}

// IsNoMatch checks if an error is or wraps ErrNoMatch.
func IsNoMatch(err error) bool {
	return err != nil && Is(err, ErrNoMatch)
}

// IsAmbiguousMatch checks if an error is or wraps ErrAmbiguousMatch.
func IsAmbiguousMatch(err error) bool {
	return err != nil && Is(err, ErrAmbiguousMatch)
}

// NewDuplicateCapability creates a duplicate-capability error with a
// formatted message.
func NewDuplicateCapability(format string, args ...interface{}) error {
	return Wrap(ErrDuplicateCapability, Newf(format, args...).Error())
}

// NewUnknownCapability creates an unknown-reference error with a
// formatted message.
func NewUnknownCapability(format string, args ...interface{}) error {
	return Wrap(ErrUnknownCapability, Newf(format, args...).Error())
}
