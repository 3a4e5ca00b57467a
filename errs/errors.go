// Package errs provides the unified error type used across descent.
//
// Every subsystem (hierarchy, planner, generator, runner, …) wraps its
// failures into *errs.Error before returning them to callers. Callers use
// the Is* predicates to distinguish declaration defects from planning
// defects from runtime data faults without string matching.
package errs

import (
	"errors"
	"fmt"
)

// Kind categorises an error. Config, Naming and Plan errors indicate a
// defect in the declared hierarchy and are never retryable. UnknownVariant
// is a data-integrity fault: a stored discriminator value that matches no
// declared entity. Exec wraps failures reported by the database while
// running generated statements.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig         // invalid or inconsistent hierarchy declarations
	KindNaming         // non-invertible or colliding derived names
	KindPlan           // structural invariant violated during planning or emission
	KindUnknownVariant // stored discriminator matches no declared entity
	KindExec           // statement execution failure
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNaming:
		return "naming"
	case KindPlan:
		return "plan"
	case KindUnknownVariant:
		return "unknown_variant"
	case KindExec:
		return "exec"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by descent subsystems.
type Error struct {
	Kind    Kind
	Message string
	Cause   error // underlying error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error with the given kind and formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// IsConfig reports whether err was caused by an invalid or inconsistent
// hierarchy declaration.
func IsConfig(err error) bool { return kindOf(err) == KindConfig }

// IsNaming reports whether err was caused by a non-invertible or colliding
// derived name.
func IsNaming(err error) bool { return kindOf(err) == KindNaming }

// IsPlan reports whether err was caused by a structural invariant violation
// during planning or DDL emission.
func IsPlan(err error) bool { return kindOf(err) == KindPlan }

// IsUnknownVariant reports whether err represents a stored discriminator
// value that matches no declared entity.
func IsUnknownVariant(err error) bool { return kindOf(err) == KindUnknownVariant }

// IsExec reports whether err was reported by the database while executing
// a generated statement.
func IsExec(err error) bool { return kindOf(err) == KindExec }

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
