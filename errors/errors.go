// Package errors defines the error taxonomy shared across cairn. It
// exists so that callers of the chain checker can distinguish classes
// of failure without string matching.
package errors

import "fmt"

// ErrorType provides a coarse category for CairnErrors.
type ErrorType int

const (
	// InternalServer covers failures that indicate a bug in cairn itself.
	InternalServer ErrorType = iota
	// Malformed covers structurally invalid input, such as an empty
	// certificate chain.
	Malformed
	// UnsupportedNameSyntax indicates a SAN entry, subject common name,
	// email address or URI host that failed grammar validation.
	UnsupportedNameSyntax
	// UnsupportedConstraintSyntax indicates a NameConstraints subtree
	// base that failed grammar validation, or an empty directory-name
	// constraint.
	UnsupportedConstraintSyntax
	// SubtreeMinMax indicates a NameConstraints subtree carrying a
	// non-default minimum or maximum field, which is unsupported.
	SubtreeMinMax
	// ExcludedViolation indicates a chain name matched an excluded
	// constraint.
	ExcludedViolation
	// PermittedViolation indicates a chain name whose type had permitted
	// constraints but matched none of them.
	PermittedViolation
	// OutOfResources indicates the chain exceeded the name or constraint
	// count ceilings. Allocation failure and ceiling exhaustion are
	// deliberately not distinguished.
	OutOfResources
)

// String returns a stable camelCase label for the type, suitable for
// use as a metric label value.
func (t ErrorType) String() string {
	switch t {
	case Malformed:
		return "malformed"
	case UnsupportedNameSyntax:
		return "unsupportedNameSyntax"
	case UnsupportedConstraintSyntax:
		return "unsupportedConstraintSyntax"
	case SubtreeMinMax:
		return "subtreeMinMax"
	case ExcludedViolation:
		return "excludedViolation"
	case PermittedViolation:
		return "permittedViolation"
	case OutOfResources:
		return "outOfResources"
	default:
		return "internal"
	}
}

// CairnError represents internal cairn errors.
type CairnError struct {
	Type   ErrorType
	Detail string

	// Depth is the certificate chain depth (0 = leaf) at which the
	// error was detected. It is only meaningful for errors returned by
	// the chain checker.
	Depth int
}

func (ce *CairnError) Error() string {
	return ce.Detail
}

// New is a convenience function for creating a new CairnError.
func New(errType ErrorType, msg string, args ...interface{}) error {
	return &CairnError{
		Type:   errType,
		Detail: fmt.Sprintf(msg, args...),
	}
}

// At annotates err with the certificate chain depth at which it was
// detected. Errors from outside the taxonomy are wrapped as
// InternalServer.
func At(err error, depth int) error {
	cErr, ok := err.(*CairnError)
	if !ok {
		cErr = &CairnError{
			Type:   InternalServer,
			Detail: err.Error(),
		}
	}
	cErr.Depth = depth
	return cErr
}

// Is is a convenience function for testing the internal type of a CairnError.
func Is(err error, errType ErrorType) bool {
	cErr, ok := err.(*CairnError)
	if !ok {
		return false
	}
	return cErr.Type == errType
}

func MalformedError(msg string, args ...interface{}) error {
	return New(Malformed, msg, args...)
}

func NameSyntaxError(msg string, args ...interface{}) error {
	return New(UnsupportedNameSyntax, msg, args...)
}

func ConstraintSyntaxError(msg string, args ...interface{}) error {
	return New(UnsupportedConstraintSyntax, msg, args...)
}

func SubtreeMinMaxError(msg string, args ...interface{}) error {
	return New(SubtreeMinMax, msg, args...)
}

func ExcludedViolationError(msg string, args ...interface{}) error {
	return New(ExcludedViolation, msg, args...)
}

func PermittedViolationError(msg string, args ...interface{}) error {
	return New(PermittedViolation, msg, args...)
}

func OutOfResourcesError(msg string, args ...interface{}) error {
	return New(OutOfResources, msg, args...)
}
