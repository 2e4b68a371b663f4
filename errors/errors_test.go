package errors

import (
	"errors"
	"testing"
)

func TestNewCarriesTypeAndDetail(t *testing.T) {
	err := New(ExcludedViolation, "name %q is excluded", "www.example.com")
	if err.Error() != `name "www.example.com" is excluded` {
		t.Errorf("unexpected detail: %q", err.Error())
	}
	if !Is(err, ExcludedViolation) {
		t.Error("expected Is to match ExcludedViolation")
	}
	if Is(err, PermittedViolation) {
		t.Error("Is matched the wrong type")
	}
}

func TestAt(t *testing.T) {
	err := At(ExcludedViolationError("excluded"), 2)
	cErr, ok := err.(*CairnError)
	if !ok {
		t.Fatalf("At returned %T", err)
	}
	if cErr.Depth != 2 || cErr.Type != ExcludedViolation {
		t.Errorf("At = type %d depth %d", cErr.Type, cErr.Depth)
	}

	foreign := At(errors.New("boom"), 1)
	if !Is(foreign, InternalServer) {
		t.Error("foreign errors should wrap as InternalServer")
	}
	if foreign.Error() != "boom" || foreign.(*CairnError).Depth != 1 {
		t.Errorf("unexpected wrapped error: %v", foreign)
	}
}

func TestErrorTypeString(t *testing.T) {
	if ExcludedViolation.String() != "excludedViolation" {
		t.Errorf("unexpected label: %q", ExcludedViolation.String())
	}
	if ErrorType(42).String() != "internal" {
		t.Errorf("unexpected label for unknown type: %q", ErrorType(42).String())
	}
}

func TestIsRejectsForeignErrors(t *testing.T) {
	if Is(errors.New("nope"), Malformed) {
		t.Error("Is matched a non-CairnError")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	cases := []struct {
		err      error
		expected ErrorType
	}{
		{MalformedError("a"), Malformed},
		{NameSyntaxError("b"), UnsupportedNameSyntax},
		{ConstraintSyntaxError("c"), UnsupportedConstraintSyntax},
		{SubtreeMinMaxError("d"), SubtreeMinMax},
		{ExcludedViolationError("e"), ExcludedViolation},
		{PermittedViolationError("f"), PermittedViolation},
		{OutOfResourcesError("g"), OutOfResources},
	}
	for _, tc := range cases {
		if !Is(tc.err, tc.expected) {
			t.Errorf("%q: wrong error type", tc.err.Error())
		}
	}
}
