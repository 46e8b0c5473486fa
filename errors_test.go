package bquery

import (
	"fmt"
	"testing"
)

func TestKeyMismatchError(t *testing.T) {
	err := &KeyMismatchError{Store: "acc", Want: []byte{0x01, 0xab}, Got: []byte{0x01, 0xcd}}
	expected := "store acc: response key 01CD doesn't match query key 01AB"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestResultSetTooLargeError(t *testing.T) {
	err := &ResultSetTooLargeError{Total: 250, Limit: 100}
	expected := "found more results on the backend than we can process currently. Results: 250, supported: 100"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestQueryError(t *testing.T) {
	err := &QueryError{Path: "/store/bank/key", Code: 7, Log: "store not found"}
	expected := "query /store/bank/key failed with (7): store not found"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestIsKeyMismatch(t *testing.T) {
	mismatch := &KeyMismatchError{Store: "bank"}

	// Direct.
	e, ok := IsKeyMismatch(mismatch)
	if !ok {
		t.Fatal("expected IsKeyMismatch to return true")
	}
	if e.Store != "bank" {
		t.Errorf("expected store bank, got %s", e.Store)
	}

	// Wrapped.
	wrapped := fmt.Errorf("get balance: %w", mismatch)
	e2, ok2 := IsKeyMismatch(wrapped)
	if !ok2 {
		t.Fatal("expected IsKeyMismatch to unwrap wrapped error")
	}
	if e2 != mismatch {
		t.Error("expected the original error back")
	}

	// Other error.
	if _, ok3 := IsKeyMismatch(&QueryError{Code: 1}); ok3 {
		t.Fatal("expected IsKeyMismatch to return false for a QueryError")
	}

	// Nil.
	if _, ok4 := IsKeyMismatch(nil); ok4 {
		t.Fatal("expected IsKeyMismatch to return false for nil")
	}
}

func TestFormatErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("strconv: bad digit")
	err := fmt.Errorf("search: %w", &FormatError{Field: "height", Value: "12a", Err: inner})

	fe, ok := IsFormatError(err)
	if !ok {
		t.Fatal("expected IsFormatError to return true")
	}
	if fe.Field != "height" || fe.Value != "12a" {
		t.Errorf("unexpected fields: %+v", fe)
	}
	if fe.Unwrap() != inner {
		t.Error("expected Unwrap to return the parse error")
	}
}

func TestErrorHelpersDiscriminate(t *testing.T) {
	errs := []error{
		&InvalidAddressError{Address: "x", Reason: "checksum"},
		&QueryError{Path: "/p"},
		&KeyMismatchError{},
		&ResultSetTooLargeError{},
		&AccountNotFoundError{Address: "x"},
		&FormatError{Field: "hash"},
		&UnsupportedTypeError{TypeURL: "/x"},
		&ProofError{Store: "acc"},
	}
	checks := []func(error) bool{
		func(err error) bool { _, ok := IsInvalidAddress(err); return ok },
		func(err error) bool { _, ok := IsQueryError(err); return ok },
		func(err error) bool { _, ok := IsKeyMismatch(err); return ok },
		func(err error) bool { _, ok := IsResultSetTooLarge(err); return ok },
		func(err error) bool { _, ok := IsAccountNotFound(err); return ok },
		func(err error) bool { _, ok := IsFormatError(err); return ok },
		func(err error) bool { _, ok := IsUnsupportedType(err); return ok },
		func(err error) bool { _, ok := IsProofError(err); return ok },
	}
	for i, err := range errs {
		for j, check := range checks {
			if got := check(err); got != (i == j) {
				t.Errorf("error %T: check %d returned %v", err, j, got)
			}
		}
	}
}
