package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"not found", ErrNotFound},
		{"permission denied", ErrPermissionDenied},
		{"invalid state", ErrInvalidState},
		{"insufficient funds", ErrInsufficientFunds},
		{"conflict", ErrConflict},
		{"already exists", ErrAlreadyExists},
		{"invalid credentials", ErrInvalidCredentials},
		{"invalid input", ErrInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := New(tc.err, "order %d", 7)
			if !stdErrors.Is(wrapped, tc.err) {
				t.Fatalf("expected wrapped error to match kind: %v", wrapped)
			}
			if Kind(fmt.Errorf("outer: %w", wrapped)) != tc.err {
				t.Fatalf("unexpected kind for %v", wrapped)
			}
		})
	}
}

func TestErrorMessageAndReason(t *testing.T) {
	err := New(ErrInvalidState, "order is %s", "CANCELLED")
	if err.Error() != "invalid state: order is CANCELLED" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if Reason(fmt.Errorf("wrap: %w", err)) != "order is CANCELLED" {
		t.Fatalf("unexpected reason %q", Reason(err))
	}
	if Reason(ErrNotFound) != "not found" {
		t.Fatalf("expected sentinel message as reason")
	}
	if Reason(nil) != "" {
		t.Fatal("expected empty reason for nil")
	}
	bare := &Error{Kind: ErrConflict}
	if bare.Error() != "conflict" {
		t.Fatalf("unexpected bare message %q", bare.Error())
	}
	if Kind(stdErrors.New("other")) != nil {
		t.Fatal("expected nil kind for unclassified error")
	}
}
