package task

import (
	"errors"
	"strings"
	"testing"
)

func TestDomainErrorMatching(t *testing.T) {
	cause := errors.New("root cause")

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"timeout", NewTimeoutError("deadline passed", nil), ErrTimeout},
		{"timeout with cause", NewTimeoutError("deadline passed", cause), ErrTimeout},
		{"frozen", NewFrozenError("task alpha is frozen", nil), ErrFrozen},
		{"finalised", NewFinalisedError("task alpha is finalised", cause), ErrFinalised},
		{"invalid state", newInvalidState("bad %s", "thing"), ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false", tt.err)
			}
		})
	}
}

func TestDomainErrorCauseChain(t *testing.T) {
	cause := errors.New("root cause")
	err := NewFrozenError("task alpha is frozen", cause)

	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() = %q, cause missing", err.Error())
	}
}

func TestDomainErrorMessages(t *testing.T) {
	plain := NewTimeoutError("deadline passed", nil)
	if plain.Error() != "deadline passed" {
		t.Errorf("Error() = %q", plain.Error())
	}

	var frozen *FrozenError
	err := error(NewFrozenError("sealed", nil))
	if !errors.As(err, &frozen) {
		t.Error("errors.As failed for FrozenError")
	}
}
