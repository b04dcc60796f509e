package errs

import (
	"errors"
	"testing"
)

func TestIsMatchesWrappedKind(t *testing.T) {
	base := errors.New("connection reset")
	wrapped := New(Transient, "wsconn.read", base)

	if !Is(wrapped, Transient) {
		t.Fatalf("expected wrapped error to match Transient")
	}
	if Is(wrapped, Fatal) {
		t.Fatalf("did not expect wrapped error to match Fatal")
	}
}

func TestUnwrapReturnsCause(t *testing.T) {
	base := errors.New("boom")
	wrapped := New(Consistency, "orderbook.apply", base)

	if !errors.Is(wrapped, base) {
		t.Fatalf("expected errors.Is to unwrap to the base error")
	}
}

func TestIsFalseForPlainError(t *testing.T) {
	if Is(errors.New("plain"), Transient) {
		t.Fatalf("plain error should never match a Kind")
	}
}
