package evloop

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is(t *testing.T) {
	err := newError(Busy, "already running", nil)
	if !IsKind(err, Busy) {
		t.Fatal("expected Busy kind")
	}
	if IsKind(err, InvalidArgument) {
		t.Fatal("did not expect InvalidArgument kind")
	}
}

func TestError_UnwrapChain(t *testing.T) {
	cause := errors.New("underlying")
	err := newError(NoMemory, "allocation failed", cause)
	wrapped := fmt.Errorf("context: %w", err)
	if !IsKind(wrapped, NoMemory) {
		t.Fatal("IsKind should see through fmt.Errorf wrapping")
	}
	if !errors.Is(wrapped, cause) {
		t.Fatal("errors.Is should reach the original cause")
	}
}

func TestError_MessageFormatting(t *testing.T) {
	err := newError(InvalidArgument, "work function is nil", nil)
	if got, want := err.Error(), "evloop: INVALID_ARGUMENT: work function is nil"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestKind_StringUnknown(t *testing.T) {
	var k ErrorKind = 99
	if got := k.String(); got == "" {
		t.Fatal("unknown kind should still stringify to something non-empty")
	}
}

func TestFatalf_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("fatalf should panic")
		}
	}()
	fatalf("boom: %d", 7)
}

func TestCancelledSentinel_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("invoking the cancelled sentinel should panic")
		}
	}()
	cancelledSentinel(&Handle{})
}
