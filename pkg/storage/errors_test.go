package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
)

// timeoutError mimics what net returns on a deadline
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

// TestClassify tests the error taxonomy
func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"NotExist", os.ErrNotExist, KindNotFound},
		{"WrappedNotExist", fmt.Errorf("stat: %w", os.ErrNotExist), KindNotFound},
		{"Permission", os.ErrPermission, KindPermission},
		{"DeadlineExceeded", context.DeadlineExceeded, KindConnectivity},
		{"UnexpectedEOF", io.ErrUnexpectedEOF, KindConnectivity},
		{"ConnReset", syscall.ECONNRESET, KindConnectivity},
		{"ConnRefused", syscall.ECONNREFUSED, KindConnectivity},
		{"HostUnreachable", syscall.EHOSTUNREACH, KindConnectivity},
		{"NetError", timeoutError{}, KindConnectivity},
		{"OpError", &net.OpError{Op: "dial", Err: errors.New("refused")}, KindConnectivity},
		{"Plain", errors.New("something else"), KindOther},
		{"Nil", nil, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestWrap tests error wrapping and classification
func TestWrap(t *testing.T) {
	t.Run("ClassifiesRawError", func(t *testing.T) {
		err := wrap("stat", "a.pdf", os.ErrNotExist)
		if !IsNotFound(err) {
			t.Errorf("wrap() should classify as not found, got kind %v", KindOf(err))
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Error("wrap() should preserve the cause")
		}
	})

	t.Run("DoesNotDoubleWrap", func(t *testing.T) {
		inner := NewError(KindConnectivity, "dial", "host:445", syscall.ECONNREFUSED)
		err := wrap("list", "a.pdf", inner)
		if err != inner {
			t.Error("wrap() should return an already classified error unchanged")
		}
	})

	t.Run("NilStaysNil", func(t *testing.T) {
		if err := wrap("stat", "a.pdf", nil); err != nil {
			t.Errorf("wrap(nil) = %v, want nil", err)
		}
	})
}

// TestTransient tests the retry gate
func TestTransient(t *testing.T) {
	if !Transient(NewError(KindConnectivity, "dial", "", syscall.ETIMEDOUT)) {
		t.Error("connectivity errors should be transient")
	}
	if Transient(NewError(KindPermission, "open", "a.pdf", os.ErrPermission)) {
		t.Error("permission errors should not be transient")
	}
	if Transient(NewError(KindNotFound, "stat", "a.pdf", os.ErrNotExist)) {
		t.Error("not-found errors should not be transient")
	}
	if Transient(errors.New("unclassified")) {
		t.Error("unclassified errors should not be transient")
	}
}

// TestErrorMessage tests the error string format
func TestErrorMessage(t *testing.T) {
	withPath := NewError(KindNotFound, "stat", "docs/a.pdf", os.ErrNotExist)
	if got := withPath.Error(); got != "stat docs/a.pdf: file does not exist" {
		t.Errorf("Error() = %q", got)
	}

	withoutPath := NewError(KindConnectivity, "echo", "", context.DeadlineExceeded)
	if got := withoutPath.Error(); got != "echo: context deadline exceeded" {
		t.Errorf("Error() = %q", got)
	}
}
