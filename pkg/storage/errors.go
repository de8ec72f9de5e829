package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

// Kind classifies a storage failure so callers can decide how to react.
// Connectivity failures are transient and worth retrying; the rest are
// terminal for the operation that hit them.
type Kind string

const (
	// KindConnectivity covers timeouts, resets and unreachable hosts
	KindConnectivity Kind = "connectivity"
	// KindPermission covers access-denied failures
	KindPermission Kind = "permission"
	// KindNotFound covers missing files and paths
	KindNotFound Kind = "not_found"
	// KindUnsupported covers operations the backend cannot perform
	KindUnsupported Kind = "unsupported"
	// KindOther covers everything else
	KindOther Kind = "other"
)

// Error wraps a backend failure with its classification and the path
// that triggered it
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified storage error
func NewError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the classification of err, or KindOther when err does
// not carry one
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindOther
}

// Transient reports whether err is a connectivity failure worth retrying
func Transient(err error) bool {
	return KindOf(err) == KindConnectivity
}

// IsNotFound reports whether err indicates a missing file
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// Classify maps a raw backend error to its Kind. SMB and local
// filesystem errors both funnel through here so the two backends
// surface the same taxonomy.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, os.ErrNotExist):
		return KindNotFound
	case errors.Is(err, os.ErrPermission):
		return KindPermission
	case errors.Is(err, context.DeadlineExceeded):
		return KindConnectivity
	case errors.Is(err, io.ErrUnexpectedEOF):
		return KindConnectivity
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ETIMEDOUT),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return KindConnectivity
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return KindConnectivity
	}

	var oe *net.OpError
	if errors.As(err, &oe) {
		return KindConnectivity
	}

	return KindOther
}

// wrap classifies err and wraps it unless it is already classified
func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return NewError(Classify(err), op, path, err)
}
