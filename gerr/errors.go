// Package gerr defines the typed error taxonomy the storage engine uses
// to report failures, and a Fatal check that reports whether an error is
// anything other than a plain NotFound lookup miss.
package gerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an engine error. Every Kind but NotFound is fatal: the
// caller is expected to treat the engine as crash-stop.
type Kind int

const (
	// ArgumentError marks bad caller input: nil records, unknown ids,
	// out-of-range page numbers, an inconsistent direction filter.
	ArgumentError Kind = iota
	// IoError marks a disk read/write/seek/truncate failure.
	IoError
	// CapacityError marks an eviction scan that found every frame pinned.
	CapacityError
	// InvariantViolation marks corruption of the record/incidence model:
	// delete_node on a node with degree > 0, unpin below zero, and so on.
	InvariantViolation
	// NotFound is not fatal: a lookup came back empty.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case ArgumentError:
		return "ArgumentError"
	case IoError:
		return "IoError"
	case CapacityError:
		return "CapacityError"
	case InvariantViolation:
		return "InvariantViolation"
	case NotFound:
		return "NotFound"
	default:
		return "UnknownError"
	}
}

// Error is the engine's single error type. Kind lets callers distinguish
// a NotFound (non-fatal) from everything else (fatal) without parsing
// strings.
type Error struct {
	Kind Kind
	msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err carries the given Kind.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// New builds a Kind-tagged error with a plain message.
func New(k Kind, msg string) error {
	return &Error{Kind: k, msg: msg}
}

// Newf builds a Kind-tagged error with a formatted message.
func Newf(k Kind, format string, args ...any) error {
	return &Error{Kind: k, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind and message to an underlying error, preserving it
// for Unwrap/errors.Is/errors.As chains via pkg/errors.
func Wrap(k Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, msg: msg, Err: errors.WithStack(err)}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(k Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, msg: fmt.Sprintf(format, args...), Err: errors.WithStack(err)}
}

// IsNotFound is a convenience check for the one non-fatal Kind.
func IsNotFound(err error) bool { return Is(err, NotFound) }

// Fatal reports whether err (if non-nil) should terminate the process
// per spec.md §7's propagation policy: everything but NotFound is fatal.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return !IsNotFound(err)
}
