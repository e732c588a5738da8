// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package base holds the small primitives shared by every layer of the
// writer/reader stack: the status/error taxonomy, the saturating position
// arithmetic, and the object lifecycle mixin that every stream object
// embeds.
package base

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is a coarse error classification, analogous to a small slice of
// absl::StatusCode.
type Code int

const (
	// Unknown is used when no more specific code applies, including I/O
	// failures that did not set errno.
	Unknown Code = iota
	// InvalidArgument reports malformed input or a violated precondition
	// surfaced to the caller.
	InvalidArgument
	// FailedPrecondition reports an internal precondition violation, i.e. a
	// programmer error in how a layer was used.
	FailedPrecondition
	// DataLoss reports an unparsable record or a checksum mismatch on read.
	DataLoss
	// ResourceExhausted reports a position limit, arithmetic overflow, or a
	// size limit (e.g. the 2 GiB proto message cap).
	ResourceExhausted
	// Unimplemented reports that a capability is not available on this
	// writer/reader.
	Unimplemented
	// NotFound, PermissionDenied mirror the errno classes a POSIX-backed sink
	// may surface.
	NotFound
	PermissionDenied
)

func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "invalid argument"
	case FailedPrecondition:
		return "failed precondition"
	case DataLoss:
		return "data loss"
	case ResourceExhausted:
		return "resource exhausted"
	case Unimplemented:
		return "unimplemented"
	case NotFound:
		return "not found"
	case PermissionDenied:
		return "permission denied"
	default:
		return "unknown"
	}
}

// Status is a tagged, latchable error: a Code plus a UTF-8 message with an
// optional annotation chain. A nil *Status means healthy/ok.
//
// Status intentionally does not implement the builtin error interface's
// identity semantics (errors.Is/As on Code) beyond what Unwrap gives for
// free; callers compare Code() directly rather than matching sentinel
// errors.
type Status struct {
	code    Code
	message string
	cause   error
}

// New creates a Status with the given code and message.
func New(code Code, message string) *Status {
	return &Status{code: code, message: message}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(code Code, format string, args ...interface{}) *Status {
	return New(code, fmt.Sprintf(format, args...))
}

// FromError wraps a generic error as an Unknown-coded Status. If err is
// already a *Status, it is returned unchanged.
func FromError(err error) *Status {
	if err == nil {
		return nil
	}
	if st, ok := err.(*Status); ok {
		return st
	}
	return &Status{code: Unknown, message: err.Error()}
}

// Code returns the status's error classification.
func (s *Status) Code() Code {
	if s == nil {
		return Unknown
	}
	return s.code
}

// Error implements the error interface.
func (s *Status) Error() string {
	if s == nil {
		return "ok"
	}
	return fmt.Sprintf("%s: %s", s.code, s.message)
}

// Unwrap exposes the underlying cause, if any, for errors.Is/As.
func (s *Status) Unwrap() error {
	if s == nil {
		return nil
	}
	return s.cause
}

// Annotate wraps the status with additional human-readable context,
// preserving the Code, in the same spirit as errors.Wrap.
func (s *Status) Annotate(context string) *Status {
	if s == nil {
		return nil
	}
	wrapped := errors.Wrap(s, context)
	return &Status{code: s.code, message: wrapped.Error(), cause: s}
}

// Annotatef is Annotate with fmt.Sprintf-style formatting.
func (s *Status) Annotatef(format string, args ...interface{}) *Status {
	return s.Annotate(fmt.Sprintf(format, args...))
}
