package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an error for the API boundary.
type ErrorKind string

const (
	// KindValidation marks bad user input: unsupported file type, oversized
	// upload, malformed process request. Never retried.
	KindValidation ErrorKind = "validation"

	// KindNotFound marks a missing or already-consumed session/result id.
	KindNotFound ErrorKind = "not_found"

	// KindExternal marks a failure of an external collaborator that escaped
	// the degraded-result policy.
	KindExternal ErrorKind = "external"

	// KindFatal marks a startup failure, e.g. missing required credentials.
	KindFatal ErrorKind = "fatal"
)

// Error is a structured application error surfaced to the caller with a
// human-readable message, never a stack trace.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewValidation builds a validation error.
func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound builds a not-found error.
func NewNotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewExternal builds an external-failure error.
func NewExternal(format string, args ...any) *Error {
	return &Error{Kind: KindExternal, Message: fmt.Sprintf(format, args...)}
}

// NewFatal builds a fatal initialization error.
func NewFatal(format string, args ...any) *Error {
	return &Error{Kind: KindFatal, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error chain, defaulting to KindExternal
// for errors that were not produced by this package.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindExternal
}
