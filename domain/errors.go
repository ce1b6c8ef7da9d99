package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures raised by the business layer.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "NOT_FOUND"
	KindInvariant   ErrorKind = "INVARIANT"
	KindValidation  ErrorKind = "VALIDATION"
	KindConflict    ErrorKind = "CONFLICT"
	KindUnavailable ErrorKind = "UNAVAILABLE"
)

// Error is a typed business failure. Kind decides how callers react,
// Message is safe to show to API clients.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the bare sentinel of the same kind,
// so errors.Is(err, domain.ErrNotFound) matches every not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// ErrInvalidCredentials is returned by login for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

var (
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrInvariant   = &Error{Kind: KindInvariant}
	ErrValidation  = &Error{Kind: KindValidation}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrUnavailable = &Error{Kind: KindUnavailable}
)

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Invariantf(format string, args ...any) error {
	return &Error{Kind: KindInvariant, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a storage error that the caller may retry.
func Unavailable(err error, message string) error {
	return &Error{Kind: KindUnavailable, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" for untyped errors.
func KindOf(err error) ErrorKind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return ""
}

// MessageOf returns the client-facing message of a typed error.
func MessageOf(err error) string {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Message
	}
	return ""
}
