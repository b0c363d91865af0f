package models

import (
	"errors"
	"fmt"
)

// Repository sentinels. Services translate these into an *Error with a kind.
var (
	ErrNoRecord   = errors.New("no matching record")
	ErrDuplicate  = errors.New("duplicate record")
	ErrStaleWrite = errors.New("record changed concurrently")
)

type ErrorKind string

const (
	KindUnauthorized       ErrorKind = "unauthorized"
	KindNotFound           ErrorKind = "not_found"
	KindForbidden          ErrorKind = "forbidden"
	KindInvalidInput       ErrorKind = "invalid_input"
	KindInvalidTransition  ErrorKind = "invalid_transition"
	KindPreconditionFailed ErrorKind = "precondition_failed"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
)

// Error is a domain failure with a stable kind and a message safe to show callers.
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

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func InvalidInput(msg string) error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func InvalidTransition(msg string) error {
	return &Error{Kind: KindInvalidTransition, Message: msg}
}

func PreconditionFailed(msg string) error {
	return &Error{Kind: KindPreconditionFailed, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err. Anything that is not an *Error is internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
