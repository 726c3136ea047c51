package doccache

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meant to be a coarse-grained classification that both callers
// and transport adapters can branch on. The storage and network layers map
// their underlying failures onto these codes before surfacing them.
const (
	ECONFLICT  = "conflict"   // conflicting state change
	EINTERNAL  = "internal"   // storage or other internal failure
	EINVALID   = "invalid"    // validation failed
	ENETWORK   = "network"    // network failure, timeout, HTTP error status
	ENOTFOUND  = "not_found"  // document, version or file not found
	ERATELIMIT = "rate_limit" // client or upstream provider rate limit
	ETOOLARGE  = "too_large"  // content exceeds a configured size bound
)

// Error represents an application-specific error. Errors can be unwrapped
// to find the original cause.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable message.
	Message string

	// Underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("doccache error: code=%s message=%s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("doccache error: code=%s message=%s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError returns an Error with the given code and message that wraps err.
func WrapError(err error, code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
