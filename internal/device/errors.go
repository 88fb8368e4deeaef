package device

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotAttached       = "NOT_ATTACHED"
	ErrCodeDetached          = "DETACHED"
	ErrCodeResourceExhausted = "RESOURCE_EXHAUSTED"
	ErrCodeInvalidPin        = "INVALID_PIN"
	ErrCodeIO                = "IO_ERROR"
)

// Error is a device-level failure surfaced to the caller of a channel.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Code returns the device error code carried by err, or "" if none.
func Code(err error) string {
	var devErr *Error
	if errors.As(err, &devErr) {
		return devErr.Code
	}
	return ""
}
