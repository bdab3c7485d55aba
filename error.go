package recall

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINTERNAL  = "internal"
	EINVALID   = "invalid"
	ENOTFOUND  = "not_found"
	EFORBIDDEN = "forbidden"
	EHTTP      = "http"
	ETRANSPORT = "transport"
	EEMPTY     = "empty"
	ENOMATCH   = "no_match"
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract out the code and message.
//
// Status carries the HTTP status for errors classified from a response.
// Err holds the underlying cause, if any, so errors.Is keeps working for
// context cancellation and network errors.
type Error struct {
	Code    string
	Status  int
	Message string
	Err     error
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("recall error: code=%s status=%d message=%s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("recall error: code=%s message=%s", e.Code, e.Message)
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
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}

// ErrorStatus unwraps an application error and returns its HTTP status.
// Returns 0 if the error carries no status.
func ErrorStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError returns an Error with the given code that wraps err.
// The message is the formatted text followed by the cause.
func WrapError(code string, err error, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg += ": " + err.Error()
	}
	return &Error{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}
