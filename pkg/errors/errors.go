// Package errors provides the error taxonomy shared by the bus, the order
// book, the cache and the actor runtime: a small set of error codes with an
// attached severity, so callers (including external adapters) can branch on
// error kind without string matching.
package errors

import (
	"fmt"
	"runtime"
	"time"
)

// ErrorCode identifies the kind of failure, per the error handling design.
type ErrorCode string

const (
	// InvalidInput: malformed external input; reported to caller, not fatal.
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// NotFound / Duplicate: cache and bus lookup/insert conflicts.
	ErrNotFound  ErrorCode = "NOT_FOUND"
	ErrDuplicate ErrorCode = "DUPLICATE"

	// BookCrossed / BookIntegrity: order book detected a violation.
	ErrBookCrossed   ErrorCode = "BOOK_CROSSED"
	ErrBookIntegrity ErrorCode = "BOOK_INTEGRITY"

	// Timeout / Disconnected: I/O, retried per backoff policy.
	ErrTimeout      ErrorCode = "TIMEOUT"
	ErrDisconnected ErrorCode = "DISCONNECTED"

	// ProtocolError: adapter decode failure; message dropped, counter incremented.
	ErrProtocolError ErrorCode = "PROTOCOL_ERROR"

	// Fatal: invariant breach; propagated to the runner which stops the loop.
	ErrFatal ErrorCode = "FATAL"

	// NoHandler: message bus endpoint has no registered handler.
	ErrNoHandler ErrorCode = "NO_HANDLER"

	// AlreadyRegistered: message bus endpoint already has a handler.
	ErrAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
)

// Severity represents the severity level of an error.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error is a structured error carrying a code, severity and call-site info.
type Error struct {
	Code      ErrorCode
	Message   string
	Severity  Severity
	Timestamp time.Time
	File      string
	Line      int
	Function  string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (caused by: %v)", e.Code, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with the default severity for code.
func New(code ErrorCode, message string) *Error {
	return newError(code, message, nil, 2)
}

// Newf creates an Error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return newError(code, fmt.Sprintf(format, args...), nil, 2)
}

// Wrap attaches code/message to an existing error as its cause.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return newError(code, message, err, 2)
}

func newError(code ErrorCode, message string, cause error, skip int) *Error {
	pc, file, line, _ := runtime.Caller(skip)
	var funcName string
	if fn := runtime.FuncForPC(pc); fn != nil {
		funcName = fn.Name()
	}
	return &Error{
		Code:      code,
		Message:   message,
		Severity:  severityForCode(code),
		Timestamp: time.Now(),
		File:      file,
		Line:      line,
		Function:  funcName,
		Cause:     cause,
	}
}

// Is reports whether err carries the given error code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// As walks err's Unwrap chain looking for an *Error.
func As(err error, target *(*Error)) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// Code extracts the ErrorCode from err, or "" if err is not an *Error.
func Code(err error) ErrorCode {
	var e *Error
	if As(err, &e) {
		return e.Code
	}
	return ""
}

// Retryable reports whether an error's code is covered by the I/O retry
// policy (§7): transport-level failures, not domain integrity violations.
func Retryable(err error) bool {
	switch Code(err) {
	case ErrTimeout, ErrDisconnected:
		return true
	default:
		return false
	}
}

// IsFatal reports whether err must propagate to the runner and stop the loop.
func IsFatal(err error) bool {
	return Code(err) == ErrFatal
}

func severityForCode(code ErrorCode) Severity {
	switch code {
	case ErrFatal, ErrBookIntegrity:
		return SeverityCritical
	case ErrBookCrossed, ErrDisconnected:
		return SeverityHigh
	case ErrTimeout, ErrProtocolError, ErrNotFound, ErrDuplicate, ErrNoHandler, ErrAlreadyRegistered:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
