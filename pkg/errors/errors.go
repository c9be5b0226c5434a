// Package errors defines AppError, the structured error carried across all
// PolicyLens layers, plus the helpers that map codes to HTTP statuses and
// metric labels.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// AppError pairs a typed code with a human-readable message.  It supports
// standard errors.Is / errors.As / errors.Unwrap traversal through Cause.
type AppError struct {
	Code    ErrorCode
	Message string

	// Detail holds extra context for operators (entity IDs, field names).
	// API responses include it; user-facing summaries should not.
	Detail string

	// Cause is the wrapped lower-level error, if any.
	Cause error

	// Stack is a formatted trace captured at construction.  Error() omits
	// it; logging reads the field directly.
	Stack string
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithDetail returns a copy with Detail set.  The receiver is not mutated.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	c := *e
	c.Detail = detail
	return &c
}

// newAppError is the shared constructor behind all factories.  skip counts
// the factory frames to exclude from the captured stack.
func newAppError(skip int, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Stack: trace(skip + 1)}
}

// New returns an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return newAppError(1, code, message)
}

// Newf is New with Sprintf-style formatting.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return newAppError(1, code, fmt.Sprintf(format, args...))
}

// Wrap returns an AppError whose Cause is err.  A nil err yields nil, so the
// result of a repository call can be wrapped unconditionally.  Wrapping with
// CodeUnknown keeps the code of an inner AppError instead of erasing it.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	var inner *AppError
	if code == CodeUnknown && errors.As(err, &inner) {
		code = inner.Code
	}
	ae := newAppError(1, code, message)
	ae.Cause = err
	return ae
}

// NotFound returns a generic ErrCodeNotFound error.  Repositories should use
// the DOC_/CMP_ specific codes instead.
func NotFound(message string) *AppError {
	return newAppError(1, ErrCodeNotFound, message)
}

// Internal returns an ErrCodeInternal error for unexpected server failures.
func Internal(message string) *AppError {
	return newAppError(1, ErrCodeInternal, message)
}

// NewValidationError returns an ErrCodeValidation error naming the offending
// field in Detail.
func NewValidationError(field, message string) *AppError {
	ae := newAppError(1, ErrCodeValidation, message)
	ae.Detail = "field=" + field
	return ae
}

// IsCode reports whether err's chain contains an AppError with code.
func IsCode(err error, code ErrorCode) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		var ae *AppError
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err's chain contains any of the not-found codes.
func IsNotFound(err error) bool {
	return IsCode(err, ErrCodeNotFound) ||
		IsCode(err, ErrCodeDocumentNotFound) ||
		IsCode(err, ErrCodeComparisonNotFound)
}

// GetCode returns the code of the outermost AppError in err's chain,
// CodeUnknown for foreign errors, and CodeOK for nil.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

const maxTraceFrames = 32

// trace formats the caller stack, skipping runtime frames.
func trace(skip int) string {
	pcs := make([]uintptr, maxTraceFrames)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for more := true; more; {
		var fr runtime.Frame
		fr, more = frames.Next()
		if strings.Contains(fr.File, "runtime/") {
			continue
		}
		fmt.Fprintf(&b, "\n\t%s:%d %s", fr.File, fr.Line, fr.Function)
	}
	return b.String()
}
