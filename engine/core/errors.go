package core

import "fmt"

// Error is the structured error type shared across the pipeline. Code carries
// a stable machine-readable identifier, Details optional context values.
type Error struct {
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates a structured error wrapping an optional cause.
func NewError(cause error, code, message string, details map[string]any) *Error {
	return &Error{
		Message: message,
		Code:    code,
		Details: details,
		cause:   cause,
	}
}

// NewErrorf creates a structured error with a formatted message.
func NewErrorf(code, format string, args ...any) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}
