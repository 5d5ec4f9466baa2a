package source

import (
	"fmt"
)

// Error codes
const (
	ErrCodeRead          = "SOURCE_READ_ERROR"
	ErrCodeFormat        = "SOURCE_FORMAT_ERROR"
	ErrCodeUnsupported   = "UNSUPPORTED_SOURCE_KIND"
	ErrCodeEmptySource   = "EMPTY_SOURCE"
	ErrCodeMissingHeader = "MISSING_HEADER_ROW"
)

// ReadError reports an I/O or parse failure while reading one source.
// It is non-fatal to a report run: the source is skipped and recorded.
type ReadError struct {
	Source  string
	Code    string
	Message string
	cause   error
}

func (e *ReadError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("source %q: %s: %s", e.Source, e.Message, e.cause)
	}
	return fmt.Sprintf("source %q: %s", e.Source, e.Message)
}

func (e *ReadError) Unwrap() error {
	return e.cause
}

// FormatError reports a malformed source structure, naming the source and the
// shape that was expected.
type FormatError struct {
	Source   string
	Expected string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("source %q is malformed: expected %s", e.Source, e.Expected)
}

func newReadError(cause error, source, code, message string) *ReadError {
	return &ReadError{Source: source, Code: code, Message: message, cause: cause}
}
