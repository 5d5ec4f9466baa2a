package report

import "fmt"

// Error codes
const (
	ErrCodeNoUsableSource = "NO_USABLE_SOURCE"
	ErrCodeInvalidSpec    = "INVALID_REPORT_SPEC"
	ErrCodeSourceSkipped  = "SOURCE_SKIPPED"
	ErrCodeWidgetOmitted  = "WIDGET_OMITTED"
	ErrCodeWidgetFailed   = "WIDGET_RENDER_FAILED"
)

// NoUsableSourceError is the only collection-phase error fatal to a report
// request: every declared source failed to yield usable data.
type NoUsableSourceError struct {
	Declared int
}

func (e *NoUsableSourceError) Error() string {
	return fmt.Sprintf("no usable data source: all %d declared source(s) failed", e.Declared)
}

// InvalidSpecError reports a report spec that fails validation before any
// pipeline phase starts.
type InvalidSpecError struct {
	cause error
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid report spec: %s", e.cause)
}

func (e *InvalidSpecError) Unwrap() error {
	return e.cause
}
