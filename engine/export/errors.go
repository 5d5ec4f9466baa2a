package export

import "fmt"

// Error codes
const (
	ErrCodeRenderBackend = "RENDER_BACKEND_ERROR"
	ErrCodeExport        = "EXPORT_FAILED"
	ErrCodeWrite         = "ARTIFACT_WRITE_ERROR"
	ErrCodeAllFailed     = "ALL_EXPORTS_FAILED"
	ErrCodeFallbackUsed  = "SLIDE_FALLBACK_USED"
)

// RenderBackendError reports a PDF rendering backend failure. Fatal to the
// PDF export only; other formats of the same document are unaffected.
type RenderBackendError struct {
	cause error
}

func (e *RenderBackendError) Error() string {
	return fmt.Sprintf("PDF rendering backend failed: %s", e.cause)
}

func (e *RenderBackendError) Unwrap() error {
	return e.cause
}

// WriteError reports a failure writing an artifact to its destination.
type WriteError struct {
	Path  string
	cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write artifact %s: %s", e.Path, e.cause)
}

func (e *WriteError) Unwrap() error {
	return e.cause
}
