package widget

import "fmt"

// Error codes
const (
	ErrCodeDuplicateWidget = "DUPLICATE_WIDGET"
	ErrCodeUnknownWidget   = "UNKNOWN_WIDGET"
	ErrCodeRender          = "WIDGET_RENDER_ERROR"
)

// DuplicateWidgetError reports a second registration under an identifier that
// already exists. A registry never silently overwrites: this is fatal at
// startup.
type DuplicateWidgetError struct {
	ID string
}

func (e *DuplicateWidgetError) Error() string {
	return fmt.Sprintf("widget %q is already registered", e.ID)
}

// UnknownWidgetError reports a lookup for an identifier that was never
// registered. Callers catch it with errors.As and skip the widget.
type UnknownWidgetError struct {
	ID string
}

func (e *UnknownWidgetError) Error() string {
	return fmt.Sprintf("widget %q is not registered", e.ID)
}

// RenderError wraps a renderer failure for one widget. Non-fatal: the engine
// degrades the widget to an error block.
type RenderError struct {
	ID    string
	cause error
}

// NewRenderError wraps a renderer failure.
func NewRenderError(id string, cause error) *RenderError {
	return &RenderError{ID: id, cause: cause}
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("widget %q failed to render: %s", e.ID, e.cause)
}

func (e *RenderError) Unwrap() error {
	return e.cause
}
