package widget

import (
	"context"

	"github.com/arloai/reporting/engine/core"
	"github.com/arloai/reporting/engine/metrics"
)

// Category groups renderers by visualization shape. New categories are added
// without touching the registry or the report engine.
type Category string

const (
	CategoryKPIGrid    Category = "kpi_grid"
	CategoryTimeSeries Category = "time_series"
	CategoryTable      Category = "table"
	CategoryComparison Category = "comparison"
	CategoryMeter      Category = "meter"
)

// Renderer turns normalized data into one rendered block. Implementations
// must not substitute placeholder output on their own: requirement checks
// happen before invocation and placeholder decisions belong to the caller.
type Renderer interface {
	Render(ctx context.Context, ds *metrics.NormalizedDataset, desc *Descriptor) (*Block, error)
}

// Descriptor declares a widget: identifier, label, category, the metric
// fields it cannot render without, and the renderer that produces it.
// Descriptors are registered once at process start and immutable afterward.
type Descriptor struct {
	ID       string
	Label    string
	Category Category
	Required []metrics.Metric
	Renderer Renderer
}

// Block is one rendered widget in a report document. Exactly one of the
// degraded flags applies: Placeholder when rendered without real data,
// Omitted when excluded, Error when the renderer failed.
type Block struct {
	WidgetID    string      `json:"widget_id"`
	Label       string      `json:"label"`
	HTML        string      `json:"html,omitempty"`
	Records     int         `json:"records"`
	Placeholder bool        `json:"placeholder,omitempty"`
	Omitted     bool        `json:"omitted,omitempty"`
	Error       *core.Error `json:"error,omitempty"`
}

// Degraded reports whether the block carries anything other than real
// rendered content.
func (b *Block) Degraded() bool {
	return b.Placeholder || b.Omitted || b.Error != nil
}
