package widget

import (
	"context"

	"github.com/arloai/reporting/engine/metrics"
)

var placeholderTmpl = mustTemplate("placeholder", `
<div class="widget placeholder" id="{{ .ID }}">
  <h3>{{ .Label }}</h3>
  <span class="placeholder-badge">Placeholder</span>
  <p>No data is available for this widget yet.</p>
</div>`)

type placeholderView struct {
	ID    string
	Label string
}

// PlaceholderRenderer renders an explicitly flagged placeholder block. It is
// invoked by the report engine when a widget's requirements are missing and
// the report type's placeholder policy is enabled, never by a widget's own
// renderer.
type PlaceholderRenderer struct{}

func (r *PlaceholderRenderer) Render(_ context.Context, _ *metrics.NormalizedDataset, desc *Descriptor) (*Block, error) {
	html, err := renderTemplate(placeholderTmpl, placeholderView{ID: desc.ID, Label: desc.Label})
	if err != nil {
		return nil, err
	}
	return &Block{WidgetID: desc.ID, Label: desc.Label, HTML: html, Placeholder: true}, nil
}
