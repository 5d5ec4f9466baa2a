package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/arloai/reporting/engine/core"
	"github.com/arloai/reporting/engine/metrics"
	"github.com/arloai/reporting/engine/widget"
)

// Omission records a widget excluded from a document and why. Omissions are
// always visible: nothing leaves the pipeline silently.
type Omission struct {
	WidgetID string `json:"widget_id"`
	Reason   string `json:"reason"`
}

// Document is the single assembled artifact every output format renders
// from. Block order matches the requested widget order regardless of any
// concurrency used while rendering.
type Document struct {
	ID           string            `json:"id"`
	Type         core.ReportType   `json:"type"`
	CampaignID   string            `json:"campaign_id,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Range        metrics.DateRange `json:"range"`
	Blocks       []widget.Block    `json:"blocks"`
	Provenance   []string          `json:"provenance"`
	Warnings     []core.Warning    `json:"warnings,omitempty"`
	Omissions    []Omission        `json:"omissions,omitempty"`
	RejectedRows int               `json:"rejected_rows"`
}

func newDocument(spec *Spec, ds *metrics.NormalizedDataset, now time.Time) *Document {
	doc := &Document{
		ID:          uuid.NewString(),
		Type:        spec.Type,
		CampaignID:  spec.CampaignID,
		GeneratedAt: now,
	}
	if ds != nil {
		doc.Range = ds.Range
		doc.Provenance = ds.Provenance
		doc.Warnings = append(doc.Warnings, ds.Warnings...)
		doc.RejectedRows = ds.RejectedRows
	}
	return doc
}

// Complete reports whether every block carries real rendered content.
func (d *Document) Complete() bool {
	if len(d.Omissions) > 0 {
		return false
	}
	for i := range d.Blocks {
		if d.Blocks[i].Degraded() {
			return false
		}
	}
	return true
}
