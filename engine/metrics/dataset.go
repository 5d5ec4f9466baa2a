package metrics

import (
	"time"

	"github.com/arloai/reporting/engine/core"
)

// DateRange is the closed interval of calendar days a dataset covers.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NormalizedDataset is an ordered sequence of MetricRecord plus dataset-level
// metadata. Records are deduplicated by (date, campaign, creative, placement);
// when the same key is merged from two sources the later source wins.
type NormalizedDataset struct {
	Records      []MetricRecord `json:"records"`
	Range        DateRange      `json:"range"`
	Provenance   []string       `json:"provenance"`
	Warnings     []core.Warning `json:"warnings,omitempty"`
	RejectedRows int            `json:"rejected_rows"`
}

// NewDataset creates an empty dataset attributed to the given source.
func NewDataset(source string) *NormalizedDataset {
	return &NormalizedDataset{Provenance: []string{source}}
}

// Append adds a record, applying last-writer-wins deduplication and
// extending the covered date range.
func (d *NormalizedDataset) Append(rec MetricRecord) {
	key := rec.Key()
	for i := range d.Records {
		if d.Records[i].Key() == key {
			d.Records[i] = rec
			d.extendRange(rec.Date)
			return
		}
	}
	d.Records = append(d.Records, rec)
	d.extendRange(rec.Date)
}

func (d *NormalizedDataset) extendRange(day time.Time) {
	if d.Range.Start.IsZero() || day.Before(d.Range.Start) {
		d.Range.Start = day
	}
	if d.Range.End.IsZero() || day.After(d.Range.End) {
		d.Range.End = day
	}
}

// Merge folds another dataset into this one. The other dataset is treated as
// later in ingestion order, so its records win on key collisions. Warnings,
// rejected-row tallies and provenance concatenate.
func (d *NormalizedDataset) Merge(other *NormalizedDataset) {
	if other == nil {
		return
	}
	for _, rec := range other.Records {
		d.Append(rec)
	}
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.RejectedRows += other.RejectedRows
	d.Provenance = append(d.Provenance, other.Provenance...)
}

// Fields returns the set of metric names reported by at least one record.
func (d *NormalizedDataset) Fields() map[Metric]bool {
	fields := make(map[Metric]bool)
	for i := range d.Records {
		for m := range d.Records[i].Values {
			fields[m] = true
		}
	}
	return fields
}

// MissingFields returns, in the given order, the required metrics absent from
// every record in the dataset.
func (d *NormalizedDataset) MissingFields(required []Metric) []Metric {
	present := d.Fields()
	var missing []Metric
	for _, m := range required {
		if !present[m] {
			missing = append(missing, m)
		}
	}
	return missing
}

// Warn appends a dataset-level warning.
func (d *NormalizedDataset) Warn(w core.Warning) {
	d.Warnings = append(d.Warnings, w)
}
