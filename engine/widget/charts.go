package widget

import (
	"context"
	"sort"

	"github.com/arloai/reporting/engine/metrics"
)

var timeSeriesTmpl = mustTemplate("time_series", `
<div class="widget time-series" id="{{ .ID }}">
  <h3>{{ .Label }}</h3>
  <table>
    <thead><tr><th>Date</th>{{ range .Columns }}<th>{{ . | title }}</th>{{ end }}</tr></thead>
    <tbody>
      {{- range .Rows }}
      <tr><td>{{ .Date }}</td>{{ range .Cells }}<td>{{ . }}</td>{{ end }}</tr>
      {{- end }}
    </tbody>
  </table>
</div>`)

type seriesRow struct {
	Date  string
	Cells []cell
}

type timeSeriesView struct {
	ID      string
	Label   string
	Columns []string
	Rows    []seriesRow
}

// seriesColumn computes one column of a time-series chart from the daily
// aggregate record.
type seriesColumn struct {
	Name    string
	Extract func(*metrics.MetricRecord) (float64, bool)
}

func metricColumn(m metrics.Metric) seriesColumn {
	return seriesColumn{
		Name: string(m),
		Extract: func(rec *metrics.MetricRecord) (float64, bool) {
			return rec.Value(m)
		},
	}
}

// TimeSeriesRenderer renders one row per calendar day with the configured
// columns. The chart widgets are all instances of this renderer with
// different column sets.
type TimeSeriesRenderer struct {
	Columns []seriesColumn
}

func (r *TimeSeriesRenderer) Render(_ context.Context, ds *metrics.NormalizedDataset, desc *Descriptor) (*Block, error) {
	daily := aggregateByDay(ds)

	view := timeSeriesView{ID: desc.ID, Label: desc.Label}
	for _, col := range r.Columns {
		view.Columns = append(view.Columns, col.Name)
	}
	for _, rec := range daily {
		row := seriesRow{Date: rec.Date.Format("2006-01-02")}
		for _, col := range r.Columns {
			v, ok := col.Extract(rec)
			row.Cells = append(row.Cells, cell{Value: round2(v), OK: ok})
		}
		view.Rows = append(view.Rows, row)
	}

	html, err := renderTemplate(timeSeriesTmpl, view)
	if err != nil {
		return nil, err
	}
	return &Block{WidgetID: desc.ID, Label: desc.Label, HTML: html, Records: len(ds.Records)}, nil
}

// aggregateByDay sums reported metrics per calendar day, preserving the
// missing-vs-zero distinction: a day's metric is present only if at least
// one record that day reported it.
func aggregateByDay(ds *metrics.NormalizedDataset) []*metrics.MetricRecord {
	byDay := make(map[string]*metrics.MetricRecord)
	for i := range ds.Records {
		rec := &ds.Records[i]
		key := rec.Date.Format("2006-01-02")
		agg, ok := byDay[key]
		if !ok {
			agg = &metrics.MetricRecord{Date: rec.Date, CampaignID: rec.CampaignID}
			byDay[key] = agg
		}
		for m, v := range rec.Values {
			prev, _ := agg.Value(m)
			agg.SetValue(m, prev+v)
		}
	}

	days := make([]*metrics.MetricRecord, 0, len(byDay))
	for _, rec := range byDay {
		days = append(days, rec)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}
