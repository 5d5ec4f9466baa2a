package widget

import (
	"context"
	"sort"

	"github.com/arloai/reporting/engine/metrics"
)

var dimensionTableTmpl = mustTemplate("dimension_table", `
<div class="widget dimension-table" id="{{ .ID }}">
  <h3>{{ .Label }}</h3>
  <table>
    <thead><tr><th>{{ .Dimension | title }}</th><th>Impressions</th><th>Clicks</th><th>CTR %</th><th>Spend</th></tr></thead>
    <tbody>
      {{- range .Rows }}
      <tr><td>{{ .Name }}</td><td>{{ .Impressions }}</td><td>{{ .Clicks }}</td><td>{{ .CTR }}</td><td>{{ .Spend }}</td></tr>
      {{- end }}
    </tbody>
  </table>
</div>`)

type dimensionRow struct {
	Name        string
	Impressions cell
	Clicks      cell
	CTR         cell
	Spend       cell
}

type dimensionTableView struct {
	ID        string
	Label     string
	Dimension string
	Rows      []dimensionRow
}

// DimensionTableRenderer groups records by a dimension and renders one
// performance row per group. The placement table and the creative
// comparison are both instances with a different key.
type DimensionTableRenderer struct {
	Dimension string
	Key       func(*metrics.MetricRecord) string
}

func (r *DimensionTableRenderer) Render(_ context.Context, ds *metrics.NormalizedDataset, desc *Descriptor) (*Block, error) {
	groups := make(map[string]*metrics.MetricRecord)
	for i := range ds.Records {
		rec := &ds.Records[i]
		name := r.Key(rec)
		if name == "" {
			name = "(not set)"
		}
		agg, ok := groups[name]
		if !ok {
			agg = &metrics.MetricRecord{CampaignID: rec.CampaignID}
			groups[name] = agg
		}
		for m, v := range rec.Values {
			prev, _ := agg.Value(m)
			agg.SetValue(m, prev+v)
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	view := dimensionTableView{ID: desc.ID, Label: desc.Label, Dimension: r.Dimension}
	for _, name := range names {
		agg := groups[name]
		imps, okI := agg.Value(metrics.MetricImpressions)
		clicks, okC := agg.Value(metrics.MetricClicks)
		spend, okS := agg.Value(metrics.MetricSpend)
		ctr, okR := metrics.CTR(agg)
		view.Rows = append(view.Rows, dimensionRow{
			Name:        name,
			Impressions: cell{Value: imps, OK: okI},
			Clicks:      cell{Value: clicks, OK: okC},
			CTR:         cell{Value: round2(ctr), OK: okR},
			Spend:       cell{Value: round2(spend), OK: okS},
		})
	}

	html, err := renderTemplate(dimensionTableTmpl, view)
	if err != nil {
		return nil, err
	}
	return &Block{WidgetID: desc.ID, Label: desc.Label, HTML: html, Records: len(ds.Records)}, nil
}
