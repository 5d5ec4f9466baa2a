package widget

import (
	"context"

	"github.com/arloai/reporting/engine/metrics"
)

var kpiGridTmpl = mustTemplate("topline_kpi_grid", `
<div class="widget kpi-grid" id="{{ .ID }}">
  <h3>{{ .Label }}</h3>
  <dl>
    {{- range .Items }}
    <dt>{{ .Name | title }}</dt><dd>{{ .Value }}</dd>
    {{- end }}
  </dl>
</div>`)

type kpiItem struct {
	Name  string
	Value cell
}

type kpiGridView struct {
	ID    string
	Label string
	Items []kpiItem
}

// KPIGridRenderer renders campaign totals plus the derived rate KPIs.
type KPIGridRenderer struct{}

func (r *KPIGridRenderer) Render(_ context.Context, ds *metrics.NormalizedDataset, desc *Descriptor) (*Block, error) {
	view := kpiGridView{ID: desc.ID, Label: desc.Label}
	for _, m := range metrics.Vocabulary() {
		sum, reported := metrics.Total(ds, m)
		if reported == 0 {
			continue
		}
		view.Items = append(view.Items, kpiItem{Name: string(m), Value: cell{Value: round2(sum), OK: true}})
	}

	totals := totalsRecord(ds)
	if ctr, ok := metrics.CTR(totals); ok {
		view.Items = append(view.Items, kpiItem{Name: "ctr %", Value: cell{Value: round2(ctr), OK: true}})
	}
	if cpc, ok := metrics.CPC(totals); ok {
		view.Items = append(view.Items, kpiItem{Name: "cpc", Value: cell{Value: round2(cpc), OK: true}})
	}

	html, err := renderTemplate(kpiGridTmpl, view)
	if err != nil {
		return nil, err
	}
	return &Block{WidgetID: desc.ID, Label: desc.Label, HTML: html, Records: len(ds.Records)}, nil
}

// totalsRecord folds dataset totals into a single record so the per-record
// KPI helpers apply to campaign aggregates.
func totalsRecord(ds *metrics.NormalizedDataset) *metrics.MetricRecord {
	rec := &metrics.MetricRecord{Values: make(map[metrics.Metric]float64)}
	for _, m := range metrics.Vocabulary() {
		if sum, reported := metrics.Total(ds, m); reported > 0 {
			rec.SetValue(m, sum)
		}
	}
	return rec
}

var pacingTmpl = mustTemplate("budget_pacing_meter", `
<div class="widget pacing-meter" id="{{ .ID }}">
  <h3>{{ .Label }}</h3>
  <p>Spend to date: {{ .Spend }} across {{ .Days }} day(s)</p>
  <p>Average daily spend: {{ .Daily }}</p>
</div>`)

type pacingView struct {
	ID    string
	Label string
	Spend cell
	Days  int
	Daily cell
}

// PacingMeterRenderer renders cumulative spend against the covered days.
type PacingMeterRenderer struct{}

func (r *PacingMeterRenderer) Render(_ context.Context, ds *metrics.NormalizedDataset, desc *Descriptor) (*Block, error) {
	spend, reported := metrics.Total(ds, metrics.MetricSpend)
	days := coveredDays(ds)

	view := pacingView{
		ID:    desc.ID,
		Label: desc.Label,
		Spend: cell{Value: round2(spend), OK: reported > 0},
		Days:  days,
	}
	if reported > 0 && days > 0 {
		view.Daily = cell{Value: round2(spend / float64(days)), OK: true}
	}

	html, err := renderTemplate(pacingTmpl, view)
	if err != nil {
		return nil, err
	}
	return &Block{WidgetID: desc.ID, Label: desc.Label, HTML: html, Records: len(ds.Records)}, nil
}

func coveredDays(ds *metrics.NormalizedDataset) int {
	if ds.Range.Start.IsZero() {
		return 0
	}
	return int(ds.Range.End.Sub(ds.Range.Start).Hours()/24) + 1
}
