package widget

import (
	"github.com/arloai/reporting/engine/metrics"
)

// Built-in widget identifiers.
const (
	WidgetToplineKPIGrid     = "topline_kpi_grid"
	WidgetBudgetPacingMeter  = "budget_pacing_meter"
	WidgetCTROverTime        = "ctr_over_time"
	WidgetImpsClicksOverTime = "imps_clicks_over_time"
	WidgetDailySpendChart    = "daily_spend_chart"
	WidgetPlacementTable     = "placement_performance_table"
	WidgetCreativeComparison = "creative_comparison"
	WidgetSessionEngagement  = "session_engagement_chart"
)

// BuiltinDescriptors returns the default widget set.
func BuiltinDescriptors() []*Descriptor {
	ctrColumn := seriesColumn{
		Name: "ctr %",
		Extract: func(rec *metrics.MetricRecord) (float64, bool) {
			return metrics.CTR(rec)
		},
	}
	return []*Descriptor{
		{
			ID:       WidgetToplineKPIGrid,
			Label:    "Topline KPIs",
			Category: CategoryKPIGrid,
			Required: []metrics.Metric{metrics.MetricImpressions, metrics.MetricClicks},
			Renderer: &KPIGridRenderer{},
		},
		{
			ID:       WidgetBudgetPacingMeter,
			Label:    "Budget Pacing",
			Category: CategoryMeter,
			Required: []metrics.Metric{metrics.MetricSpend},
			Renderer: &PacingMeterRenderer{},
		},
		{
			ID:       WidgetCTROverTime,
			Label:    "CTR Over Time",
			Category: CategoryTimeSeries,
			Required: []metrics.Metric{metrics.MetricImpressions, metrics.MetricClicks},
			Renderer: &TimeSeriesRenderer{Columns: []seriesColumn{
				metricColumn(metrics.MetricImpressions),
				metricColumn(metrics.MetricClicks),
				ctrColumn,
			}},
		},
		{
			ID:       WidgetImpsClicksOverTime,
			Label:    "Impressions and Clicks Over Time",
			Category: CategoryTimeSeries,
			Required: []metrics.Metric{metrics.MetricImpressions, metrics.MetricClicks},
			Renderer: &TimeSeriesRenderer{Columns: []seriesColumn{
				metricColumn(metrics.MetricImpressions),
				metricColumn(metrics.MetricClicks),
			}},
		},
		{
			ID:       WidgetDailySpendChart,
			Label:    "Daily Spend",
			Category: CategoryTimeSeries,
			Required: []metrics.Metric{metrics.MetricSpend},
			Renderer: &TimeSeriesRenderer{Columns: []seriesColumn{
				metricColumn(metrics.MetricSpend),
			}},
		},
		{
			ID:       WidgetPlacementTable,
			Label:    "Placement Performance",
			Category: CategoryTable,
			Required: []metrics.Metric{metrics.MetricImpressions, metrics.MetricClicks},
			Renderer: &DimensionTableRenderer{
				Dimension: "placement",
				Key:       func(rec *metrics.MetricRecord) string { return rec.Placement },
			},
		},
		{
			ID:       WidgetCreativeComparison,
			Label:    "Creative Comparison",
			Category: CategoryComparison,
			Required: []metrics.Metric{metrics.MetricImpressions, metrics.MetricClicks},
			Renderer: &DimensionTableRenderer{
				Dimension: "creative",
				Key:       func(rec *metrics.MetricRecord) string { return rec.CreativeID },
			},
		},
		{
			ID:       WidgetSessionEngagement,
			Label:    "Session Engagement",
			Category: CategoryTimeSeries,
			Required: []metrics.Metric{metrics.MetricSessions},
			Renderer: &TimeSeriesRenderer{Columns: []seriesColumn{
				metricColumn(metrics.MetricSessions),
				metricColumn(metrics.MetricEngagements),
			}},
		},
	}
}

// DefaultRegistry builds a registry with every built-in widget registered.
// A duplicate identifier fails here, before any report request is accepted.
func DefaultRegistry() (*Registry, error) {
	registry := NewRegistry()
	for _, desc := range BuiltinDescriptors() {
		if err := registry.Register(desc); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
