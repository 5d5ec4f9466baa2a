package metrics

// Derived KPI helpers. Each returns (value, ok); ok is false when an input
// the ratio depends on was never reported, so callers skip instead of
// dividing. A present zero denominator is a defined case for CTR (0%) but
// undefined for per-unit costs.

// CTR returns clicks/impressions as a percentage for one record.
func CTR(r *MetricRecord) (float64, bool) {
	clicks, okC := r.Value(MetricClicks)
	imps, okI := r.Value(MetricImpressions)
	if !okC || !okI {
		return 0, false
	}
	if imps == 0 {
		return 0, true
	}
	return clicks / imps * 100, true
}

// CPC returns spend/clicks for one record.
func CPC(r *MetricRecord) (float64, bool) {
	spend, okS := r.Value(MetricSpend)
	clicks, okC := r.Value(MetricClicks)
	if !okS || !okC || clicks == 0 {
		return 0, false
	}
	return spend / clicks, true
}

// CPM returns spend per thousand impressions for one record.
func CPM(r *MetricRecord) (float64, bool) {
	spend, okS := r.Value(MetricSpend)
	imps, okI := r.Value(MetricImpressions)
	if !okS || !okI || imps == 0 {
		return 0, false
	}
	return spend / imps * 1000, true
}

// Total sums a metric across records, counting how many reported it.
func Total(d *NormalizedDataset, m Metric) (sum float64, reported int) {
	for i := range d.Records {
		if v, ok := d.Records[i].Value(m); ok {
			sum += v
			reported++
		}
	}
	return sum, reported
}
