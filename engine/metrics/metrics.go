package metrics

import (
	"fmt"
	"time"
)

// Metric is a canonical metric name from the controlled vocabulary.
type Metric string

const (
	MetricImpressions Metric = "impressions"
	MetricClicks      Metric = "clicks"
	MetricSpend       Metric = "spend"
	MetricSessions    Metric = "sessions"
	MetricConversions Metric = "conversions"
	MetricReach       Metric = "reach"
	MetricVideoViews  Metric = "video_views"
	MetricEngagements Metric = "engagements"
)

func (m Metric) String() string {
	return string(m)
}

// KnownMetric reports whether the name belongs to the controlled vocabulary.
func KnownMetric(m Metric) bool {
	switch m {
	case MetricImpressions, MetricClicks, MetricSpend, MetricSessions,
		MetricConversions, MetricReach, MetricVideoViews, MetricEngagements:
		return true
	default:
		return false
	}
}

// Vocabulary returns the controlled vocabulary in a stable order.
func Vocabulary() []Metric {
	return []Metric{
		MetricImpressions,
		MetricClicks,
		MetricSpend,
		MetricSessions,
		MetricConversions,
		MetricReach,
		MetricVideoViews,
		MetricEngagements,
	}
}

// MetricRecord is one canonical observation: a calendar day, a campaign scope
// and a mapping of metric name to numeric value. A metric absent from Values
// is unavailable, which is distinct from a reported zero.
type MetricRecord struct {
	Date       time.Time          `json:"date"`
	CampaignID string             `json:"campaign_id"`
	CreativeID string             `json:"creative_id,omitempty"`
	Placement  string             `json:"placement,omitempty"`
	Device     string             `json:"device,omitempty"`
	Values     map[Metric]float64 `json:"values"`
}

// Key returns the deduplication key for last-writer-wins merging.
func (r *MetricRecord) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		r.Date.Format("2006-01-02"), r.CampaignID, r.CreativeID, r.Placement)
}

// Value returns the metric value and whether it was reported at all.
func (r *MetricRecord) Value(m Metric) (float64, bool) {
	v, ok := r.Values[m]
	return v, ok
}

// SetValue records a reported metric value.
func (r *MetricRecord) SetValue(m Metric, v float64) {
	if r.Values == nil {
		r.Values = make(map[Metric]float64)
	}
	r.Values[m] = v
}
