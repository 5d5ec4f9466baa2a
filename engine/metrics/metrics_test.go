package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func rec(date string, values map[Metric]float64) MetricRecord {
	return MetricRecord{Date: day(date), CampaignID: "camp-1", Values: values}
}

func TestCTR(t *testing.T) {
	t.Run("Should compute CTR, report zero-impression days as 0 and skip missing impressions", func(t *testing.T) {
		records := []MetricRecord{
			rec("2025-07-01", map[Metric]float64{MetricImpressions: 1000, MetricClicks: 50}),
			rec("2025-07-02", map[Metric]float64{MetricImpressions: 0, MetricClicks: 0}),
			rec("2025-07-03", map[Metric]float64{MetricClicks: 10}),
		}

		ctr, ok := CTR(&records[0])
		require.True(t, ok)
		assert.InDelta(t, 5.0, ctr, 1e-9)

		ctr, ok = CTR(&records[1])
		require.True(t, ok)
		assert.Zero(t, ctr)

		_, ok = CTR(&records[2])
		assert.False(t, ok, "missing impressions must not report CTR at all")
	})
}

func TestCPC(t *testing.T) {
	t.Run("Should skip when spend or clicks are missing or clicks are zero", func(t *testing.T) {
		r := rec("2025-07-01", map[Metric]float64{MetricSpend: 100})
		_, ok := CPC(&r)
		assert.False(t, ok)

		r = rec("2025-07-01", map[Metric]float64{MetricSpend: 100, MetricClicks: 0})
		_, ok = CPC(&r)
		assert.False(t, ok)

		r = rec("2025-07-01", map[Metric]float64{MetricSpend: 100, MetricClicks: 50})
		cpc, ok := CPC(&r)
		require.True(t, ok)
		assert.InDelta(t, 2.0, cpc, 1e-9)
	})
}

func TestNormalizedDataset_Append(t *testing.T) {
	t.Run("Should deduplicate by record key with last writer winning", func(t *testing.T) {
		ds := NewDataset("a.csv")
		ds.Append(rec("2025-07-01", map[Metric]float64{MetricImpressions: 100}))
		ds.Append(rec("2025-07-01", map[Metric]float64{MetricImpressions: 250}))

		require.Len(t, ds.Records, 1)
		v, ok := ds.Records[0].Value(MetricImpressions)
		require.True(t, ok)
		assert.Equal(t, 250.0, v)
	})

	t.Run("Should track the covered date range", func(t *testing.T) {
		ds := NewDataset("a.csv")
		ds.Append(rec("2025-07-03", map[Metric]float64{MetricClicks: 1}))
		ds.Append(rec("2025-07-01", map[Metric]float64{MetricClicks: 2}))
		ds.Append(rec("2025-07-02", map[Metric]float64{MetricClicks: 3}))

		assert.Equal(t, day("2025-07-01"), ds.Range.Start)
		assert.Equal(t, day("2025-07-03"), ds.Range.End)
	})
}

func TestNormalizedDataset_Merge(t *testing.T) {
	t.Run("Should prefer the later source on key collisions and keep both in provenance", func(t *testing.T) {
		first := NewDataset("july.xlsx")
		first.Append(rec("2025-07-01", map[Metric]float64{MetricSpend: 10}))
		second := NewDataset("august.xlsx")
		second.Append(rec("2025-07-01", map[Metric]float64{MetricSpend: 99}))

		first.Merge(second)

		require.Len(t, first.Records, 1)
		v, _ := first.Records[0].Value(MetricSpend)
		assert.Equal(t, 99.0, v)
		assert.Equal(t, []string{"july.xlsx", "august.xlsx"}, first.Provenance)
	})

	t.Run("Should concatenate rejected-row tallies", func(t *testing.T) {
		first := NewDataset("a")
		first.RejectedRows = 2
		second := NewDataset("b")
		second.RejectedRows = 3

		first.Merge(second)

		assert.Equal(t, 5, first.RejectedRows)
	})
}

func TestNormalizedDataset_MissingFields(t *testing.T) {
	t.Run("Should report required metrics absent from every record", func(t *testing.T) {
		ds := NewDataset("a.csv")
		ds.Append(rec("2025-07-01", map[Metric]float64{MetricImpressions: 1}))

		missing := ds.MissingFields([]Metric{MetricImpressions, MetricSessions})

		assert.Equal(t, []Metric{MetricSessions}, missing)
	})
}
