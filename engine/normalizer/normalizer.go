package normalizer

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arloai/reporting/engine/core"
	"github.com/arloai/reporting/engine/metrics"
	"github.com/arloai/reporting/engine/source"
	"github.com/arloai/reporting/pkg/logger"
)

// dateLayouts are tried in order: ISO-8601 first, then the two localized
// spreadsheet spellings that dominate campaign exports.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
}

// Normalizer converts raw record sets into the canonical metrics schema.
// It is a pure function of its input plus the alias tables; the same raw
// set always normalizes to the same dataset.
type Normalizer struct {
	aliases map[core.SourceKind]AliasTable
}

// New creates a Normalizer with the built-in alias tables.
func New() *Normalizer {
	return &Normalizer{aliases: DefaultAliases()}
}

// NewWithAliases creates a Normalizer with caller-supplied alias tables.
func NewWithAliases(aliases map[core.SourceKind]AliasTable) *Normalizer {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Normalizer{aliases: aliases}
}

// Normalize converts one raw record set into a normalized dataset. Data
// quality issues become warnings or rejected rows; only a malformed source
// structure returns an error.
func (n *Normalizer) Normalize(ctx context.Context, raw *source.RawRecordSet) (*metrics.NormalizedDataset, error) {
	log := logger.FromContext(ctx)
	if raw == nil || len(raw.Header) == 0 {
		name := ""
		if raw != nil {
			name = raw.Source
		}
		return nil, &source.FormatError{Source: name, Expected: "a header row naming the source columns"}
	}

	table, ok := n.aliases[raw.Kind]
	if !ok {
		return nil, &source.FormatError{Source: raw.Source, Expected: "a supported source kind"}
	}

	mappings, unmapped := n.mapHeader(table, raw.Header)
	if !headerHasDate(mappings) || !headerHasMetric(mappings) {
		return nil, &source.FormatError{
			Source:   raw.Source,
			Expected: "a header with a date column and at least one metric column",
		}
	}

	ds := metrics.NewDataset(raw.Source)
	for _, column := range unmapped {
		ds.Warn(core.Warning{
			Component: "normalizer",
			Code:      "UNMAPPED_FIELD",
			Message:   "source field " + column + " has no canonical mapping and was dropped",
			Source:    raw.Source,
		})
	}

	for _, row := range raw.Rows {
		rec, ok := n.normalizeRow(mappings, row, raw.Source, ds)
		if !ok {
			ds.RejectedRows++
			continue
		}
		ds.Append(rec)
	}

	log.Debug("normalized source",
		"source", raw.Source,
		"kind", raw.Kind,
		"records", len(ds.Records),
		"rejected", ds.RejectedRows,
		"warnings", len(ds.Warnings))
	return ds, nil
}

// NormalizeAll normalizes every raw set and merges the results in ingestion
// order, so a key appearing in two sources reflects the later source. A
// malformed source is skipped with a warning on the merged dataset; the call
// fails only when no source normalizes at all.
func (n *Normalizer) NormalizeAll(ctx context.Context, raws []*source.RawRecordSet) (*metrics.NormalizedDataset, error) {
	log := logger.FromContext(ctx)
	var merged *metrics.NormalizedDataset
	var skipped []core.Warning
	var lastErr error

	for _, raw := range raws {
		ds, err := n.Normalize(ctx, raw)
		if err != nil {
			name := ""
			if raw != nil {
				name = raw.Source
			}
			log.Warn("source dropped during normalization", "source", name, "error", err)
			skipped = append(skipped, core.Warning{
				Component: "normalizer",
				Code:      "SOURCE_SKIPPED",
				Message:   err.Error(),
				Source:    name,
			})
			lastErr = err
			continue
		}
		if merged == nil {
			merged = ds
			continue
		}
		merged.Merge(ds)
	}

	if merged == nil {
		return nil, lastErr
	}
	merged.Warnings = append(merged.Warnings, skipped...)
	return merged, nil
}

// fieldMapping binds one source column to its canonical field. Mappings keep
// header order so two columns aliasing the same canonical field resolve by
// position, with the rightmost column winning, instead of map iteration
// order.
type fieldMapping struct {
	column    string
	canonical string
}

// mapHeader resolves source columns to canonical fields in header order,
// collecting columns with no mapping once each.
func (n *Normalizer) mapHeader(table AliasTable, header []string) ([]fieldMapping, []string) {
	mappings := make([]fieldMapping, 0, len(header))
	var unmapped []string
	seen := make(map[string]bool)
	for _, column := range header {
		if column == "" {
			continue
		}
		canonical, ignored, ok := table.lookup(column)
		if ignored {
			continue
		}
		if !ok {
			if !seen[column] {
				seen[column] = true
				unmapped = append(unmapped, column)
			}
			continue
		}
		mappings = append(mappings, fieldMapping{column: column, canonical: canonical})
	}
	return mappings, unmapped
}

func (n *Normalizer) normalizeRow(
	mappings []fieldMapping,
	row source.RawRow,
	src string,
	ds *metrics.NormalizedDataset,
) (metrics.MetricRecord, bool) {
	rec := metrics.MetricRecord{Values: make(map[metrics.Metric]float64)}
	dateSeen := false

	for _, m := range mappings {
		column, canonical := m.column, m.canonical
		cell, has := row[column]
		cell = strings.TrimSpace(cell)
		if !has || cell == "" {
			continue
		}
		switch canonical {
		case FieldDate:
			day, err := parseDate(cell)
			if err != nil {
				return metrics.MetricRecord{}, false
			}
			rec.Date = day
			dateSeen = true
		case FieldCampaign:
			rec.CampaignID = cell
		case FieldCreative:
			rec.CreativeID = cell
		case FieldPlace:
			rec.Placement = cell
		case FieldDevice:
			rec.Device = cell
		default:
			v, ok := coerceNumeric(cell)
			if !ok {
				// Unparseable after stripping: the value is missing,
				// never zero.
				ds.Warn(core.Warning{
					Component: "normalizer",
					Code:      "UNPARSEABLE_VALUE",
					Message:   "value " + cell + " for " + canonical + " could not be coerced; treated as missing",
					Source:    src,
				})
				continue
			}
			rec.SetValue(metrics.Metric(canonical), v)
		}
	}

	if !dateSeen {
		return metrics.MetricRecord{}, false
	}
	return rec, true
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// coerceNumeric strips currency symbols, thousands separators and percent
// signs before parsing. decimal handles the numeric text exactly; the final
// value lands in a float for KPI math.
func coerceNumeric(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', '%', ' ':
			return -1
		default:
			return r
		}
	}, s)
	if cleaned == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

func headerHasDate(mappings []fieldMapping) bool {
	for _, m := range mappings {
		if m.canonical == FieldDate {
			return true
		}
	}
	return false
}

func headerHasMetric(mappings []fieldMapping) bool {
	for _, m := range mappings {
		if metrics.KnownMetric(metrics.Metric(m.canonical)) {
			return true
		}
	}
	return false
}
