package normalizer

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/arloai/reporting/engine/core"
	"github.com/arloai/reporting/engine/metrics"
)

// Canonical dimension field names. Everything else in an alias table maps to
// a metric from the controlled vocabulary.
const (
	FieldDate     = "date"
	FieldCampaign = "campaign_id"
	FieldCreative = "creative_id"
	FieldPlace    = "placement"
	FieldDevice   = "device"
)

// AliasTable maps lowercased source column names to canonical field names
// for one source kind. Ignored columns are derived fields the pipeline
// recomputes itself (CTR, CPC), dropped without a warning.
type AliasTable struct {
	Fields map[string]string `yaml:"fields"`
	Ignore []string          `yaml:"ignore"`
}

func (t AliasTable) lookup(column string) (canonical string, ignored, ok bool) {
	key := strings.ToLower(strings.TrimSpace(column))
	for _, ig := range t.Ignore {
		if key == ig {
			return "", true, false
		}
	}
	canonical, ok = t.Fields[key]
	return canonical, false, ok
}

// DefaultAliases returns the built-in alias tables per source kind. Sources
// share a common base; spreadsheet and CSV exports add the column spellings
// campaign tools actually emit.
func DefaultAliases() map[core.SourceKind]AliasTable {
	base := map[string]string{
		"date":          FieldDate,
		"day":           FieldDate,
		"campaign_id":   FieldCampaign,
		"campaign":      FieldCampaign,
		"campaign name": FieldCampaign,
		"creative_id":   FieldCreative,
		"creative":      FieldCreative,
		"creative name": FieldCreative,
		"ad name":       FieldCreative,
		"placement":     FieldPlace,
		"site":          FieldPlace,
		"device":        FieldDevice,
		"device type":   FieldDevice,
		"impressions":   string(metrics.MetricImpressions),
		"imps":          string(metrics.MetricImpressions),
		"clicks":        string(metrics.MetricClicks),
		"link clicks":   string(metrics.MetricClicks),
		"spend":         string(metrics.MetricSpend),
		"cost":          string(metrics.MetricSpend),
		"amount spent":  string(metrics.MetricSpend),
		"sessions":      string(metrics.MetricSessions),
		"conversions":   string(metrics.MetricConversions),
		"reach":         string(metrics.MetricReach),
		"video views":   string(metrics.MetricVideoViews),
		"video_views":   string(metrics.MetricVideoViews),
		"engagements":   string(metrics.MetricEngagements),
	}
	ignore := []string{"ctr", "cpc", "cpm", "notes"}

	tables := make(map[core.SourceKind]AliasTable, 4)
	for _, kind := range []core.SourceKind{core.KindSpreadsheet, core.KindCSV, core.KindPDF, core.KindJSON} {
		fields := make(map[string]string, len(base))
		for k, v := range base {
			fields[k] = v
		}
		tables[kind] = AliasTable{Fields: fields, Ignore: append([]string(nil), ignore...)}
	}
	return tables
}

// LoadAliases reads per-kind alias overrides from a YAML file and merges
// them over the defaults. Unknown canonical targets fail loudly so a typo in
// the table never silently drops a column at run time.
func LoadAliases(path string) (map[core.SourceKind]AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias table %s: %w", path, err)
	}
	var overrides map[core.SourceKind]AliasTable
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse alias table %s: %w", path, err)
	}

	tables := DefaultAliases()
	for kind, override := range overrides {
		if !kind.Valid() {
			return nil, fmt.Errorf("alias table %s: unknown source kind %q", path, kind)
		}
		table := tables[kind]
		for column, canonical := range override.Fields {
			if !validCanonical(canonical) {
				return nil, fmt.Errorf("alias table %s: %q maps to unknown canonical field %q", path, column, canonical)
			}
			table.Fields[strings.ToLower(column)] = canonical
		}
		table.Ignore = append(table.Ignore, override.Ignore...)
		tables[kind] = table
	}
	return tables, nil
}

func validCanonical(name string) bool {
	switch name {
	case FieldDate, FieldCampaign, FieldCreative, FieldPlace, FieldDevice:
		return true
	default:
		return metrics.KnownMetric(metrics.Metric(name))
	}
}
