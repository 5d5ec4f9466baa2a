package core

// -----------------------------------------------------------------------------
// Source Kind
// -----------------------------------------------------------------------------

// SourceKind identifies the shape a data source arrives in.
type SourceKind string

const (
	KindSpreadsheet SourceKind = "spreadsheet"
	KindCSV         SourceKind = "csv"
	KindPDF         SourceKind = "pdf"
	KindJSON        SourceKind = "json"
)

func (k SourceKind) String() string {
	return string(k)
}

// Valid reports whether the kind is one of the supported source kinds.
func (k SourceKind) Valid() bool {
	switch k {
	case KindSpreadsheet, KindCSV, KindPDF, KindJSON:
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// Report Type
// -----------------------------------------------------------------------------

// ReportType determines which widgets and cadence apply to a report.
type ReportType string

const (
	ReportInitial     ReportType = "initial"
	ReportMidCampaign ReportType = "mid_campaign"
	ReportFinal       ReportType = "final"
)

func (t ReportType) String() string {
	return string(t)
}

func (t ReportType) Valid() bool {
	switch t {
	case ReportInitial, ReportMidCampaign, ReportFinal:
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// Warnings
// -----------------------------------------------------------------------------

// Warning records a degraded or omitted component without failing the run.
// Every warning produced anywhere in the pipeline ends up attached to the
// report document so "rendered" and "complete" are never conflated.
type Warning struct {
	Component string `json:"component"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Source    string `json:"source,omitempty"`
}
