package report

import (
	"github.com/go-playground/validator/v10"

	"github.com/arloai/reporting/engine/core"
	"github.com/arloai/reporting/engine/widget"
)

// Format names an export target for one generation request.
type Format string

const (
	FormatHTML   Format = "html"
	FormatPDF    Format = "pdf"
	FormatSlides Format = "slides"
)

// Spec describes one report generation request. It is created per request
// and never persisted.
type Spec struct {
	Type       core.ReportType `validate:"required"`
	CampaignID string          `validate:"omitempty,max=256"`
	// Widgets lists the widget identifiers to include, in output order.
	// Empty selects the default set for the report type.
	Widgets  []string `validate:"dive,required"`
	Template string
	Formats  []Format `validate:"dive,oneof=html pdf slides"`
}

var specValidator = validator.New()

// Validate checks the spec and fills defaults: the widget list for the
// report type when none was requested, HTML output when no format was.
func (s *Spec) Validate() error {
	if !s.Type.Valid() {
		return &InvalidSpecError{cause: &core.Error{
			Code:    ErrCodeInvalidSpec,
			Message: "unknown report type: " + s.Type.String(),
		}}
	}
	if err := specValidator.Struct(s); err != nil {
		return &InvalidSpecError{cause: err}
	}
	if len(s.Widgets) == 0 {
		s.Widgets = DefaultWidgets(s.Type)
	}
	if len(s.Formats) == 0 {
		s.Formats = []Format{FormatHTML}
	}
	return nil
}

// DefaultWidgets returns the widget selection for a report type. Initial
// reports carry the topline set; later report types add the trend and
// comparison widgets as more data accumulates.
func DefaultWidgets(t core.ReportType) []string {
	base := []string{widget.WidgetToplineKPIGrid}
	switch t {
	case core.ReportInitial:
		return append(base, widget.WidgetBudgetPacingMeter)
	case core.ReportMidCampaign:
		return append(base,
			widget.WidgetCTROverTime,
			widget.WidgetImpsClicksOverTime,
			widget.WidgetDailySpendChart,
		)
	case core.ReportFinal:
		return append(base,
			widget.WidgetCTROverTime,
			widget.WidgetImpsClicksOverTime,
			widget.WidgetCreativeComparison,
			widget.WidgetPlacementTable,
			widget.WidgetSessionEngagement,
		)
	default:
		return base
	}
}
