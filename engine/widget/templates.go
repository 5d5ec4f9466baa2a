package widget

import (
	"bytes"
	"fmt"
	"html/template"
	"math"

	"github.com/Masterminds/sprig/v3"
)

// mustTemplate parses a block template at init time with the sprig function
// set. Built-in templates are constants, so a parse failure is a programming
// error and panics before any report runs.
func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(sprig.HtmlFuncMap()).Parse(text))
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// cell formats a metric value for display, rendering a missing value as
// "unavailable" rather than zero.
type cell struct {
	Value float64
	OK    bool
}

func (c cell) String() string {
	if !c.OK {
		return "unavailable"
	}
	return fmt.Sprintf("%g", c.Value)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
