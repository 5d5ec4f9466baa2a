package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/arloai/reporting/engine/report"
	"github.com/arloai/reporting/engine/widget"
)

// layoutTemplate is the slot layout every block renders into. The layout is
// fixed and the document immutable, so exporting the same document twice
// yields byte-identical HTML.
const layoutTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
</head>
<body>
  <header>
    <h1>{{ .Title }}</h1>
    <p>Campaign: {{ .Doc.CampaignID | default "(all)" }}</p>
    <p>Period: {{ .Doc.Range.Start.Format "2006-01-02" }} to {{ .Doc.Range.End.Format "2006-01-02" }}</p>
    <p>Generated: {{ .Doc.GeneratedAt.Format "2006-01-02 15:04:05 MST" }}</p>
  </header>
  <main>
    {{- range .Slots }}
    <section class="slot">{{ . }}</section>
    {{- end }}
  </main>
  <footer>
    <section class="provenance">
      <h2>Data Sources</h2>
      <ul>{{ range .Doc.Provenance }}<li>{{ . }}</li>{{ end }}</ul>
    </section>
    {{- if or .Doc.Warnings .Doc.Omissions .Doc.RejectedRows }}
    <section class="warnings">
      <h2>Data Quality Notes</h2>
      <ul>
        {{- range .Doc.Omissions }}
        <li>omitted: {{ .Reason }}</li>
        {{- end }}
        {{- range .Doc.Warnings }}
        <li>{{ .Component }}: {{ .Message }}</li>
        {{- end }}
        {{- if .Doc.RejectedRows }}
        <li>{{ .Doc.RejectedRows }} source row(s) were rejected during normalization</li>
        {{- end }}
      </ul>
    </section>
    {{- end }}
  </footer>
</body>
</html>
`

var layoutTmpl = template.Must(
	template.New("layout").Funcs(sprig.HtmlFuncMap()).Parse(layoutTemplate),
)

type layoutView struct {
	Title string
	Doc   *report.Document
	Slots []template.HTML
}

// RenderHTML substitutes the document's rendered blocks into the slot
// layout. This is the canonical rendering every other format derives from.
func RenderHTML(doc *report.Document) ([]byte, error) {
	view := layoutView{
		Title: fmt.Sprintf("%s campaign report", doc.Type),
		Doc:   doc,
	}
	for i := range doc.Blocks {
		view.Slots = append(view.Slots, slotHTML(&doc.Blocks[i]))
	}

	var buf bytes.Buffer
	if err := layoutTmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render report layout: %w", err)
	}
	return buf.Bytes(), nil
}

// slotHTML renders one block into its slot, making degraded blocks visible
// instead of dropping them.
func slotHTML(block *widget.Block) template.HTML {
	switch {
	case block.Omitted:
		return template.HTML(fmt.Sprintf(
			`<div class="widget omitted" id="%s"><p>Widget %s was omitted.</p></div>`,
			template.HTMLEscapeString(block.WidgetID), template.HTMLEscapeString(block.WidgetID)))
	case block.Error != nil:
		return template.HTML(fmt.Sprintf(
			`<div class="widget errored" id="%s"><p>Widget %s could not be rendered.</p></div>`,
			template.HTMLEscapeString(block.WidgetID), template.HTMLEscapeString(block.WidgetID)))
	default:
		// Block HTML is produced by the widget templates, which escape
		// their own inputs.
		return template.HTML(block.HTML)
	}
}
