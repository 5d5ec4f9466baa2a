package export

import (
	"bytes"
	"context"
	stdhtml "html"
	"regexp"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RenderBackend converts assembled HTML into PDF bytes. It is a black box
// to the pipeline: headless-browser backends plug in here.
type RenderBackend interface {
	HTMLToPDF(ctx context.Context, html []byte) ([]byte, error)
}

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	headingPattern = regexp.MustCompile(`(?s)<h[1-3][^>]*>(.*?)</h[1-3]>`)
)

// GofpdfBackend is the built-in rendering backend. It does not lay out CSS;
// it extracts the document text and typesets it, so a PDF is producible
// with no external renderer installed.
type GofpdfBackend struct {
	// CreationDate pins the PDF metadata date so the same HTML always
	// produces identical bytes. Zero pins it to the Unix epoch.
	CreationDate time.Time
}

func (b *GofpdfBackend) HTMLToPDF(_ context.Context, html []byte) ([]byte, error) {
	created := b.CreationDate
	if created.IsZero() {
		created = time.Unix(0, 0).UTC()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetTitle("Campaign Report", false)
	pdf.AddPage()
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	for _, para := range textParagraphs(string(html)) {
		if para.heading {
			pdf.SetFont("Helvetica", "B", 14)
		} else {
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.MultiCell(0, 5, translate(para.text), "", "L", false)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderBackendError{cause: err}
	}
	return buf.Bytes(), nil
}

type paragraph struct {
	text    string
	heading bool
}

// textParagraphs strips markup and yields one paragraph per text line,
// marking heading-derived lines.
func textParagraphs(html string) []paragraph {
	headings := make(map[string]bool)
	for _, m := range headingPattern.FindAllStringSubmatch(html, -1) {
		headings[normalizeSpace(stdhtml.UnescapeString(tagPattern.ReplaceAllString(m[1], " ")))] = true
	}

	// Tags become line breaks so block elements separate cleanly.
	text := strings.NewReplacer("</div>", "\n", "</p>", "\n", "</li>", "\n",
		"</tr>", "\n", "</h1>", "\n", "</h2>", "\n", "</h3>", "\n", "</td>", " | ",
		"</th>", " | ").Replace(html)
	text = tagPattern.ReplaceAllString(text, " ")

	var paras []paragraph
	for _, line := range strings.Split(text, "\n") {
		line = normalizeSpace(stdhtml.UnescapeString(line))
		if line == "" {
			continue
		}
		paras = append(paras, paragraph{text: line, heading: headings[line]})
	}
	return paras
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
