package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/arloai/reporting/engine/report"
)

// DeckBuilder is the deterministic local slide generator: a landscape PDF
// deck with a title slide and one slide per rendered block. It is the
// guaranteed-success path, so Build never fails: a defect while laying out
// the rich deck degrades to a plain default layout instead.
type DeckBuilder struct {
	// CreationDate pins deck metadata the same way the PDF backend does.
	CreationDate time.Time
}

// Build produces the deck for a document.
func (b *DeckBuilder) Build(doc *report.Document) []byte {
	deck, err := b.buildRich(doc)
	if err == nil {
		return deck
	}
	return b.buildPlain(doc)
}

func (b *DeckBuilder) buildRich(doc *report.Document) (deck []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("deck layout panicked: %v", r)
		}
	}()

	pdf := b.newDeck()
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	// Title slide.
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 28)
	pdf.CellFormat(0, 40, translate(fmt.Sprintf("%s Campaign Report", titleCase(string(doc.Type)))), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 10, translate("Campaign: "+orAll(doc.CampaignID)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 10, translate(fmt.Sprintf("%s to %s",
		doc.Range.Start.Format("Jan 2, 2006"), doc.Range.End.Format("Jan 2, 2006"))), "", 1, "C", false, 0, "")

	// One slide per block.
	for i := range doc.Blocks {
		block := &doc.Blocks[i]
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 20)
		pdf.CellFormat(0, 15, translate(blockTitle(block.Label, block.WidgetID)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		switch {
		case block.Omitted:
			pdf.MultiCell(0, 6, translate("This widget was omitted; see the data quality notes."), "", "L", false)
		case block.Error != nil:
			pdf.MultiCell(0, 6, translate("This widget could not be rendered."), "", "L", false)
		default:
			for _, para := range textParagraphs(block.HTML) {
				pdf.MultiCell(0, 6, translate(para.text), "", "L", false)
			}
		}
	}

	// Closing slide with provenance.
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 15, "Data Sources", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, src := range doc.Provenance {
		pdf.MultiCell(0, 6, translate("- "+src), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildPlain is the simplest possible deck: a single slide naming the
// report. It exists only as the degradation target for buildRich.
func (b *DeckBuilder) buildPlain(doc *report.Document) []byte {
	pdf := b.newDeck()
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 30, fmt.Sprintf("%s Campaign Report", titleCase(string(doc.Type))), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 10, fmt.Sprintf("%d widget block(s); see the HTML report for details.", len(doc.Blocks)), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		// Nothing variable remains at this layout; Output cannot
		// realistically fail here, but an artifact is still owed.
		return buf.Bytes()
	}
	return buf.Bytes()
}

func (b *DeckBuilder) newDeck() *gofpdf.Fpdf {
	created := b.CreationDate
	if created.IsZero() {
		created = time.Unix(0, 0).UTC()
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetMargins(20, 20, 20)
	return pdf
}

func blockTitle(label, id string) string {
	if label != "" {
		return label
	}
	return id
}

func orAll(campaign string) string {
	if campaign == "" {
		return "(all)"
	}
	return campaign
}

func titleCase(s string) string {
	out := []rune(s)
	upper := true
	for i, r := range out {
		switch {
		case r == '_':
			out[i] = ' '
			upper = true
		case upper && r >= 'a' && r <= 'z':
			out[i] = r - 32
			upper = false
		default:
			upper = false
		}
	}
	return string(out)
}
