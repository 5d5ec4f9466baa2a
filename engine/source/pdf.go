package source

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"

	ledongpdf "github.com/ledongthuc/pdf"

	"github.com/arloai/reporting/engine/core"
)

// columnSplit separates tabular PDF text on tabs or runs of two and more
// spaces, the way table extraction collapses cell gaps.
var columnSplit = regexp.MustCompile(`\t|\s{2,}`)

// PDFReader extracts tabular text from PDF summaries. Extraction is
// best-effort: whatever lines survive extraction become rows, with the first
// extracted line treated as the header.
type PDFReader struct{}

func (r *PDFReader) Kind() core.SourceKind {
	return core.KindPDF
}

func (r *PDFReader) Read(ctx context.Context, in io.Reader, name string) (*RawRecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, newReadError(err, name, ErrCodeRead, "PDF read canceled")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, newReadError(err, name, ErrCodeRead, "failed to read PDF source")
	}

	doc, err := ledongpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, newReadError(err, name, ErrCodeRead, "failed to parse PDF")
	}

	text, err := extractPlainText(doc)
	if err != nil {
		return nil, newReadError(err, name, ErrCodeRead, "failed to extract PDF text")
	}

	lines := tabularLines(text)
	if len(lines) == 0 {
		return nil, &FormatError{Source: name, Expected: "extractable tabular text with a header line"}
	}

	header := columnSplit.Split(lines[0], -1)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	table := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells := columnSplit.Split(line, -1)
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		table = append(table, cells)
	}

	return &RawRecordSet{
		Kind:   core.KindPDF,
		Source: name,
		Header: header,
		Rows:   rowsFromTable(header, table),
	}, nil
}

func extractPlainText(doc *ledongpdf.Reader) (string, error) {
	reader, err := doc.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func tabularLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		// A tabular line has at least two columns.
		if len(columnSplit.Split(line, -1)) < 2 {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
