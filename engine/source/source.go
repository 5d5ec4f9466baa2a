package source

import (
	"context"
	"io"

	"github.com/arloai/reporting/engine/core"
)

// RawRow is one loosely-typed row as read from a source. Values stay strings
// until normalization; the reader does no interpretation.
type RawRow map[string]string

// RawRecordSet is the source-shaped output of one reader invocation. It is
// ephemeral: the normalizer consumes it and it is discarded.
type RawRecordSet struct {
	Kind   core.SourceKind
	Source string
	Header []string
	Rows   []RawRow
}

// Reader turns one input stream into a RawRecordSet. Implementations exist
// per source kind; parse quality beyond the row shape is their own business.
type Reader interface {
	Kind() core.SourceKind
	Read(ctx context.Context, r io.Reader, name string) (*RawRecordSet, error)
}

// ForKind returns the reader for a source kind.
func ForKind(kind core.SourceKind) (Reader, error) {
	switch kind {
	case core.KindCSV:
		return &CSVReader{}, nil
	case core.KindJSON:
		return &JSONReader{}, nil
	case core.KindSpreadsheet:
		return &SpreadsheetReader{}, nil
	case core.KindPDF:
		return &PDFReader{}, nil
	default:
		return nil, newReadError(nil, "", ErrCodeUnsupported, "unsupported source kind: "+kind.String())
	}
}

// rowsFromTable converts a header row plus data rows into RawRows, skipping
// cells beyond the header width.
func rowsFromTable(header []string, table [][]string) []RawRow {
	rows := make([]RawRow, 0, len(table))
	for _, cells := range table {
		row := make(RawRow, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = cells[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}
