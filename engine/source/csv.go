package source

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/arloai/reporting/engine/core"
)

// CSVReader reads comma-separated exports. The first row is the header.
type CSVReader struct{}

func (r *CSVReader) Kind() core.SourceKind {
	return core.KindCSV
}

func (r *CSVReader) Read(ctx context.Context, in io.Reader, name string) (*RawRecordSet, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &FormatError{Source: name, Expected: "a header row followed by data rows"}
		}
		return nil, newReadError(err, name, ErrCodeRead, "failed to read CSV header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var table [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, newReadError(err, name, ErrCodeRead, "CSV read canceled")
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newReadError(err, name, ErrCodeRead, "failed to read CSV row")
		}
		table = append(table, record)
	}

	return &RawRecordSet{
		Kind:   core.KindCSV,
		Source: name,
		Header: header,
		Rows:   rowsFromTable(header, table),
	}, nil
}
