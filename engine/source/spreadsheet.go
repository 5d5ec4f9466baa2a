package source

import (
	"context"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/arloai/reporting/engine/core"
)

// dataSheetName is preferred when present; campaign exports conventionally
// put the row data on a sheet named "Data".
const dataSheetName = "Data"

// SpreadsheetReader reads xlsx workbooks. The first row of the chosen sheet
// is the header.
type SpreadsheetReader struct {
	// Sheet optionally forces a sheet by name. Empty selects the "Data"
	// sheet when it exists, the first sheet otherwise.
	Sheet string
}

func (r *SpreadsheetReader) Kind() core.SourceKind {
	return core.KindSpreadsheet
}

func (r *SpreadsheetReader) Read(ctx context.Context, in io.Reader, name string) (*RawRecordSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, newReadError(err, name, ErrCodeRead, "spreadsheet read canceled")
	}
	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, newReadError(err, name, ErrCodeRead, "failed to open spreadsheet")
	}
	defer f.Close()

	sheet := r.pickSheet(f)
	if sheet == "" {
		expected := "a workbook with at least one sheet"
		if r.Sheet != "" {
			expected = "a workbook containing sheet " + r.Sheet
		}
		return nil, &FormatError{Source: name, Expected: expected}
	}

	table, err := f.GetRows(sheet)
	if err != nil {
		return nil, newReadError(err, name, ErrCodeRead, "failed to read sheet "+sheet)
	}
	if len(table) == 0 {
		return nil, &FormatError{Source: name, Expected: "a header row followed by data rows"}
	}

	header := make([]string, len(table[0]))
	for i, col := range table[0] {
		header[i] = strings.TrimSpace(col)
	}

	return &RawRecordSet{
		Kind:   core.KindSpreadsheet,
		Source: name,
		Header: header,
		Rows:   rowsFromTable(header, table[1:]),
	}, nil
}

func (r *SpreadsheetReader) pickSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	if r.Sheet != "" {
		for _, s := range sheets {
			if s == r.Sheet {
				return s
			}
		}
		return ""
	}
	for _, s := range sheets {
		if s == dataSheetName {
			return s
		}
	}
	return sheets[0]
}
