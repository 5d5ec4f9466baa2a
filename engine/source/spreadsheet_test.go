package source

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/arloai/reporting/engine/core"
)

func xlsxFixture(t *testing.T, fill func(f *excelize.File)) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	fill(f)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func setRow(t *testing.T, f *excelize.File, sheet string, row int, cells ...string) {
	t.Helper()
	for i, v := range cells {
		axis, err := excelize.CoordinatesToCellName(i+1, row)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, axis, v))
	}
}

func TestSpreadsheetReader_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("Should read header and rows from the first sheet", func(t *testing.T) {
		in := xlsxFixture(t, func(f *excelize.File) {
			setRow(t, f, "Sheet1", 1, "date", "impressions", "clicks")
			setRow(t, f, "Sheet1", 2, "2025-07-01", "1000", "50")
			setRow(t, f, "Sheet1", 3, "2025-07-02", "800", "40")
		})

		set, err := (&SpreadsheetReader{}).Read(ctx, in, "export.xlsx")
		require.NoError(t, err)

		assert.Equal(t, core.KindSpreadsheet, set.Kind)
		assert.Equal(t, []string{"date", "impressions", "clicks"}, set.Header)
		require.Len(t, set.Rows, 2)
		assert.Equal(t, "1000", set.Rows[0]["impressions"])
		assert.Equal(t, "2025-07-02", set.Rows[1]["date"])
	})

	t.Run("Should prefer the Data sheet when present", func(t *testing.T) {
		in := xlsxFixture(t, func(f *excelize.File) {
			setRow(t, f, "Sheet1", 1, "decoy")
			_, err := f.NewSheet("Data")
			require.NoError(t, err)
			setRow(t, f, "Data", 1, "date", "spend")
			setRow(t, f, "Data", 2, "2025-07-01", "12.50")
		})

		set, err := (&SpreadsheetReader{}).Read(ctx, in, "export.xlsx")
		require.NoError(t, err)

		assert.Equal(t, []string{"date", "spend"}, set.Header)
		require.Len(t, set.Rows, 1)
		assert.Equal(t, "12.50", set.Rows[0]["spend"])
	})

	t.Run("Should fail when a forced sheet does not exist", func(t *testing.T) {
		in := xlsxFixture(t, func(f *excelize.File) {
			setRow(t, f, "Sheet1", 1, "date", "clicks")
		})

		_, err := (&SpreadsheetReader{Sheet: "Q3"}).Read(ctx, in, "export.xlsx")
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
	})

	t.Run("Should fail on a payload that is not a workbook", func(t *testing.T) {
		_, err := (&SpreadsheetReader{}).Read(ctx, strings.NewReader("not a zip"), "garbage.xlsx")
		var readErr *ReadError
		require.ErrorAs(t, err, &readErr)
		assert.Equal(t, ErrCodeRead, readErr.Code)
	})
}
