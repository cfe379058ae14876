package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sprintpoint/paperchase/internal/model"
)

// writeSheet builds a ledger workbook for tests.
func writeSheet(t *testing.T, headers []string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellStr(sheet, cell, h))
	}
	for r, cells := range rows {
		for c, v := range cells {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), "expenses.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestLoad(t *testing.T) {
	path := writeSheet(t,
		[]string{"Date", "Description", "Amount", "Uploaded"},
		[][]any{
			{"2025-10-04", "UBER TRIP", "-15.50", ""},
			{"2025-10-06", "HMRC PAYE", "-1200.00", "-"},
			{"2025-10-07", "CLIENT PAYMENT", "2400.00", "Yes"},
		})

	l, err := Load(path)
	require.NoError(t, err)

	rows := l.Rows()
	require.Len(t, rows, 3)
	assert.True(t, l.HasAmounts())

	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, "UBER TRIP", rows[0].Description)
	assert.Equal(t, "-15.5", rows[0].Amount.String())
	assert.Equal(t, 2025, rows[0].Date.Year())
	assert.Equal(t, model.UploadedUnset, rows[0].Uploaded)

	assert.Equal(t, model.UploadedExcluded, rows[1].Uploaded)
	assert.Equal(t, model.UploadedYes, rows[2].Uploaded)
	assert.True(t, rows[2].Amount.IsPositive())
}

func TestLoad_MissingRequiredColumns(t *testing.T) {
	path := writeSheet(t, []string{"Date", "Amount"}, nil)
	_, err := Load(path)
	assert.ErrorContains(t, err, "Description")

	path = writeSheet(t, []string{"Description"}, nil)
	_, err = Load(path)
	assert.ErrorContains(t, err, "Date")
}

func TestLoad_NoAmountColumn(t *testing.T) {
	path := writeSheet(t,
		[]string{"Date", "Description"},
		[][]any{{"2025-10-04", "UBER TRIP"}})

	l, err := Load(path)
	require.NoError(t, err)
	assert.False(t, l.HasAmounts())
	require.Len(t, l.Rows(), 1)
}

func TestSave_UpdatesOnlyChangedRows(t *testing.T) {
	path := writeSheet(t,
		[]string{"Date", "Description", "Amount", "Uploaded"},
		[][]any{
			{"2025-10-04", "UBER TRIP", "-15.50", ""},
			{"2025-10-05", "TESCO", "-20.00", ""},
			{"2025-10-06", "HAND EDITED", "-1.00", "maybe"},
		})

	l, err := Load(path)
	require.NoError(t, err)

	l.Rows()[0].Uploaded = model.UploadedYes
	updated, err := l.Save()
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.UploadedYes, reloaded.Rows()[0].Uploaded)
	assert.Equal(t, model.UploadedUnset, reloaded.Rows()[1].Uploaded)
	// Pre-existing manual values are preserved untouched.
	assert.Equal(t, model.UploadedStatus("maybe"), reloaded.Rows()[2].Uploaded)
}

func TestSave_CreatesUploadedColumn(t *testing.T) {
	path := writeSheet(t,
		[]string{"Date", "Description", "Amount"},
		[][]any{{"2025-10-04", "UBER TRIP", "-15.50"}})

	l, err := Load(path)
	require.NoError(t, err)
	l.Rows()[0].Uploaded = model.UploadedYes

	_, err = l.Save()
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	header, err := f.GetCellValue(sheet, "D1")
	require.NoError(t, err)
	assert.Equal(t, "Uploaded", header)

	value, err := f.GetCellValue(sheet, "D2")
	require.NoError(t, err)
	assert.Equal(t, "Yes", value)
}

func TestParseCellDate(t *testing.T) {
	assert.Equal(t, 2025, parseCellDate("2025-10-04").Year())
	assert.Equal(t, 2025, parseCellDate("04/10/2025").Year())
	assert.True(t, parseCellDate("").IsZero())
	assert.True(t, parseCellDate("not a date").IsZero())
}

func TestParseCellAmount(t *testing.T) {
	amt, err := parseCellAmount("1,200.50")
	require.NoError(t, err)
	assert.Equal(t, "1200.5", amt.String())

	amt, err = parseCellAmount("£30.00")
	require.NoError(t, err)
	assert.Equal(t, "30", amt.String())

	_, err = parseCellAmount("")
	assert.Error(t, err)
}
