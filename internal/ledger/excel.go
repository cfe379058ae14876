// Package ledger loads and persists the reconciliation spreadsheet.
//
// The ledger is read once at run start, selectively mutated in memory as
// matches are found, and written back once at run end. Only the Uploaded
// column ever changes; every other cell is preserved as-is.
package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/sprintpoint/paperchase/internal/common"
	"github.com/sprintpoint/paperchase/internal/model"
)

// Ledger is the in-memory form of the reconciliation spreadsheet.
type Ledger struct {
	rows     []*model.LedgerRow
	original []model.UploadedStatus
	path     string
	sheet    string

	dateCol        int
	descCol        int
	amountCol      int // 0 when the sheet has no Amount column
	uploadedCol    int
	uploadedHeader bool // false when the Uploaded column must be created on save
}

// dateLayouts covers the formats excelize renders date cells in, plus the
// string forms seen in hand-edited sheets.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"01-02-06",
	"1/2/06",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
}

// Load reads the ledger at path. Date and Description columns are
// required; Amount is optional; Uploaded is created on save when absent.
func Load(path string) (*Ledger, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("cannot open spreadsheet %s", path), err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, common.NewUserError("cannot read spreadsheet rows", err)
	}
	if len(cells) == 0 {
		return nil, common.NewUserError("spreadsheet has no header row", nil)
	}

	l := &Ledger{path: path, sheet: sheet}
	for i, header := range cells[0] {
		switch strings.TrimSpace(header) {
		case "Date":
			l.dateCol = i + 1
		case "Description":
			l.descCol = i + 1
		case "Amount":
			l.amountCol = i + 1
		case "Uploaded":
			l.uploadedCol = i + 1
			l.uploadedHeader = true
		}
	}
	if l.dateCol == 0 {
		return nil, common.NewUserError("spreadsheet must have a 'Date' column", nil)
	}
	if l.descCol == 0 {
		return nil, common.NewUserError("spreadsheet must have a 'Description' column", nil)
	}
	if l.uploadedCol == 0 {
		l.uploadedCol = len(cells[0]) + 1
	}

	for i, rowCells := range cells[1:] {
		row := &model.LedgerRow{Index: i}
		row.Date = parseCellDate(cellAt(rowCells, l.dateCol))
		row.Description = cellAt(rowCells, l.descCol)
		if l.amountCol > 0 {
			if amt, err := parseCellAmount(cellAt(rowCells, l.amountCol)); err == nil {
				row.Amount = amt
			}
		}
		row.Uploaded = model.UploadedStatus(strings.TrimSpace(cellAt(rowCells, l.uploadedCol)))
		l.rows = append(l.rows, row)
		l.original = append(l.original, row.Uploaded)
	}

	return l, nil
}

// Rows returns the loaded rows in sheet order.
func (l *Ledger) Rows() []*model.LedgerRow {
	return l.rows
}

// HasAmounts reports whether the sheet carries an Amount column.
func (l *Ledger) HasAmounts() bool {
	return l.amountCol > 0
}

// Save writes changed Uploaded values back into the workbook, leaving all
// untouched rows and columns exactly as loaded.
func (l *Ledger) Save() (int, error) {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return 0, common.NewUserError(fmt.Sprintf("cannot reopen spreadsheet %s", l.path), err)
	}
	defer func() { _ = f.Close() }()

	if !l.uploadedHeader {
		cell, _ := excelize.CoordinatesToCellName(l.uploadedCol, 1)
		if err := f.SetCellStr(l.sheet, cell, "Uploaded"); err != nil {
			return 0, fmt.Errorf("writing Uploaded header: %w", err)
		}
	}

	updated := 0
	for i, row := range l.rows {
		if row.Uploaded == l.original[i] {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(l.uploadedCol, i+2)
		if err != nil {
			return updated, fmt.Errorf("cell name for row %d: %w", i, err)
		}
		if err := f.SetCellStr(l.sheet, cell, string(row.Uploaded)); err != nil {
			return updated, fmt.Errorf("writing row %d: %w", i, err)
		}
		updated++
	}

	if err := f.Save(); err != nil {
		return updated, common.NewUserError("cannot save spreadsheet", err)
	}
	return updated, nil
}

func cellAt(cells []string, col int) string {
	if col <= 0 || col > len(cells) {
		return ""
	}
	return cells[col-1]
}

func parseCellDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	// Serial date from an unformatted numeric cell.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseCellAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "£")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(s)
}
