package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UploadedStatus is the tri-state value of a ledger row's Uploaded column.
type UploadedStatus string

// Uploaded column values.
const (
	UploadedUnset    UploadedStatus = ""
	UploadedExcluded UploadedStatus = "-"
	UploadedYes      UploadedStatus = "Yes"
)

// LedgerRow is one transaction row from the reconciliation spreadsheet.
// A row's identity is its position in the sheet; rows are never deleted or
// reordered during a run, only their Uploaded value changes.
type LedgerRow struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Uploaded    UploadedStatus
	Index       int // zero-based position in the loaded sheet
}

// MatchResult records how a document (or a group of documents) was paired
// with ledger rows, for reporting and for the first-strategy-wins rule.
type MatchResult struct {
	Strategy  string
	Documents []*ClassifiedDocument
	Rows      []*LedgerRow
}

// Matched reports whether the result pairs at least one document to a row.
func (m *MatchResult) Matched() bool {
	return len(m.Rows) > 0
}
