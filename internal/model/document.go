// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DocType identifies the kind of financial document a PDF was classified as.
type DocType string

// Document type constants.
const (
	TypeExpense            DocType = "expense"
	TypeIncomingInvoice    DocType = "incoming_invoice"
	TypeBankStatement      DocType = "bank_statement"
	TypeSprintPointInvoice DocType = "sprintpoint_invoice"
	TypeUnknown            DocType = "unknown"
)

// ClassifiedDocument is the structured result of classifying one PDF.
// Which fields are populated depends on Type; Validate enforces the
// per-type requirements.
type ClassifiedDocument struct {
	Date          time.Time
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Amount        *decimal.Decimal
	Type          DocType
	Vendor        string
	InvoiceNumber string
	BankName      string
	SourcePath    string
}

// Validate checks that every field required for the document's type is
// present. Callers must not proceed to renaming or matching with a
// document that fails validation.
func (d *ClassifiedDocument) Validate() error {
	switch d.Type {
	case TypeExpense:
		if d.Vendor == "" {
			return fmt.Errorf("expense document missing vendor")
		}
		if d.Date.IsZero() {
			return fmt.Errorf("expense document missing date")
		}
	case TypeIncomingInvoice:
		if d.Vendor == "" {
			return fmt.Errorf("incoming invoice missing vendor")
		}
		if d.Amount == nil {
			return fmt.Errorf("incoming invoice missing amount")
		}
	case TypeBankStatement:
		if d.BankName == "" {
			return fmt.Errorf("bank statement missing bank name")
		}
		if d.PeriodStart.IsZero() || d.PeriodEnd.IsZero() {
			return fmt.Errorf("bank statement missing statement period")
		}
	case TypeSprintPointInvoice:
		// Terminal classification; no further fields required.
	default:
		return fmt.Errorf("unrecognized document type: %q", d.Type)
	}
	return nil
}
