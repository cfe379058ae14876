package llm

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprintpoint/paperchase/internal/common"
	"github.com/sprintpoint/paperchase/internal/model"
)

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    func(t *testing.T, doc model.ClassifiedDocument)
		wantErr error
	}{
		{
			name:    "expense",
			content: `{"document_type": "expense", "vendor": "Uber", "date": "2025-10-04", "amount": 15.50}`,
			want: func(t *testing.T, doc model.ClassifiedDocument) {
				assert.Equal(t, model.TypeExpense, doc.Type)
				assert.Equal(t, "Uber", doc.Vendor)
				assert.Equal(t, time.Date(2025, 10, 4, 0, 0, 0, 0, time.UTC), doc.Date)
				require.NotNil(t, doc.Amount)
				assert.Equal(t, "15.5", doc.Amount.String())
			},
		},
		{
			name: "markdown fenced reply",
			content: "```json\n" +
				`{"document_type": "expense", "vendor": "Hetzner", "date": "2025-03-01"}` +
				"\n```",
			want: func(t *testing.T, doc model.ClassifiedDocument) {
				assert.Equal(t, "Hetzner", doc.Vendor)
				assert.Nil(t, doc.Amount)
			},
		},
		{
			name:    "bank statement",
			content: `{"document_type": "bank_statement", "bank_name": "HSBC", "start_date": "2025-09-01", "end_date": "2025-09-30"}`,
			want: func(t *testing.T, doc model.ClassifiedDocument) {
				assert.Equal(t, model.TypeBankStatement, doc.Type)
				assert.Equal(t, "HSBC", doc.BankName)
				assert.Equal(t, time.September, doc.PeriodStart.Month())
			},
		},
		{
			name:    "incoming invoice with string amount",
			content: `{"document_type": "incoming_invoice", "vendor": "Acme", "amount": "1200.00", "invoice_number": "INV-42"}`,
			want: func(t *testing.T, doc model.ClassifiedDocument) {
				require.NotNil(t, doc.Amount)
				assert.True(t, doc.Amount.Equal(mustDecimal("1200")))
				assert.Equal(t, "INV-42", doc.InvoiceNumber)
			},
		},
		{
			name:    "sprintpoint invoice",
			content: `{"document_type": "sprintpoint_invoice"}`,
			want: func(t *testing.T, doc model.ClassifiedDocument) {
				assert.Equal(t, model.TypeSprintPointInvoice, doc.Type)
			},
		},
		{
			name:    "expense missing required vendor",
			content: `{"document_type": "expense", "date": "2025-10-04"}`,
			wantErr: common.ErrClassification,
		},
		{
			name:    "unknown type",
			content: `{"document_type": "unknown"}`,
			wantErr: common.ErrClassification,
		},
		{
			name:    "malformed date",
			content: `{"document_type": "expense", "vendor": "Uber", "date": "04/10/2025"}`,
			wantErr: common.ErrClassification,
		},
		{
			name:    "not JSON at all",
			content: `I could not classify this document.`,
			wantErr: common.ErrClassification,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parseClassification(tt.content)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.want(t, doc)
		})
	}
}

func TestCleanMarkdownWrapper(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper(`{"a":1}`))
}
