package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sprintpoint/paperchase/internal/common"
	"github.com/sprintpoint/paperchase/internal/model"
)

// classificationReply is the JSON shape providers are prompted to return.
type classificationReply struct {
	DocumentType  string          `json:"document_type"`
	Vendor        string          `json:"vendor,omitempty"`
	Date          string          `json:"date,omitempty"`
	StartDate     string          `json:"start_date,omitempty"`
	EndDate       string          `json:"end_date,omitempty"`
	Amount        json.RawMessage `json:"amount,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	BankName      string          `json:"bank_name,omitempty"`
}

// parseClassification converts a provider's raw reply into a validated
// ClassifiedDocument. A reply missing fields required for its type is a
// classification error, never a silently-incomplete record.
func parseClassification(content string) (model.ClassifiedDocument, error) {
	content = cleanMarkdownWrapper(content)

	var reply classificationReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return model.ClassifiedDocument{}, fmt.Errorf("%w: malformed JSON reply: %v", common.ErrClassification, err)
	}

	doc := model.ClassifiedDocument{
		Type:          model.DocType(reply.DocumentType),
		Vendor:        strings.TrimSpace(reply.Vendor),
		InvoiceNumber: strings.TrimSpace(reply.InvoiceNumber),
		BankName:      strings.TrimSpace(reply.BankName),
	}

	var err error
	if doc.Date, err = parseDate(reply.Date); err != nil {
		return model.ClassifiedDocument{}, err
	}
	if doc.PeriodStart, err = parseDate(reply.StartDate); err != nil {
		return model.ClassifiedDocument{}, err
	}
	if doc.PeriodEnd, err = parseDate(reply.EndDate); err != nil {
		return model.ClassifiedDocument{}, err
	}
	if doc.Amount, err = parseAmount(reply.Amount); err != nil {
		return model.ClassifiedDocument{}, err
	}

	if err := doc.Validate(); err != nil {
		return model.ClassifiedDocument{}, fmt.Errorf("%w: %v", common.ErrClassification, err)
	}

	return doc, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q in reply: %v", common.ErrClassification, s, err)
	}
	return t, nil
}

// parseAmount accepts either a JSON number or a numeric string; providers
// are inconsistent about which they emit.
func parseAmount(raw json.RawMessage) (*decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	s := strings.Trim(string(raw), `"`)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad amount %q in reply: %v", common.ErrClassification, s, err)
	}
	return &d, nil
}

// cleanMarkdownWrapper strips a ```json fenced block if the provider
// wrapped its reply in one.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	if idx := strings.LastIndex(content, "```"); idx >= 0 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}
