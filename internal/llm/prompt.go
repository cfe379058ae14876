package llm

import "fmt"

// buildPrompt renders the extraction prompt for one document's text.
func buildPrompt(text string) string {
	return fmt.Sprintf(`Analyze this document and extract information based on its type.

FIRST, determine the document type:
1. "bank_statement" - A bank statement showing account transactions over a period
2. "expense" - A receipt, bill, or invoice FROM another company (expense to be paid/already paid)
3. "incoming_invoice" - An invoice from a supplier awaiting reconciliation against an incoming payment
4. "sprintpoint_invoice" - An invoice issued BY SprintPoint Ltd (outgoing invoice)

THEN extract the relevant information:

For BANK STATEMENTS:
- bank_name: The bank's name (e.g., "HSBC", "Barclays", "NatWest")
- start_date: Statement period start date in YYYY-MM-DD format
- end_date: Statement period end date in YYYY-MM-DD format

For EXPENSES:
- vendor: The company that issued the document (use well-known brand names, not legal entities)
  Examples: Use "Uber" not "DECADA OUSADA LDA", "Amazon" not "Amazon EU S.a r.l."
- date: The document date in YYYY-MM-DD format
- amount: The total amount as a decimal number, if clearly stated (optional)

For INCOMING INVOICES:
- vendor: The issuing company
- amount: The invoice total as a decimal number
- invoice_number: The invoice reference, if present (optional)

For SPRINTPOINT INVOICES:
- Just identify it as type "sprintpoint_invoice"

Return ONLY a JSON object:
{
  "document_type": "bank_statement" | "expense" | "incoming_invoice" | "sprintpoint_invoice",
  // Include relevant fields based on type.
}

Document text:
%s

JSON response:`, text)
}
