// Package match pairs classified documents with ledger rows.
//
// Matching follows a fixed strategy order: the first strategy producing
// exactly one candidate wins and short-circuits the rest. A strategy that
// produces several equally-qualifying rows is ambiguous and falls through;
// the matcher never guesses among ties.
package match

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/sprintpoint/paperchase/internal/model"
)

// DefaultExcludePatterns marks rows that never need a receipt: internal
// transfers, tax payments, payroll, and card scheme fees.
var DefaultExcludePatterns = []string{
	`transfer (to|from)`,
	`\bhmrc\b`,
	`\bpaye\b`,
	`salary|wages|pension`,
	`non-sterling transaction fee`,
}

// centTolerance absorbs currency rounding when comparing group sums.
var centTolerance = decimal.RequireFromString("0.01")

// Matcher holds the run's candidate rows and the rows already claimed by
// earlier matches, so a row is offered at most once per run.
type Matcher struct {
	rows       []*model.LedgerRow
	claimed    map[int]bool
	hasAmounts bool
	excluded   int
}

// NewMatcher builds a matcher over the ledger rows and runs the
// auto-exclusion pass: any unset row whose description matches one of the
// patterns is marked "-" immediately and never offered as a candidate.
func NewMatcher(rows []*model.LedgerRow, hasAmounts bool, excludePatterns []string) (*Matcher, error) {
	m := &Matcher{
		rows:       rows,
		claimed:    make(map[int]bool),
		hasAmounts: hasAmounts,
	}

	for _, pattern := range excludePatterns {
		re, err := regexp.Compile(`(?i)` + pattern)
		if err != nil {
			return nil, fmt.Errorf("bad exclusion pattern %q: %w", pattern, err)
		}
		for _, row := range rows {
			if row.Uploaded == model.UploadedUnset && re.MatchString(row.Description) {
				row.Uploaded = model.UploadedExcluded
				m.excluded++
			}
		}
	}

	return m, nil
}

// Excluded returns the number of rows marked "-" by the auto-exclusion pass.
func (m *Matcher) Excluded() int {
	return m.excluded
}

// claimable reports whether a row may still be offered as a candidate.
func (m *Matcher) claimable(row *model.LedgerRow) bool {
	return row.Uploaded == model.UploadedUnset && !m.claimed[row.Index]
}

// expensePool returns candidate rows for an expense document: outgoing
// rows in the same month and year as the document date. Sheets without an
// Amount column cannot be sign-filtered, so every same-month row qualifies.
func (m *Matcher) expensePool(doc *model.ClassifiedDocument) []*model.LedgerRow {
	var pool []*model.LedgerRow
	for _, row := range m.rows {
		if !m.claimable(row) {
			continue
		}
		if row.Date.Month() != doc.Date.Month() || row.Date.Year() != doc.Date.Year() {
			continue
		}
		if m.hasAmounts && !row.Amount.IsNegative() {
			continue
		}
		pool = append(pool, row)
	}
	return pool
}

// MatchExpenses resolves a batch of expense documents against the ledger.
// Amazon-family documents are grouped by expense date and matched as a
// combined total; all other documents run the ordered strategy pipeline
// individually. Results come back in document order, with one result
// covering each Amazon group.
func (m *Matcher) MatchExpenses(docs []*model.ClassifiedDocument) []*model.MatchResult {
	var results []*model.MatchResult

	grouped := make(map[string]bool)
	for _, doc := range docs {
		if !IsAmazonVendor(doc.Vendor) {
			results = append(results, m.matchOne(doc))
			continue
		}

		key := doc.Date.Format("2006-01-02")
		if grouped[key] {
			continue
		}
		grouped[key] = true

		var group []*model.ClassifiedDocument
		for _, d := range docs {
			if IsAmazonVendor(d.Vendor) && d.Date.Equal(doc.Date) {
				group = append(group, d)
			}
		}
		results = append(results, m.matchAmazonGroup(group))
	}

	return results
}

// matchOne runs the ordered expense strategies for a single document.
func (m *Matcher) matchOne(doc *model.ClassifiedDocument) *model.MatchResult {
	result := &model.MatchResult{Documents: []*model.ClassifiedDocument{doc}}

	pool := m.expensePool(doc)
	for _, strategy := range expenseStrategies {
		rows := strategy.Find(doc, pool)
		switch len(rows) {
		case 0:
			// Nothing qualified; try the next strategy.
		case 1:
			m.claimed[rows[0].Index] = true
			result.Strategy = strategy.Name
			result.Rows = rows
			return result
		default:
			// Ambiguous: more than one equally-qualifying row. Fall
			// through rather than guess.
		}
	}

	return result
}

// matchAmazonGroup sums the amounts of all same-date Amazon documents and
// looks for the single ledger row carrying the combined charge. This is
// the only many-to-one match; it is all-or-nothing for the group.
func (m *Matcher) matchAmazonGroup(group []*model.ClassifiedDocument) *model.MatchResult {
	result := &model.MatchResult{Documents: group}

	sum := decimal.Zero
	for _, doc := range group {
		if doc.Amount == nil {
			// Group total is unknowable; report the whole group unmatched.
			return result
		}
		sum = sum.Add(doc.Amount.Abs())
	}

	var candidates []*model.LedgerRow
	for _, row := range m.expensePool(group[0]) {
		if row.Amount.Abs().Sub(sum).Abs().LessThanOrEqual(centTolerance) {
			candidates = append(candidates, row)
		}
	}

	if len(candidates) == 1 {
		m.claimed[candidates[0].Index] = true
		result.Strategy = StrategyAmazonGroup
		result.Rows = candidates
	}
	return result
}

// MatchInvoice pairs an incoming invoice with the single ledger row whose
// incoming amount equals the invoice total exactly. No date restriction;
// ties mean manual review.
func (m *Matcher) MatchInvoice(doc *model.ClassifiedDocument) *model.MatchResult {
	result := &model.MatchResult{Documents: []*model.ClassifiedDocument{doc}}
	if !m.hasAmounts || doc.Amount == nil {
		return result
	}

	var candidates []*model.LedgerRow
	for _, row := range m.rows {
		if !m.claimable(row) || !row.Amount.IsPositive() {
			continue
		}
		if row.Amount.Equal(doc.Amount.Abs()) {
			candidates = append(candidates, row)
		}
	}

	if len(candidates) == 1 {
		m.claimed[candidates[0].Index] = true
		result.Strategy = StrategyInvoiceAmount
		result.Rows = candidates
	}
	return result
}
