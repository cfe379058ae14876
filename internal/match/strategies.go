package match

import (
	"regexp"
	"strings"

	"github.com/sprintpoint/paperchase/internal/model"
)

// Strategy names, used as MatchResult tags in the run report.
const (
	StrategyVendor        = "vendor"
	StrategyFirstWord     = "first-word"
	StrategyURL           = "url"
	StrategyAmazonGroup   = "amazon-group"
	StrategyInvoiceAmount = "invoice-amount"
)

// Strategy is one matching heuristic: a pure function from a document and
// a candidate pool to the rows that qualify. The Runner applies strategies
// in order and enforces the tie/fallthrough rule uniformly.
type Strategy struct {
	Name string
	Find func(doc *model.ClassifiedDocument, pool []*model.LedgerRow) []*model.LedgerRow
}

// expenseStrategies is the fixed strategy order for expense documents.
var expenseStrategies = []Strategy{
	{Name: StrategyVendor, Find: findByVendor},
	{Name: StrategyFirstWord, Find: findByFirstWord},
	{Name: StrategyURL, Find: findByURL},
}

// findByVendor matches rows whose description contains the vendor name as
// a whole word, case-insensitively.
func findByVendor(doc *model.ClassifiedDocument, pool []*model.LedgerRow) []*model.LedgerRow {
	return findByWord(doc.Vendor, pool)
}

// findByFirstWord falls back to the vendor's first token of at least four
// characters. Vendors without such a token skip this strategy.
func findByFirstWord(doc *model.ClassifiedDocument, pool []*model.LedgerRow) []*model.LedgerRow {
	for _, token := range strings.Fields(doc.Vendor) {
		if len(token) >= 4 {
			return findByWord(token, pool)
		}
	}
	return nil
}

func findByWord(word string, pool []*model.LedgerRow) []*model.LedgerRow {
	if word == "" {
		return nil
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return nil
	}

	var rows []*model.LedgerRow
	for _, row := range pool {
		if re.MatchString(row.Description) {
			rows = append(rows, row)
		}
	}
	return rows
}

// urlLike extracts domain-shaped substrings from a description.
var urlLike = regexp.MustCompile(`(?i)[a-z0-9][a-z0-9.-]*\.[a-z]{2,}(?:/\S*)?`)

// findByURL matches when the vendor name is embedded inside a URL-like
// substring of the description, e.g. vendor "Hetzner" against
// "WWW.HETZNER.COM". Vendors shorter than five characters produce too many
// accidental hits and are skipped.
func findByURL(doc *model.ClassifiedDocument, pool []*model.LedgerRow) []*model.LedgerRow {
	key := strings.ToLower(strings.ReplaceAll(doc.Vendor, " ", ""))
	if len(key) < 5 {
		return nil
	}

	var rows []*model.LedgerRow
	for _, row := range pool {
		for _, fragment := range urlLike.FindAllString(row.Description, -1) {
			if strings.Contains(strings.ToLower(fragment), key) {
				rows = append(rows, row)
				break
			}
		}
	}
	return rows
}

// IsAmazonVendor reports whether a vendor belongs to the Amazon family of
// names the classifier produces for marketplace receipts.
func IsAmazonVendor(vendor string) bool {
	v := strings.ToLower(vendor)
	return strings.Contains(v, "amazon") || strings.Contains(v, "amzn")
}
