// Package extract pulls plain text out of PDF documents for classification.
package extract

import (
	"bytes"
	"fmt"

	"github.com/dslipak/pdf"

	"github.com/sprintpoint/paperchase/internal/common"
)

// MaxTextLength is the truncation limit applied to extracted text before it
// is sent to the classifier. The leading pages carry the identifying
// information; anything past this adds cost without signal.
const MaxTextLength = 5000

// PDFExtractor reads text content from PDF files.
type PDFExtractor struct{}

// NewPDFExtractor creates a new PDF text extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Text returns the plain text of the PDF at path, truncated to
// MaxTextLength characters. It has no side effects.
func (e *PDFExtractor) Text(path string) (string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", common.ErrExtraction, path, err)
	}

	content, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", common.ErrExtraction, path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", common.ErrExtraction, path, err)
	}

	text := buf.String()
	if text == "" {
		return "", fmt.Errorf("%w: no text content in %s", common.ErrExtraction, path)
	}

	return Truncate(text, MaxTextLength), nil
}

// Truncate caps s at limit bytes.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
