package extract

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads the text layer of the first pages of a PDF.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (p *PDFExtractor) Name() string { return "pdf" }

func (p *PDFExtractor) CanExtract(filePath string) bool {
	return hasExt(filePath, ".pdf")
}

// Extract concatenates the text of the first min(pageBudget, pageCount) pages.
func (p *PDFExtractor) Extract(filePath string, pageBudget int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pages := r.NumPage()
	if pageBudget < pages {
		pages = pageBudget
	}

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		txt, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		b.WriteString(txt)
	}

	return b.String(), nil
}
