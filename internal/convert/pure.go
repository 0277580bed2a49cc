// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PureExtractor reads PDFs in-process with github.com/ledongthuc/pdf.
type PureExtractor struct{}

// Name returns the backend identifier.
func (PureExtractor) Name() string { return "pure" }

// ExtractPages opens pdfPath and returns the plain text of each page.
// Pages whose dictionary is missing yield an empty string.
func (PureExtractor) ExtractPages(ctx context.Context, pdfPath string) ([]string, error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	n := r.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("reading page %d of %s: %w", i, pdfPath, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
