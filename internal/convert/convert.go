// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert extracts plain text from PDF files, one string per page,
// with pluggable backends: a pure-Go reader and the pdftotext binary.
package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// PageExtractor returns the text of every page of a PDF in page order.
// Pages without text yield empty strings so page positions are preserved.
type PageExtractor interface {
	// Name returns the backend identifier.
	Name() string

	// ExtractPages reads the PDF at pdfPath.
	ExtractPages(ctx context.Context, pdfPath string) ([]string, error)
}

// New returns the extractor selected by kind.
func New(kind types.Extractor) (PageExtractor, error) {
	switch kind {
	case types.ExtractorPure, "":
		return &PureExtractor{}, nil
	case types.ExtractorPdftotext:
		return NewPdftotextExtractor()
	default:
		return nil, fmt.Errorf("unsupported extractor %q: use pure or pdftotext", kind)
	}
}

// JoinPages concatenates page texts with a single newline between pages.
func JoinPages(pages []string) string {
	return strings.Join(pages, "\n")
}

// ExtractText runs e over pdfPath and joins the pages.
func ExtractText(ctx context.Context, e PageExtractor, pdfPath string) (string, error) {
	pages, err := e.ExtractPages(ctx, pdfPath)
	if err != nil {
		return "", err
	}
	return JoinPages(pages), nil
}
