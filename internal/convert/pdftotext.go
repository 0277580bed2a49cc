// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const binPdftotext = "pdftotext"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PdftotextExtractor shells out to poppler's pdftotext. Pages are separated
// by form feeds in its output.
type PdftotextExtractor struct {
	exec executor
}

// NewPdftotextExtractor verifies pdftotext is on PATH.
func NewPdftotextExtractor() (*PdftotextExtractor, error) {
	return newPdftotextExtractor(osExecutor{})
}

func newPdftotextExtractor(exec executor) (*PdftotextExtractor, error) {
	if _, err := exec.LookPath(binPdftotext); err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", binPdftotext, err)
	}
	return &PdftotextExtractor{exec: exec}, nil
}

// Name returns the backend identifier.
func (e *PdftotextExtractor) Name() string { return binPdftotext }

// ExtractPages runs pdftotext on pdfPath and splits its output into pages.
func (e *PdftotextExtractor) ExtractPages(ctx context.Context, pdfPath string) ([]string, error) {
	out, err := e.exec.Output(ctx, binPdftotext, "-enc", "UTF-8", pdfPath, "-")
	if err != nil {
		return nil, fmt.Errorf("running %s on %s: %w", binPdftotext, pdfPath, err)
	}
	return splitFormFeeds(string(out)), nil
}

// splitFormFeeds splits pdftotext output on form feeds. The feed after the
// last page does not start a new page.
func splitFormFeeds(out string) []string {
	out = strings.TrimSuffix(out, "\f")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\f")
}
