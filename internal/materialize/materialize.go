// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package materialize turns paper records into processed papers: it
// downloads each document to a scratch directory, extracts its text page
// by page, and splits the text into overlapping chunks. A paper that fails
// any step is logged and left out; the rest of the batch continues.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/chunk"
	"github.com/pdiddy/research-assistant/internal/convert"
	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// errEmptyText marks a document whose extracted text is empty.
var errEmptyText = errors.New("document has no extractable text")

// Materializer downloads, extracts, and splits papers.
type Materializer struct {
	Client    *http.Client
	Extractor convert.PageExtractor
	Splitter  *chunk.Splitter
	Config    types.MaterializeConfig
	UserAgent string
	Logger    *zap.Logger
}

// New builds a Materializer from the runtime configuration. A nil logger
// discards log output.
func New(client *http.Client, extractor convert.PageExtractor, cfg types.Config, logger *zap.Logger) *Materializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Materializer{
		Client:    client,
		Extractor: extractor,
		Splitter:  chunk.New(cfg.Materialize.ChunkSize, cfg.Materialize.ChunkOverlap),
		Config:    cfg.Materialize,
		UserAgent: cfg.HTTP.UserAgent,
		Logger:    logger,
	}
}

// Materialize processes papers in order and returns the ones that
// succeeded, preserving input order. Config.Delay is slept between
// consecutive papers. A cancelled context stops the batch early and
// returns what was processed so far.
func (m *Materializer) Materialize(ctx context.Context, papers []types.Paper) []types.ProcessedPaper {
	processed := make([]types.ProcessedPaper, 0, len(papers))
	for i, p := range papers {
		if i > 0 && m.Config.Delay > 0 {
			select {
			case <-ctx.Done():
				m.Logger.Warn("materialize cancelled", zap.Int("remaining", len(papers)-i), zap.Error(ctx.Err()))
				return processed
			case <-time.After(m.Config.Delay):
			}
		}

		pp, err := m.MaterializePaper(ctx, p)
		if err != nil {
			m.Logger.Warn("failed to process paper",
				zap.String("title", p.Title),
				zap.String("url", p.URL),
				zap.Error(err))
			continue
		}
		m.Logger.Info("processed paper",
			zap.String("title", p.Title),
			zap.Int("chunks", len(pp.Chunks)))
		processed = append(processed, pp)
	}
	return processed
}

// MaterializePaper downloads one paper, extracts its text, and splits it.
func (m *Materializer) MaterializePaper(ctx context.Context, p types.Paper) (types.ProcessedPaper, error) {
	if p.URL == "" {
		return types.ProcessedPaper{}, fmt.Errorf("paper %q has no URL", p.Title)
	}

	if err := os.MkdirAll(m.Config.ScratchDir, 0o755); err != nil {
		return types.ProcessedPaper{}, fmt.Errorf("creating scratch directory: %w", err)
	}

	pdfURL := ResolvePDFURL(p.URL)
	pdfPath := filepath.Join(m.Config.ScratchDir, PDFFilename(p.URL))

	if err := m.download(ctx, pdfURL, pdfPath); err != nil {
		return types.ProcessedPaper{}, fmt.Errorf("downloading %s: %w", pdfURL, err)
	}
	if !m.Config.KeepDownloads {
		defer os.Remove(pdfPath)
	}

	text, err := convert.ExtractText(ctx, m.Extractor, pdfPath)
	if err != nil {
		return types.ProcessedPaper{}, fmt.Errorf("extracting text: %w", err)
	}
	if text == "" {
		return types.ProcessedPaper{}, errEmptyText
	}

	return types.ProcessedPaper{
		Paper:  p,
		Chunks: m.Splitter.Split(text),
	}, nil
}

// download fetches url to destPath using a temporary file renamed on success.
func (m *Materializer) download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if m.UserAgent != "" {
		req.Header.Set("User-Agent", m.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: HTTP request: %w", types.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %w", types.ErrUpstream, httputil.StatusError(url, resp))
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
