package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/ocr"
)

type OCRAdapter struct {
	e      *ocr.Extractor
	logger *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, logger *slog.Logger) *OCRAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRAdapter{e: e, logger: logger}
}

// Extract spools in-memory content to a temp file because poppler only reads paths.
func (a *OCRAdapter) Extract(ctx context.Context, doc Document) (ExtractedText, error) {
	path := doc.Path
	if path == "" {
		if len(doc.Content) == 0 {
			return ExtractedText{}, common.NewExtractionError("extract", "empty document", nil)
		}
		tmp, cleanup, err := spool(doc)
		if err != nil {
			return ExtractedText{}, common.NewExtractionError("extract", "spool document", err)
		}
		defer cleanup()
		path = tmp
	}

	r, err := a.e.Extract(ctx, path)
	return ExtractedText{
		Text:       r.Text,
		Pages:      r.Pages,
		PageCount:  len(r.Pages),
		Method:     r.Method,
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Confidence: r.Confidence,
	}, err
}

func spool(doc Document) (string, func(), error) {
	dir, err := os.MkdirTemp("", "ca-doc-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	name := filepath.Base(doc.Name)
	if name == "." || name == string(filepath.Separator) || filepath.Ext(name) == "" {
		name = "document.pdf"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc.Content, 0o600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write %s: %w", path, err)
	}
	return path, cleanup, nil
}
