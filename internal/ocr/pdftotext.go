package ocr

import (
	"context"
	"log/slog"
	"strings"
)

type pdftotext struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// ReadPages runs `pdftotext -layout -enc UTF-8 -eol unix <path> -` and splits on form feeds.
func (p *pdftotext) ReadPages(ctx context.Context, path string) ([]string, error) {
	out, errb, err := p.runner.Run(ctx, p.cfg.Pdftotext, p.logger, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, toolError("pdftotext", errb, err)
	}
	// pdftotext ends every page with \f, so the last element is usually empty
	return strings.Split(string(out), "\f"), nil
}
