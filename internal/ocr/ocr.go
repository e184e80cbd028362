// Package ocr turns a PDF contract into text: the embedded text layer first,
// then page rasterization plus tesseract when the layer is empty.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir         string
	EnableTSVConfidence bool

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

type ExtractionResult struct {
	Text       string
	Pages      []string // non-empty page texts in document order
	Method     string   // constants.MethodPDFText | constants.MethodPDFOCR
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32 // mean tesseract word confidence in 0..1; 0 when unknown
}

// PageTextReader reads the embedded text layer, one string per page.
type PageTextReader interface {
	ReadPages(ctx context.Context, path string) ([]string, error)
}

// PageOCR rasterizes every page and recognizes its text.
type PageOCR interface {
	OCRPages(ctx context.Context, path string) (OCRResult, error)
}

type OCRResult struct {
	Pages      []string
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg       Config
	textLayer PageTextReader
	ocr       PageOCR
	logger    *slog.Logger
}

type Option func(*Extractor)

// WithRunner routes the default poppler and tesseract strategies through r.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		e.textLayer = &pdftotext{cfg: e.cfg, runner: r, logger: e.logger}
		e.ocr = &tesseractOCR{cfg: e.cfg, runner: r, logger: e.logger}
	}
}

func WithTextLayer(r PageTextReader) Option {
	return func(e *Extractor) { e.textLayer = r }
}

func WithOCR(o PageOCR) Option {
	return func(e *Extractor) { e.ocr = o }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	e := &Extractor{cfg: cfg, logger: logger}
	WithRunner(execRunner{})(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the text layer and falls back to OCR once when it yields only whitespace.
// It fails with an extraction error when neither strategy recovers any text.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	log := common.LoggerFromContext(ctx, e.logger).With("path", path)

	if constants.MapExtToFormat(filepath.Ext(path)) != constants.PDF {
		log.Error("unsupported extension", "extension", filepath.Ext(path))
		return ExtractionResult{}, common.NewExtractionError("extract", "unsupported document format",
			fmt.Errorf("extension %q", filepath.Ext(path)))
	}

	res := ExtractionResult{Language: e.cfg.TesseractLang}
	var causes []error

	pages, err := e.textLayer.ReadPages(ctx, path)
	if err != nil {
		log.Warn("text layer unavailable", "error", err)
		res.Warnings = append(res.Warnings, "text layer: "+err.Error())
		causes = append(causes, common.NewExtractionError("extract.text_layer", "read text layer", err))
	}
	if pages = nonEmpty(pages); len(pages) > 0 {
		res.Pages, res.Method = pages, constants.MethodPDFText
		res.Text = strings.Join(pages, "\n\n")
		res.Duration = time.Since(start)
		log.Debug("text layer extracted", "pages", len(pages), "elapsed_ms", res.Duration.Milliseconds())
		return res, nil
	}

	log.Info("text layer empty, falling back to ocr")
	or, err := e.ocr.OCRPages(ctx, path)
	res.Warnings = append(res.Warnings, or.Warnings...)
	if err != nil {
		log.Error("ocr failed", "error", err)
		causes = append(causes, common.NewExtractionError("extract.ocr", "ocr pages", err))
	}
	res.Duration = time.Since(start)
	if pages = nonEmpty(or.Pages); len(pages) == 0 {
		return res, common.NewExtractionError("extract", "no extractable text", errors.Join(causes...))
	}
	res.Pages, res.Method, res.Confidence = pages, constants.MethodPDFOCR, or.Confidence
	res.Text = strings.Join(pages, "\n\n")
	log.Debug("ocr extracted", "pages", len(pages), "confidence", res.Confidence, "elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}

func nonEmpty(pages []string) []string {
	var out []string
	for _, p := range pages {
		if p = Normalize(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
