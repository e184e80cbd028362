package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// tesseract TSV columns: level page_num block_num par_num line_num word_num left top width height conf text
const tsvConfColumn = 10

type tesseractOCR struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// OCRPages renders pages with pdftoppm into a temp dir and runs tesseract on each image.
// A page that fails recognition becomes a warning; the remaining pages still count.
func (t *tesseractOCR) OCRPages(ctx context.Context, path string) (OCRResult, error) {
	tmpDir, err := os.MkdirTemp("", "ca-pp-*")
	if err != nil {
		return OCRResult{}, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			t.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(t.cfg.DPI), "-png"}
	if t.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(t.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	if _, errb, err := t.runner.Run(ctx, t.cfg.Pdftoppm, t.logger, args...); err != nil {
		return OCRResult{Warnings: []string{strings.TrimSpace(string(errb))}}, toolError("pdftoppm", errb, err)
	}

	// prefix-1.png, prefix-2.png, ... (zero padded when there are 10+ pages)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if t.cfg.MaxPages > 0 && len(matches) > t.cfg.MaxPages {
		matches = matches[:t.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return OCRResult{Warnings: []string{"pdftoppm produced no images"}}, fmt.Errorf("no pages rendered")
	}

	var res OCRResult
	var confSum float32
	var confN int
	for i, img := range matches {
		txt, err := t.recognize(ctx, img)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i+1, err))
			continue
		}
		res.Pages = append(res.Pages, txt)
		if t.cfg.EnableTSVConfidence {
			c, err := t.tsvConfidence(ctx, img)
			if err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("page %d confidence: %v", i+1, err))
			} else if c > 0 {
				confSum += c
				confN++
			}
		}
	}
	if confN > 0 {
		res.Confidence = confSum / float32(confN)
	}
	return res, nil
}

func (t *tesseractOCR) baseArgs(img string) []string {
	args := []string{img, "stdout", "-l", t.cfg.TesseractLang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

func (t *tesseractOCR) recognize(ctx context.Context, img string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, t.logger, t.baseArgs(img)...)
	if err != nil {
		return "", toolError("tesseract", errb, err)
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}

// tsvConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (t *tesseractOCR) tsvConfidence(ctx context.Context, img string) (float32, error) {
	out, _, err := t.runner.Run(ctx, t.cfg.Tesseract, t.logger, append(t.baseArgs(img), "tsv")...)
	if err != nil {
		return 0, toolError("tesseract tsv", nil, err)
	}
	return meanTSVConfidence(string(out)), nil
}

// meanTSVConfidence averages the conf column of tesseract TSV output, skipping -1 rows.
func meanTSVConfidence(tsv string) float32 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := strings.TrimSpace(cols[tsvConfColumn])
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil && v >= 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float32(sum / n / 100.0)
}
