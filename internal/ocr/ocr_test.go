package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
)

// fakeRunner answers pdftotext with a fixed layer, renders `pages` PNG files for
// pdftoppm and returns one recognized string per image for tesseract.
type fakeRunner struct {
	layer    string
	layerErr error
	pages    int
	ocrText  map[string]string // image base name -> text
	tsv      string
	calls    []string
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)
	switch name {
	case "pdftotext":
		if f.layerErr != nil {
			return nil, []byte("Syntax Error"), f.layerErr
		}
		return []byte(f.layer), nil, nil
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := 1; i <= f.pages; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		if args[len(args)-1] == "tsv" {
			return []byte(f.tsv), nil, nil
		}
		img := args[0]
		for base, txt := range f.ocrText {
			if strings.HasSuffix(img, base) {
				return []byte(txt), nil, nil
			}
		}
		return nil, []byte("unreadable"), errors.New("exit status 1")
	}
	return nil, nil, fmt.Errorf("unexpected command %s", name)
}

func (f *fakeRunner) ran(name string) bool {
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func TestExtractUsesTextLayer(t *testing.T) {
	r := &fakeRunner{layer: "Page one text\f\fPage  three text\f"}
	e := NewExtractor(Config{}, nil, WithRunner(r))

	res, err := e.Extract(context.Background(), "lease.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != constants.MethodPDFText {
		t.Errorf("method = %s", res.Method)
	}
	if len(res.Pages) != 2 || res.Pages[1] != "Page three text" {
		t.Errorf("pages = %q", res.Pages)
	}
	if res.Text != "Page one text\n\nPage three text" {
		t.Errorf("text = %q", res.Text)
	}
	if r.ran("pdftoppm") || r.ran("tesseract") {
		t.Error("OCR must not run when the text layer has text")
	}
}

func TestExtractFallsBackToOCRWhenLayerIsWhitespace(t *testing.T) {
	r := &fakeRunner{
		layer:   "  \n\f \t \f",
		pages:   2,
		ocrText: map[string]string{"page-1.png": "Scanned page one", "page-2.png": "Scanned page two"},
	}
	e := NewExtractor(Config{}, nil, WithRunner(r))

	res, err := e.Extract(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != constants.MethodPDFOCR {
		t.Errorf("method = %s", res.Method)
	}
	if res.Text != "Scanned page one\n\nScanned page two" {
		t.Errorf("text = %q", res.Text)
	}
}

func TestExtractFallsBackWhenLayerFails(t *testing.T) {
	r := &fakeRunner{
		layerErr: errors.New("exit status 1"),
		pages:    1,
		ocrText:  map[string]string{"page-1.png": "Recovered"},
	}
	res, err := NewExtractor(Config{}, nil, WithRunner(r)).Extract(context.Background(), "broken.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "Recovered" || len(res.Warnings) == 0 {
		t.Errorf("res = %+v", res)
	}
}

func TestExtractFailsWhenNothingRecovered(t *testing.T) {
	r := &fakeRunner{layer: "\f\f", pages: 1, ocrText: map[string]string{"page-1.png": "   "}}
	_, err := NewExtractor(Config{}, nil, WithRunner(r)).Extract(context.Background(), "blank.pdf")
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("err = %v, want extraction error", err)
	}
	if !strings.Contains(err.Error(), "no extractable text") {
		t.Errorf("err = %v", err)
	}
}

func TestExtractSkipsUnreadablePages(t *testing.T) {
	r := &fakeRunner{pages: 3, ocrText: map[string]string{"page-2.png": "Only page two"}}
	res, err := NewExtractor(Config{}, nil, WithRunner(r)).Extract(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "Only page two" {
		t.Errorf("text = %q", res.Text)
	}
	if len(res.Warnings) != 2 {
		t.Errorf("warnings = %q", res.Warnings)
	}
}

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := NewExtractor(Config{}, nil, WithRunner(&fakeRunner{})).Extract(context.Background(), "notes.docx")
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("err = %v", err)
	}
}

func TestExtractReportsToolStderr(t *testing.T) {
	r := &fakeRunner{layerErr: errors.New("exit status 1"), pages: 0}
	_, err := NewExtractor(Config{}, nil, WithRunner(r)).Extract(context.Background(), "broken.pdf")
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("err = %v", err)
	}
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want a ToolError in the chain", err)
	}
	if te.Tool != "pdftotext" || te.Stderr != "Syntax Error" || te.Missing() {
		t.Errorf("tool error = %+v", te)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	cfg := Config{
		Pdftotext: "contracts-analyzer-missing-pdftotext",
		Pdftoppm:  "contracts-analyzer-missing-pdftoppm",
	}
	_, err := NewExtractor(cfg, nil).Extract(context.Background(), "lease.pdf")
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("err = %v", err)
	}
	var te *ToolError
	if !errors.As(err, &te) || !te.Missing() {
		t.Fatalf("err = %v, want a missing-tool error", err)
	}
	if !strings.Contains(err.Error(), "not installed or not on PATH") {
		t.Errorf("err = %v", err)
	}
}

func TestOCRConfidence(t *testing.T) {
	tsv := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
		"4\t1\t1\t1\t1\t0\t0\t0\t10\t10\t-1\t\n" +
		"5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t90\tLease\n" +
		"5\t1\t1\t1\t1\t2\t0\t0\t10\t10\t70\tAgreement\n"
	r := &fakeRunner{pages: 1, ocrText: map[string]string{"page-1.png": "Lease Agreement"}, tsv: tsv}
	res, err := NewExtractor(Config{EnableTSVConfidence: true}, nil, WithRunner(r)).Extract(context.Background(), "scan.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Confidence < 0.79 || res.Confidence > 0.81 {
		t.Errorf("confidence = %v, want 0.8", res.Confidence)
	}
}

func TestNormalize(t *testing.T) {
	in := "Clause 1\r\n\tThe  tenant   pays.  \n\n\n\nClause 2\n"
	want := "Clause 1\n The tenant pays.\n\nClause 2"
	if got := Normalize(in); got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}
