package extract

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/ocr"
)

type layerRunner struct {
	gotPath string
	exists  bool
}

func (r *layerRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	if name != "pdftotext" {
		return nil, nil, errors.New("unexpected " + name)
	}
	r.gotPath = args[len(args)-2]
	_, err := os.Stat(r.gotPath)
	r.exists = err == nil
	return []byte("The landlord leases the flat.\f"), nil, nil
}

func TestExtractSpoolsContent(t *testing.T) {
	r := &layerRunner{}
	a := NewOCRAdapter(ocr.NewExtractor(ocr.Config{}, nil, ocr.WithRunner(r)), nil)

	got, err := a.Extract(context.Background(), Document{Name: "upload.pdf", Content: []byte("%PDF-1.7")})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Text != "The landlord leases the flat." || got.PageCount != 1 || got.Method != "pdf-text" {
		t.Errorf("got %+v", got)
	}
	if !r.exists || filepath.Base(r.gotPath) != "upload.pdf" {
		t.Errorf("extractor saw %q (exists=%v)", r.gotPath, r.exists)
	}
	if _, err := os.Stat(r.gotPath); !os.IsNotExist(err) {
		t.Errorf("temp file not removed: %v", err)
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	a := NewOCRAdapter(ocr.NewExtractor(ocr.Config{}, nil, ocr.WithRunner(&layerRunner{})), nil)
	_, err := a.Extract(context.Background(), Document{Name: "x.pdf"})
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("err = %v", err)
	}
}
