package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/contracts-analyzer/internal/app"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/extract"
)

func main() {
	var (
		meta    = flag.Bool("meta", false, "print extraction metadata as JSON on stderr")
		pages   = flag.Bool("pages", false, "separate pages with form feeds")
		timeout = flag.Duration("timeout", 5*time.Minute, "extraction time limit")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: extract-text [-meta] [-pages] <contract.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stderr)

	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := app.NewExtractor(cfg.OCR, logger).Extract(ctx, extract.Document{
		Name:    filepath.Base(path),
		Path:    path,
		Content: content,
		Hash:    extract.ContentHash(content),
	})
	if err != nil {
		logger.Error("extract failed", "stage", common.StageOf(err), "error", err)
		os.Exit(1)
	}

	if *pages {
		fmt.Println(strings.Join(res.Pages, "\f"))
	} else {
		fmt.Println(res.Text)
	}
	if *meta {
		_ = json.NewEncoder(os.Stderr).Encode(res)
	}
}
