package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/contracts-analyzer/internal/app"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/export"
	"github.com/joseph-ayodele/contracts-analyzer/internal/extract"
	"github.com/joseph-ayodele/contracts-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contracts-analyzer/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		file      = flag.String("file", "", "contract PDF to analyze (required)")
		translate = flag.String("translate", "", "translate the summary into this language, e.g. hi")
		ask       = flag.String("ask", "", "question to answer from the contract text")
		xlsxOut   = flag.String("xlsx", "", "write the report as an XLSX workbook to this path")
		asJSON    = flag.Bool("json", false, "print the report as JSON instead of text")
		sqlite    = flag.String("sqlite", "", "record the run in this SQLite database (DB_URL takes precedence)")
		timeout   = flag.Duration("timeout", 10*time.Minute, "overall time limit")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: --file is required\n")
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stderr)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	caps, err := app.NewCapabilities(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("capability backend", "error", err)
		os.Exit(1)
	}

	var opts []pipeline.Option
	store, err := app.OpenStore(ctx, cfg.Database, *sqlite, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	if store != nil {
		defer store.Cleanup()
		opts = append(opts, pipeline.WithRecorder(repository.NewRecorder(store.Runs)))
	}

	proc, err := app.NewProcessor(cfg, app.NewExtractor(cfg.OCR, logger), caps, logger, opts...)
	if err != nil {
		logger.Error("build processor", "error", err)
		os.Exit(2)
	}

	content, err := os.ReadFile(*file)
	if err != nil {
		printError("Error: read %s: %v\n", *file, err)
		os.Exit(1)
	}
	doc := extract.Document{
		Name:    filepath.Base(*file),
		Path:    *file,
		Content: content,
		Hash:    extract.ContentHash(content),
	}

	report, err := proc.Analyze(ctx, doc)
	if err != nil {
		logger.Error("analysis failed", "stage", common.StageOf(err), "error", err)
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	var translated string
	if *translate != "" {
		translated, err = translateSummary(ctx, caps, report.Summary, *translate)
		if err != nil {
			logger.Warn("translation failed", "lang", *translate, "error", err)
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			printError("Error: encode report: %v\n", err)
			os.Exit(1)
		}
	} else if err := export.WriteText(os.Stdout, report, translated); err != nil {
		printError("Error: write report: %v\n", err)
		os.Exit(1)
	}

	if *ask != "" {
		answer(ctx, logger, caps, *ask, report.Extraction.Text)
	}

	if *xlsxOut != "" {
		b, err := export.ReportXLSX(report)
		if err == nil {
			err = os.WriteFile(*xlsxOut, b, 0o644)
		}
		if err != nil {
			logger.Error("write xlsx", "path", *xlsxOut, "error", err)
			os.Exit(1)
		}
		logger.Info("xlsx written", "path", *xlsxOut)
	}
}

func translateSummary(ctx context.Context, caps app.Capabilities, summary, lang string) (string, error) {
	if caps.Translator == nil {
		return "", common.NewConfigError("translate", "backend "+caps.Backend+" cannot translate", nil)
	}
	if summary == "" {
		return "", nil
	}
	return caps.Translator.Translate(ctx, summary, lang)
}

func answer(ctx context.Context, logger *slog.Logger, caps app.Capabilities, question, text string) {
	if caps.QA == nil {
		printError("Error: backend %s cannot answer questions\n", caps.Backend)
		return
	}
	ans, err := caps.QA.Answer(ctx, question, text)
	if err != nil {
		logger.Warn("question answering failed", "error", err)
		printError("Error: %v\n", err)
		return
	}
	fmt.Printf("\nQ: %s\nA: %s\n", question, ans)
}
