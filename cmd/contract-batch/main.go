package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/contracts-analyzer/internal/app"
	"github.com/joseph-ayodele/contracts-analyzer/internal/batch"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/export"
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
		dir        = flag.String("dir", "", "directory to analyze contracts from (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		inmem      = flag.Bool("inmem", false, "use an in-memory SQLite database")
		sqlite     = flag.String("sqlite", "", "SQLite database file (DB_URL takes precedence)")
		workers    = flag.Int("workers", 4, "concurrent analyses")
		watch      = flag.Bool("watch", false, "keep running and analyze contracts added to the directory")
		debounce   = flag.Duration("debounce", 2*time.Second, "watch mode: quiet period before a changed file is analyzed")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(2)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "contracts.xlsx")
	}
	if *inmem {
		*sqlite = ":memory:"
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if os.Getenv("SUMMARY_MODE") == "" {
		cfg.Summary.Mode = common.SummaryModeBatch
	}
	logger := common.NewLogger(cfg.Log, os.Stderr)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	caps, err := app.NewCapabilities(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("capability backend", "error", err)
		os.Exit(1)
	}

	var opts []pipeline.Option
	var runs repository.AnalysisRepository
	store, err := app.OpenStore(ctx, cfg.Database, *sqlite, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	if store != nil {
		defer store.Cleanup()
		runs = store.Runs
		opts = append(opts, pipeline.WithRecorder(repository.NewRecorder(runs)))
		logger.Info("recording analysis runs", "backend", store.Backend)
	}

	proc, err := app.NewProcessor(cfg, app.NewExtractor(cfg.OCR, logger), caps, logger, opts...)
	if err != nil {
		logger.Error("build processor", "error", err)
		os.Exit(2)
	}

	var writeMu sync.Mutex
	var b *batch.Batch
	writeWorkbook := func() {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := write(*out, b.Rows()); err != nil {
			logger.Error("write workbook", "path", *out, "error", err)
		}
	}
	batchOpts := []batch.Option{batch.WithWorkers(*workers)}
	if *watch {
		batchOpts = append(batchOpts, batch.WithRowHandler(writeWorkbook))
	}
	b = batch.New(proc, runs, logger, batchOpts...)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		b.Close(shutdownCtx)
	}()

	start := time.Now()
	stats, err := b.RunDir(ctx, *dir, *skipHidden)
	if err != nil {
		logger.Error("batch run failed", "error", err)
		os.Exit(1)
	}
	writeWorkbook()
	report(logger, stats, b.Rows(), *out, time.Since(start))

	if *watch {
		if err := b.Watch(ctx, *dir, *skipHidden, *debounce); err != nil {
			logger.Error("watch failed", "error", err)
			os.Exit(1)
		}
		writeWorkbook()
		logger.Info("watch stopped", "out", *out)
	}
}

func write(path string, rows []export.BatchRow) error {
	data, err := export.BatchXLSX(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func report(logger *slog.Logger, stats batch.Stats, rows []export.BatchRow, out string, elapsed time.Duration) {
	failed := 0
	for _, r := range rows {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info("batch complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"queued", stats.Queued,
		"reused", stats.Reused,
		"deduplicated", stats.Deduplicated,
		"failed", failed,
		"out", out,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	fmt.Printf("Analyzed %d contract(s), %d failed. Workbook: %s\n", len(rows)-failed, failed, out)
}
