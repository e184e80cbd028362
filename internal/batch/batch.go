// Package batch analyzes every contract under a directory through the worker queue,
// reusing stored reports for documents whose content was already analyzed.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/joseph-ayodele/contracts-analyzer/internal/async"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/export"
	"github.com/joseph-ayodele/contracts-analyzer/internal/extract"
	"github.com/joseph-ayodele/contracts-analyzer/internal/ingest"
	"github.com/joseph-ayodele/contracts-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contracts-analyzer/internal/repository"
)

// Stats counts what one directory pass did.
type Stats struct {
	ingest.DirStats
	Queued uint32
	Reused uint32
}

type Batch struct {
	runs   repository.AnalysisRepository
	queue  *async.ProcessorQueue
	logger *slog.Logger

	pending sync.WaitGroup

	mu   sync.Mutex
	rows map[string]export.BatchRow
	dups map[string]string // duplicate path -> first path with the same content
	// onRow runs after every recorded row, outside mu.
	onRow func()
}

type Option func(*config)

type config struct {
	workers int
	timeout time.Duration
	onRow   func()
}

func WithWorkers(n int) Option { return func(c *config) { c.workers = n } }

func WithProcessTimeout(d time.Duration) Option { return func(c *config) { c.timeout = d } }

// WithRowHandler is called whenever a contract finishes; it may call Rows.
func WithRowHandler(fn func()) Option { return func(c *config) { c.onRow = fn } }

// New starts the worker queue over proc. runs may be nil to disable report reuse.
func New(proc async.Analyzer, runs repository.AnalysisRepository, logger *slog.Logger, opts ...Option) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	b := &Batch{
		runs:   runs,
		logger: logger,
		rows:   map[string]export.BatchRow{},
		dups:   map[string]string{},
		onRow:  cfg.onRow,
	}
	b.queue = async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.workers),
		async.WithProcessTimeout(cfg.timeout),
		async.WithResultHandler(b.handle),
	)
	return b
}

// RunDir discovers contracts under dir and waits until every queued one is analyzed.
func (b *Batch) RunDir(ctx context.Context, dir string, skipHidden bool) (Stats, error) {
	candidates, ds, err := ingest.Discover(ctx, dir, skipHidden, b.logger)
	stats := Stats{DirStats: ds}
	if err != nil {
		return stats, err
	}
	for _, c := range candidates {
		switch {
		case c.Err != "":
			b.record(export.BatchRow{Path: c.Path, Err: common.NewExtractionError("ingest", c.Err, nil)})
		case c.DuplicateOf != "":
			b.mu.Lock()
			b.dups[c.Path] = c.DuplicateOf
			b.mu.Unlock()
		default:
			reused, err := b.Submit(ctx, c.Path, c.HashHex)
			if err != nil {
				return stats, err
			}
			if reused {
				stats.Reused++
			} else {
				stats.Queued++
			}
		}
	}
	return stats, b.Wait(ctx)
}

// Submit queues one file, or records the stored report when its hash was already analyzed.
// hash may be empty, in which case the file is hashed here.
func (b *Batch) Submit(ctx context.Context, path, hash string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		b.record(export.BatchRow{Path: path, Err: common.NewExtractionError("ingest", "read file", err)})
		return false, nil
	}
	if hash == "" {
		hash = extract.ContentHash(content)
	}
	if report, ok := b.stored(ctx, path, hash); ok {
		b.record(export.BatchRow{Path: path, Report: report})
		return true, nil
	}

	b.pending.Add(1)
	err = b.queue.Enqueue(ctx, async.Job{Document: extract.Document{
		Name:    filepath.Base(path),
		Path:    path,
		Content: content,
		Hash:    hash,
	}})
	if err != nil {
		b.pending.Done()
		return false, err
	}
	return false, nil
}

// Wait blocks until every submitted job has a row or ctx is done.
func (b *Batch) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() { b.pending.Wait(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains the worker queue.
func (b *Batch) Close(ctx context.Context) {
	b.queue.Shutdown(ctx)
}

// Rows returns one row per discovered contract ordered by path. Duplicates carry the
// outcome of the file they duplicate.
func (b *Batch) Rows() []export.BatchRow {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]export.BatchRow, 0, len(b.rows)+len(b.dups))
	for _, r := range b.rows {
		out = append(out, r)
	}
	for path, first := range b.dups {
		if r, ok := b.rows[first]; ok {
			r.Path = path
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (b *Batch) stored(ctx context.Context, path, hash string) (pipeline.Report, bool) {
	if b.runs == nil {
		return pipeline.Report{}, false
	}
	run, err := b.runs.FindAnalyzedByHash(ctx, hash)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			b.logger.Warn("batch.lookup_failed", "path", path, "error", err)
		}
		return pipeline.Report{}, false
	}
	var report pipeline.Report
	if err := json.Unmarshal(run.Report, &report); err != nil {
		b.logger.Warn("batch.stored_report_unreadable", "path", path, "run_id", run.ID, "error", err)
		return pipeline.Report{}, false
	}
	b.logger.Info("batch.reused", "path", path, "run_id", run.ID)
	return report, true
}

func (b *Batch) handle(res async.Result) {
	defer b.pending.Done()
	b.record(export.BatchRow{Path: res.Job.Document.Path, Report: res.Report, Err: res.Err})
}

func (b *Batch) record(row export.BatchRow) {
	b.mu.Lock()
	b.rows[row.Path] = row
	b.mu.Unlock()
	if b.onRow != nil {
		b.onRow()
	}
}

// Watch submits contracts created or rewritten under dir until ctx is done.
func (b *Batch) Watch(ctx context.Context, dir string, skipHidden bool, debounce time.Duration) error {
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:      []string{dir},
		Debounce:   debounce,
		SkipHidden: skipHidden,
	}, b.logger)
	if err != nil {
		return err
	}
	b.logger.Info("batch.watching", "dir", dir)
	for {
		select {
		case p, ok := <-paths:
			if !ok {
				return nil
			}
			if _, err := b.Submit(ctx, p, ""); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				b.logger.Warn("batch.submit_failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			b.logger.Warn("batch.watch_error", "error", err)
		}
	}
}
