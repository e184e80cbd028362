// Package summarize condenses long contracts by summarizing word chunks in
// document order and optionally reducing the combined result once more.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/contracts-analyzer/internal/chunk"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/llm"
)

type Aggregator struct {
	logger *slog.Logger
}

func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// Summarize validates opts before any capability call, then summarizes chunk by chunk.
// Chunk summaries are joined with a single space in original order; a chunk that the
// capability fails on aborts the call unless opts.BestEffort is set.
func (a *Aggregator) Summarize(ctx context.Context, text string, capability llm.Summarizer, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if capability == nil {
		return "", common.NewConfigError("summarize", "no summarization capability configured", common.ErrInvalidInput)
	}
	log := common.LoggerFromContext(ctx, a.logger)
	start := time.Now()

	combined, err := a.summarizeChunks(ctx, log, text, capability, opts, "summarize.chunk")
	if err != nil {
		return "", err
	}
	log.Debug("summarize.chunks.ok", "words", chunk.WordCount(combined), "elapsed_ms", time.Since(start).Milliseconds())
	if !opts.Reduce || combined == "" {
		return combined, nil
	}

	for depth := 1; depth <= opts.MaxReduceDepth && chunk.WordCount(combined) > opts.ChunkSize; depth++ {
		before := chunk.WordCount(combined)
		next, err := a.summarizeChunks(ctx, log, combined, capability, opts, fmt.Sprintf("summarize.reduce[%d].chunk", depth))
		if err != nil {
			return "", err
		}
		after := chunk.WordCount(next)
		log.Debug("summarize.reduce.level", "depth", depth, "words_before", before, "words_after", after)
		if next == "" || after >= before {
			break
		}
		combined = next
	}

	final, err := capability.Summarize(ctx, combined, opts.Final.Min, opts.Final.Max)
	if err != nil {
		log.Error("summarize.reduce.failed", "error", err)
		return "", common.NewCapabilityError("summarize.reduce", "final reduction failed", err)
	}
	log.Info("summarize.ok", "words", chunk.WordCount(final), "elapsed_ms", time.Since(start).Milliseconds())
	return strings.TrimSpace(final), nil
}

func (a *Aggregator) summarizeChunks(ctx context.Context, log *slog.Logger, text string, capability llm.Summarizer, opts Options, stage string) (string, error) {
	var parts []string
	for c := range chunk.Words(text, opts.ChunkSize) {
		if err := ctx.Err(); err != nil {
			return "", common.NewCapabilityError(stage, "summarization cancelled", err)
		}
		s, err := capability.Summarize(ctx, c.Text, opts.PerChunk.Min, opts.PerChunk.Max)
		if err != nil {
			chunkStage := fmt.Sprintf("%s[%d]", stage, c.Index)
			if !opts.BestEffort {
				log.Error("summarize.chunk.failed", "chunk", c.Index, "error", err)
				return "", common.NewCapabilityError(chunkStage, "chunk summarization failed", err)
			}
			log.Warn("summarize.chunk.skipped", "chunk", c.Index, "error", err, "best_effort", true)
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "), nil
}

// Points splits a summary into its sentences on ". ", dropping empty pieces.
func Points(summary string) []string {
	var out []string
	for _, p := range strings.Split(summary, ". ") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
