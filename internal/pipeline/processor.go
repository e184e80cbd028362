// Package pipeline runs a contract through extraction and the four analyses:
// classification, summarization, risk scoring and unfavorable-term detection.
package pipeline

import (
	"context"
	"log/slog"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/classify"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/extract"
	"github.com/joseph-ayodele/contracts-analyzer/internal/lexicon"
	"github.com/joseph-ayodele/contracts-analyzer/internal/llm"
	"github.com/joseph-ayodele/contracts-analyzer/internal/risk"
	"github.com/joseph-ayodele/contracts-analyzer/internal/summarize"
	"github.com/joseph-ayodele/contracts-analyzer/internal/unfavorable"
)

// recordTimeout bounds the final write of a run record.
const recordTimeout = 10 * time.Second

type Config struct {
	Summary summarize.Options
	// Parallel runs the four post-extraction analyses concurrently.
	Parallel bool
	Lexicon  lexicon.Set
}

// Processor coordinates text extraction then the read-only analyses over the extracted text.
type Processor struct {
	cfg        Config
	extractor  extract.TextExtractor
	classifier classify.Classifier
	summarizer llm.Summarizer
	aggregator *summarize.Aggregator
	scanner    *risk.Scanner
	detector   *unfavorable.Detector
	recorder   RunRecorder
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Processor)

// WithRecorder persists every Analyze run through r.
func WithRecorder(r RunRecorder) Option {
	return func(p *Processor) { p.recorder = r }
}

func WithDetectorOptions(opts ...unfavorable.Option) Option {
	return func(p *Processor) { p.detector = unfavorable.NewDetector(p.cfg.Lexicon.Unfavorable, opts...) }
}

// NewProcessor wires the stages. A nil classifier uses the keyword rules from cfg.Lexicon;
// a nil summarizer leaves Report.Summary empty.
func NewProcessor(logger *slog.Logger, extractor extract.TextExtractor, classifier classify.Classifier, summarizer llm.Summarizer, cfg Config, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if classifier == nil {
		classifier = classify.NewKeywordClassifier(cfg.Lexicon.Classification)
	}
	if cfg.Summary == (summarize.Options{}) {
		cfg.Summary = summarize.Interactive()
	}
	p := &Processor{
		cfg:        cfg,
		extractor:  extractor,
		classifier: classifier,
		summarizer: summarizer,
		aggregator: summarize.NewAggregator(logger),
		scanner:    risk.NewScanner(cfg.Lexicon.Risk),
		detector:   unfavorable.NewDetector(cfg.Lexicon.Unfavorable),
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ExtractText runs only the extraction stage.
func (p *Processor) ExtractText(ctx context.Context, doc extract.Document) (extract.ExtractedText, error) {
	if p.extractor == nil {
		return extract.ExtractedText{}, common.NewConfigError("extract", "no text extractor configured", common.ErrInvalidInput)
	}
	ctx = common.WithDocumentID(ctx, docName(doc))
	log := common.LoggerFromContext(ctx, p.logger)
	start := time.Now()

	res, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		log.Error("pipeline.extract.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return res, err
	}
	log.Info("pipeline.extract.ok",
		"method", res.Method,
		"pages", res.PageCount,
		"chars", len(res.Text),
		"confidence", res.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Analyze extracts doc and analyzes its text. An extraction failure stops the run
// before any analysis starts.
func (p *Processor) Analyze(ctx context.Context, doc extract.Document) (Report, error) {
	id := uuid.New()
	ctx = common.WithDocumentID(ctx, docName(doc))
	log := common.LoggerFromContext(ctx, p.logger).With("run_id", id)
	start := time.Now()

	if p.recorder != nil {
		if err := p.recorder.Start(ctx, id, doc); err != nil {
			log.Warn("pipeline.record.start_failed", "error", err)
		}
	}

	text, err := p.ExtractText(ctx, doc)
	if err != nil {
		p.fail(ctx, log, id, err)
		return Report{ID: id, Document: docName(doc), DocumentHash: doc.Hash}, err
	}

	report, err := p.analyze(ctx, log, text)
	report.ID = id
	report.Document = docName(doc)
	report.DocumentHash = doc.Hash
	report.Elapsed = time.Since(start)
	if err != nil {
		p.fail(ctx, log, id, err)
		return report, err
	}

	if p.recorder != nil {
		rctx, cancel := recordContext(ctx)
		err := p.recorder.FinishSuccess(rctx, report)
		cancel()
		if err != nil {
			log.Warn("pipeline.record.finish_failed", "error", err)
		}
	}
	log.Info("pipeline.analyze.ok",
		"contract_type", string(report.ContractType),
		"risk_score", report.Risk.Score,
		"risk_findings", len(report.Risk.Findings),
		"unfavorable", len(report.Unfavorable),
		"elapsed_ms", report.Elapsed.Milliseconds(),
	)
	return report, nil
}

// AnalyzeText runs the analyses over text that was extracted elsewhere.
func (p *Processor) AnalyzeText(ctx context.Context, name, text string) (Report, error) {
	ctx = common.WithDocumentID(ctx, name)
	log := common.LoggerFromContext(ctx, p.logger)
	if isBlank(text) {
		return Report{Document: name}, common.NewExtractionError("extract", "no extractable text", nil)
	}
	report, err := p.analyze(ctx, log, extract.ExtractedText{Text: text})
	report.ID = uuid.New()
	report.Document = name
	return report, err
}

func (p *Processor) analyze(ctx context.Context, log *slog.Logger, text extract.ExtractedText) (Report, error) {
	var (
		contractType constants.ContractType
		summary      string
		riskReport   risk.Report
		findings     []unfavorable.Finding
	)

	steps := []func(context.Context) error{
		func(ctx context.Context) error {
			contractType = p.classifier.Classify(ctx, text.Text)
			return nil
		},
		func(ctx context.Context) error {
			if p.summarizer == nil {
				log.Info("pipeline.summarize.skipped", "reason", "no summarizer configured")
				return nil
			}
			var err error
			summary, err = p.aggregator.Summarize(ctx, text.Text, p.summarizer, p.cfg.Summary)
			return err
		},
		func(context.Context) error {
			riskReport = p.scanner.Scan(text.Text)
			return nil
		},
		func(context.Context) error {
			findings = p.detector.Detect(text.Text)
			return nil
		},
	}

	var err error
	if p.cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for _, step := range steps {
			g.Go(func() error { return step(gctx) })
		}
		err = g.Wait()
	} else {
		for _, step := range steps {
			if err = step(ctx); err != nil {
				break
			}
		}
	}

	report := Report{
		ContractType:       contractType,
		ClassifierStrategy: p.classifier.Strategy(),
		Summary:            summary,
		SummaryPoints:      summarize.Points(summary),
		Risk:               riskReport,
		Unfavorable:        findings,
		Extraction:         text,
		CreatedAt:          p.now().UTC(),
	}
	if err != nil {
		log.Error("pipeline.analyze.failed", "stage", common.StageOf(err), "error", err)
	}
	return report, err
}

func (p *Processor) fail(ctx context.Context, log *slog.Logger, id uuid.UUID, cause error) {
	if p.recorder == nil {
		return
	}
	rctx, cancel := recordContext(ctx)
	defer cancel()
	if err := p.recorder.FinishFailure(rctx, id, cause); err != nil {
		log.Warn("pipeline.record.failure_failed", "error", err)
	}
}

// recordContext keeps ctx's values but not its deadline, so a run cancelled mid-analysis
// still leaves the RUNNING state.
func recordContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
}

func docName(doc extract.Document) string {
	if doc.Name != "" {
		return doc.Name
	}
	return doc.Path
}

func isBlank(text string) bool {
	for _, r := range text {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
