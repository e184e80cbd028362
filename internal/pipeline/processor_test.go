package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/extract"
	"github.com/joseph-ayodele/contracts-analyzer/internal/llm"
	"github.com/joseph-ayodele/contracts-analyzer/internal/summarize"
)

const endToEndText = "This agreement includes a penalty clause and termination without notice provisions. Employee shall work for the employer."

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) Extract(context.Context, extract.Document) (extract.ExtractedText, error) {
	if f.err != nil {
		return extract.ExtractedText{}, f.err
	}
	return extract.ExtractedText{Text: f.text, Pages: []string{f.text}, PageCount: 1, Method: constants.MethodPDFText}, nil
}

// blockingExtractor waits for the caller to give up.
type blockingExtractor struct{}

func (blockingExtractor) Extract(ctx context.Context, _ extract.Document) (extract.ExtractedText, error) {
	<-ctx.Done()
	return extract.ExtractedText{}, common.NewExtractionError("extract", "extraction interrupted", ctx.Err())
}

type memRecorder struct {
	mu       sync.Mutex
	started  []uuid.UUID
	finished []Report
	failed   map[uuid.UUID]error

	// ctxErrs holds ctx.Err() as seen by each Finish call.
	ctxErrs []error
}

func (m *memRecorder) Start(_ context.Context, id uuid.UUID, _ extract.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, id)
	return nil
}

func (m *memRecorder) FinishSuccess(ctx context.Context, r Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	m.finished = append(m.finished, r)
	return nil
}

func (m *memRecorder) FinishFailure(ctx context.Context, id uuid.UUID, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	if m.failed == nil {
		m.failed = map[uuid.UUID]error{}
	}
	m.failed[id] = cause
	return nil
}

func firstSentence(_ context.Context, text string, _, _ int) (string, error) {
	s, _, _ := strings.Cut(text, ".")
	return s + ".", nil
}

func TestAnalyzeEndToEnd(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		rec := &memRecorder{}
		p := NewProcessor(nil, fakeExtractor{text: endToEndText}, nil, llm.SummarizerFunc(firstSentence),
			Config{Parallel: parallel}, WithRecorder(rec))

		report, err := p.Analyze(context.Background(), extract.Document{Name: "employment.pdf", Hash: "abc"})
		if err != nil {
			t.Fatalf("parallel=%v Analyze: %v", parallel, err)
		}
		if report.ContractType != constants.Employment {
			t.Errorf("contract type = %s, want Employment", report.ContractType)
		}
		if report.Risk.Score != 5 || len(report.Risk.Findings) != 2 {
			t.Errorf("risk = %+v, want score 5 with two findings", report.Risk)
		}
		if report.Risk.Findings[0].Term != "penalty" || report.Risk.Findings[1].Term != "termination" {
			t.Errorf("risk findings = %+v", report.Risk.Findings)
		}
		if len(report.Unfavorable) != 1 || report.Unfavorable[0].Term != "termination without notice" {
			t.Errorf("unfavorable = %+v", report.Unfavorable)
		}
		if report.Summary != "This agreement includes a penalty clause and termination without notice provisions." {
			t.Errorf("summary = %q", report.Summary)
		}
		if report.ClassifierStrategy != "keyword" || report.DocumentHash != "abc" {
			t.Errorf("report = %+v", report)
		}
		if len(rec.started) != 1 || len(rec.finished) != 1 || rec.finished[0].ID != report.ID {
			t.Errorf("recorder = %+v", rec)
		}
	}
}

func TestAnalyzeTextEndToEnd(t *testing.T) {
	p := NewProcessor(nil, nil, nil, nil, Config{})
	report, err := p.AnalyzeText(context.Background(), "inline", endToEndText)
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	if report.ContractType != constants.Employment || report.Risk.Score != 5 || len(report.Unfavorable) != 1 {
		t.Errorf("report = %+v", report)
	}
	if report.Summary != "" {
		t.Errorf("summary without summarizer = %q", report.Summary)
	}
}

func TestAnalyzeStopsOnExtractionError(t *testing.T) {
	rec := &memRecorder{}
	called := false
	summarizer := llm.SummarizerFunc(func(context.Context, string, int, int) (string, error) {
		called = true
		return "", nil
	})
	extractErr := common.NewExtractionError("extract", "no extractable text", nil)
	p := NewProcessor(nil, fakeExtractor{err: extractErr}, nil, summarizer, Config{}, WithRecorder(rec))

	report, err := p.Analyze(context.Background(), extract.Document{Path: "/tmp/blank.pdf"})
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("err = %v, want extraction error", err)
	}
	if called {
		t.Error("summarizer ran on empty text")
	}
	if _, ok := rec.failed[report.ID]; !ok || len(rec.finished) != 0 {
		t.Errorf("recorder = %+v", rec)
	}
}

func TestAnalyzeSummarizationFailure(t *testing.T) {
	failing := llm.SummarizerFunc(func(context.Context, string, int, int) (string, error) {
		return "", errors.New("quota exceeded")
	})
	for _, parallel := range []bool{false, true} {
		p := NewProcessor(nil, fakeExtractor{text: endToEndText}, nil, failing, Config{Parallel: parallel})
		_, err := p.Analyze(context.Background(), extract.Document{Name: "x.pdf"})
		if !errors.Is(err, common.ErrCapability) {
			t.Fatalf("parallel=%v err = %v", parallel, err)
		}
		if common.StageOf(err) != "summarize.chunk[0]" {
			t.Errorf("stage = %q", common.StageOf(err))
		}
	}

	opts := summarize.Interactive()
	opts.BestEffort = true
	p := NewProcessor(nil, fakeExtractor{text: endToEndText}, nil, failing, Config{Summary: opts})
	report, err := p.Analyze(context.Background(), extract.Document{Name: "x.pdf"})
	if err != nil {
		t.Fatalf("best-effort Analyze: %v", err)
	}
	if report.Summary != "" || report.Risk.Score != 5 {
		t.Errorf("report = %+v", report)
	}
}

func TestAnalyzeRecordsFailureAfterTimeout(t *testing.T) {
	rec := &memRecorder{}
	p := NewProcessor(nil, blockingExtractor{}, nil, nil, Config{}, WithRecorder(rec))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	report, err := p.Analyze(ctx, extract.Document{Name: "slow.pdf"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if _, ok := rec.failed[report.ID]; !ok {
		t.Fatalf("run %s not finished as failed: %+v", report.ID, rec)
	}
	if len(rec.ctxErrs) != 1 || rec.ctxErrs[0] != nil {
		t.Errorf("FinishFailure ctx errors = %v, want a live context", rec.ctxErrs)
	}
}

func TestAnalyzeRecordsSuccessAfterCancel(t *testing.T) {
	rec := &memRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	summarizer := llm.SummarizerFunc(func(ctx context.Context, text string, lo, hi int) (string, error) {
		cancel()
		return firstSentence(ctx, text, lo, hi)
	})
	p := NewProcessor(nil, fakeExtractor{text: endToEndText}, nil, summarizer, Config{}, WithRecorder(rec))

	report, err := p.Analyze(ctx, extract.Document{Name: "employment.pdf"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(rec.finished) != 1 || rec.finished[0].ID != report.ID {
		t.Fatalf("recorder = %+v", rec)
	}
	if rec.ctxErrs[0] != nil {
		t.Errorf("FinishSuccess ctx err = %v", rec.ctxErrs[0])
	}
}

func TestNewProcessorKeepsPartialSummaryOptions(t *testing.T) {
	called := false
	summarizer := llm.SummarizerFunc(func(context.Context, string, int, int) (string, error) {
		called = true
		return "", nil
	})
	p := NewProcessor(nil, fakeExtractor{text: endToEndText}, nil, summarizer,
		Config{Summary: summarize.Options{BestEffort: true, Reduce: true}})
	if !p.cfg.Summary.BestEffort || !p.cfg.Summary.Reduce {
		t.Fatalf("options replaced: %+v", p.cfg.Summary)
	}

	_, err := p.Analyze(context.Background(), extract.Document{Name: "x.pdf"})
	if !errors.Is(err, common.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error for zero chunk size", err)
	}
	if called {
		t.Error("summarizer ran with invalid options")
	}

	if got := NewProcessor(nil, nil, nil, nil, Config{}).cfg.Summary; got != summarize.Interactive() {
		t.Errorf("zero options = %+v, want interactive defaults", got)
	}
}

func TestAnalyzeTextRejectsBlank(t *testing.T) {
	_, err := NewProcessor(nil, nil, nil, nil, Config{}).AnalyzeText(context.Background(), "blank", " \n\t")
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("err = %v", err)
	}
}
