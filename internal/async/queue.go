package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/contracts-analyzer/internal/extract"
	"github.com/joseph-ayodele/contracts-analyzer/internal/pipeline"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document to analyze.
type Job struct {
	Document    extract.Document
	SubmittedAt time.Time
	TraceID     string
}

// Result pairs a job with its outcome.
type Result struct {
	Job      Job
	Report   pipeline.Report
	Err      error
	WorkerID int
	Elapsed  time.Duration
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Analyzer is the part of pipeline.Processor the workers need.
type Analyzer interface {
	Analyze(ctx context.Context, doc extract.Document) (pipeline.Report, error)
}
