package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/extract"
	"github.com/joseph-ayodele/contracts-analyzer/internal/risk"
	"github.com/joseph-ayodele/contracts-analyzer/internal/unfavorable"
)

// Report is the structured result of one analysis run.
type Report struct {
	ID                 uuid.UUID              `json:"id"`
	Document           string                 `json:"document"`
	DocumentHash       string                 `json:"document_hash,omitempty"`
	ContractType       constants.ContractType `json:"contract_type"`
	ClassifierStrategy string                 `json:"classifier_strategy"`
	Summary            string                 `json:"summary"`
	SummaryPoints      []string               `json:"summary_points"`
	Risk               risk.Report            `json:"risk"`
	Unfavorable        []unfavorable.Finding  `json:"unfavorable"`
	Extraction         extract.ExtractedText  `json:"extraction"`
	CreatedAt          time.Time              `json:"created_at"`
	Elapsed            time.Duration          `json:"elapsed_ns"`
}

// RunRecorder persists the lifecycle of an analysis run.
type RunRecorder interface {
	Start(ctx context.Context, id uuid.UUID, doc extract.Document) error
	FinishSuccess(ctx context.Context, report Report) error
	FinishFailure(ctx context.Context, id uuid.UUID, cause error) error
}
