package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/entity"
	"github.com/joseph-ayodele/contracts-analyzer/internal/extract"
	"github.com/joseph-ayodele/contracts-analyzer/internal/pipeline"
)

// Recorder adapts an AnalysisRepository to pipeline.RunRecorder.
type Recorder struct {
	repo AnalysisRepository
}

var _ pipeline.RunRecorder = (*Recorder)(nil)

func NewRecorder(repo AnalysisRepository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) Start(ctx context.Context, id uuid.UUID, doc extract.Document) error {
	name := doc.Name
	if name == "" {
		name = doc.Path
	}
	return r.repo.Start(ctx, &entity.AnalysisRun{
		ID:           id,
		DocumentName: name,
		DocumentHash: doc.Hash,
		Status:       constants.AnalysisStatusRunning,
	})
}

func (r *Recorder) FinishSuccess(ctx context.Context, report pipeline.Report) error {
	b, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return r.repo.FinishSuccess(ctx, report.ID, string(report.ContractType), report.Risk.Score, b)
}

func (r *Recorder) FinishFailure(ctx context.Context, id uuid.UUID, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return r.repo.FinishFailure(ctx, id, msg)
}
