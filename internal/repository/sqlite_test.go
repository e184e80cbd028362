package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/entity"
	"github.com/joseph-ayodele/contracts-analyzer/internal/extract"
	"github.com/joseph-ayodele/contracts-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contracts-analyzer/internal/risk"
)

func newMemoryRepo(t *testing.T) AnalysisRepository {
	t.Helper()
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := NewSQLiteAnalysisRepository(db, nil)
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return repo
}

func TestRecorderLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	rec := NewRecorder(repo)

	id := uuid.New()
	if err := rec.Start(ctx, id, extract.Document{Name: "lease.pdf", Hash: "h1"}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	run, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if run.Status != constants.AnalysisStatusRunning || run.FinishedAt != nil || run.DocumentName != "lease.pdf" {
		t.Errorf("running run = %+v", run)
	}

	report := pipeline.Report{ID: id, Document: "lease.pdf", ContractType: constants.LeaseRental, Risk: risk.Report{Score: 7}}
	if err := rec.FinishSuccess(ctx, report); err != nil {
		t.Fatalf("FinishSuccess: %v", err)
	}
	run, err = repo.FindAnalyzedByHash(ctx, "h1")
	if err != nil {
		t.Fatalf("FindAnalyzedByHash: %v", err)
	}
	if run.ID != id || run.Status != constants.AnalysisStatusAnalyzed || run.FinishedAt == nil {
		t.Errorf("analyzed run = %+v", run)
	}
	if run.ContractType == nil || *run.ContractType != "Lease/Rental" || run.RiskScore == nil || *run.RiskScore != 7 {
		t.Errorf("analyzed run fields = %+v", run)
	}
	var decoded pipeline.Report
	if err := json.Unmarshal(run.Report, &decoded); err != nil || decoded.Risk.Score != 7 {
		t.Errorf("stored report = %s (%v)", run.Report, err)
	}
}

func TestFinishFailure(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	id := uuid.New()
	if err := repo.Start(ctx, &entity.AnalysisRun{ID: id, DocumentName: "scan.pdf", StartedAt: time.Now()}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := NewRecorder(repo).FinishFailure(ctx, id, common.NewExtractionError("extract", "no extractable text", nil)); err != nil {
		t.Fatalf("FinishFailure: %v", err)
	}
	run, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if run.Status != constants.AnalysisStatusFailed || run.ErrorMessage == nil || *run.ErrorMessage == "" {
		t.Errorf("failed run = %+v", run)
	}
	if _, err := repo.FindAnalyzedByHash(ctx, ""); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("failed runs must not be found as analyzed: %v", err)
	}
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetByID err = %v", err)
	}
	if err := repo.FinishFailure(ctx, uuid.New(), "x"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("FinishFailure err = %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		id := uuid.New()
		ids = append(ids, id)
		if err := repo.Start(ctx, &entity.AnalysisRun{ID: id, DocumentName: "doc", StartedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("Start: %v", err)
		}
	}
	runs, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("List order wrong: %+v", runs)
	}
	if !runs[0].StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("StartedAt round trip = %v", runs[0].StartedAt)
	}
}
