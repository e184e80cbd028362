package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-analyzer/internal/entity"
)

// AnalysisRepository stores analysis runs. Implementations: NewPostgresAnalysisRepository, NewSQLiteAnalysisRepository.
type AnalysisRepository interface {
	Migrate(ctx context.Context) error
	Start(ctx context.Context, run *entity.AnalysisRun) error
	FinishSuccess(ctx context.Context, id uuid.UUID, contractType string, riskScore int, report []byte) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisRun, error)
	// FindAnalyzedByHash returns the newest ANALYZED run for a document hash.
	FindAnalyzedByHash(ctx context.Context, hash string) (*entity.AnalysisRun, error)
	List(ctx context.Context, limit int) ([]*entity.AnalysisRun, error)
}
