package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/entity"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id            UUID PRIMARY KEY,
		document_name TEXT NOT NULL,
		document_hash TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL CHECK (status IN ('QUEUED', 'RUNNING', 'ANALYZED', 'FAILED')),
		contract_type TEXT,
		risk_score    INTEGER,
		report        JSONB,
		error_message TEXT,
		started_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		finished_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS analysis_runs_hash_idx ON analysis_runs (document_hash, finished_at DESC)`,
}

const pgRunColumns = `id::text, document_name, document_hash, status, contract_type, risk_score, report, error_message, started_at, finished_at`

type pgAnalysisRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewPostgresAnalysisRepository(pool *pgxpool.Pool, log *slog.Logger) AnalysisRepository {
	if log == nil {
		log = slog.Default()
	}
	return &pgAnalysisRepo{pool: pool, log: log}
}

func (r *pgAnalysisRepo) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			r.log.Error("analysis_runs migrate failed", "err", err)
			return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
		}
	}
	return nil
}

func (r *pgAnalysisRepo) Start(ctx context.Context, run *entity.AnalysisRun) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = constants.AnalysisStatusRunning
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO analysis_runs (id, document_name, document_hash, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID.String(), run.DocumentName, run.DocumentHash, string(run.Status), run.StartedAt)
	if err != nil {
		r.log.Error("analysis_run start failed", "run_id", run.ID, "err", err)
		return fmt.Errorf("%w: insert run: %v", common.ErrDatabase, err)
	}
	r.log.Info("analysis_run started", "run_id", run.ID, "document", run.DocumentName)
	return nil
}

func (r *pgAnalysisRepo) FinishSuccess(ctx context.Context, id uuid.UUID, contractType string, riskScore int, report []byte) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE analysis_runs SET status = $2, contract_type = $3, risk_score = $4, report = $5, finished_at = $6 WHERE id = $1`,
		id.String(), string(constants.AnalysisStatusAnalyzed), contractType, riskScore, string(report), time.Now().UTC())
	if err != nil {
		r.log.Error("analysis_run finish(ANALYZED) failed", "run_id", id, "err", err)
		return fmt.Errorf("%w: update run: %v", common.ErrDatabase, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	r.log.Info("analysis_run finished (ANALYZED)", "run_id", id, "contract_type", contractType, "risk_score", riskScore)
	return nil
}

func (r *pgAnalysisRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE analysis_runs SET status = $2, error_message = $3, finished_at = $4 WHERE id = $1`,
		id.String(), string(constants.AnalysisStatusFailed), message, time.Now().UTC())
	if err != nil {
		r.log.Error("analysis_run finish(FAILED) failed", "run_id", id, "err", err)
		return fmt.Errorf("%w: update run: %v", common.ErrDatabase, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	r.log.Warn("analysis_run finished (FAILED)", "run_id", id, "error", message)
	return nil
}

func (r *pgAnalysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisRun, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+pgRunColumns+` FROM analysis_runs WHERE id = $1`, id.String())
	return scanPgRun(row)
}

func (r *pgAnalysisRepo) FindAnalyzedByHash(ctx context.Context, hash string) (*entity.AnalysisRun, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+pgRunColumns+` FROM analysis_runs WHERE document_hash = $1 AND status = $2 ORDER BY finished_at DESC LIMIT 1`,
		hash, string(constants.AnalysisStatusAnalyzed))
	return scanPgRun(row)
}

func (r *pgAnalysisRepo) List(ctx context.Context, limit int) ([]*entity.AnalysisRun, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT `+pgRunColumns+` FROM analysis_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.AnalysisRun
	for rows.Next() {
		run, err := scanPgRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func scanPgRun(row pgx.Row) (*entity.AnalysisRun, error) {
	var (
		run      entity.AnalysisRun
		id       string
		status   string
		score    *int32
		report   []byte
		finished *time.Time
	)
	err := row.Scan(&id, &run.DocumentName, &run.DocumentHash, &status, &run.ContractType, &score, &report, &run.ErrorMessage, &run.StartedAt, &finished)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan run: %v", common.ErrDatabase, err)
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: bad run id %q", common.ErrDatabase, id)
	}
	run.Status = constants.AnalysisStatus(status)
	if score != nil {
		s := int(*score)
		run.RiskScore = &s
	}
	run.Report = report
	run.FinishedAt = finished
	return &run, nil
}
