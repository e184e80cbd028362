package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/entity"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id            TEXT PRIMARY KEY,
		document_name TEXT NOT NULL,
		document_hash TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL CHECK (status IN ('QUEUED', 'RUNNING', 'ANALYZED', 'FAILED')),
		contract_type TEXT,
		risk_score    INTEGER,
		report        TEXT,
		error_message TEXT,
		started_at    TEXT NOT NULL,
		finished_at   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS analysis_runs_hash_idx ON analysis_runs (document_hash, finished_at)`,
}

const sqliteRunColumns = `id, document_name, document_hash, status, contract_type, risk_score, report, error_message, started_at, finished_at`

// timestamps are stored as RFC 3339 text so they sort lexically
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type sqliteAnalysisRepo struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

func NewSQLiteAnalysisRepository(db *sql.DB, log *slog.Logger) AnalysisRepository {
	if log == nil {
		log = slog.Default()
	}
	return &sqliteAnalysisRepo{db: db, log: log, now: time.Now}
}

func (r *sqliteAnalysisRepo) Migrate(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			r.log.Error("analysis_runs migrate failed", "err", err)
			return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
		}
	}
	return nil
}

func (r *sqliteAnalysisRepo) Start(ctx context.Context, run *entity.AnalysisRun) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = r.now().UTC()
	}
	if run.Status == "" {
		run.Status = constants.AnalysisStatusRunning
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, document_name, document_hash, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID.String(), run.DocumentName, run.DocumentHash, string(run.Status), formatTime(run.StartedAt))
	if err != nil {
		r.log.Error("analysis_run start failed", "run_id", run.ID, "err", err)
		return fmt.Errorf("%w: insert run: %v", common.ErrDatabase, err)
	}
	r.log.Info("analysis_run started", "run_id", run.ID, "document", run.DocumentName)
	return nil
}

func (r *sqliteAnalysisRepo) FinishSuccess(ctx context.Context, id uuid.UUID, contractType string, riskScore int, report []byte) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE analysis_runs SET status = ?, contract_type = ?, risk_score = ?, report = ?, finished_at = ? WHERE id = ?`,
		string(constants.AnalysisStatusAnalyzed), contractType, riskScore, string(report), formatTime(r.now()), id.String())
	if err != nil {
		r.log.Error("analysis_run finish(ANALYZED) failed", "run_id", id, "err", err)
		return fmt.Errorf("%w: update run: %v", common.ErrDatabase, err)
	}
	if err := requireRow(res, id); err != nil {
		return err
	}
	r.log.Info("analysis_run finished (ANALYZED)", "run_id", id, "contract_type", contractType, "risk_score", riskScore)
	return nil
}

func (r *sqliteAnalysisRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE analysis_runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(constants.AnalysisStatusFailed), message, formatTime(r.now()), id.String())
	if err != nil {
		r.log.Error("analysis_run finish(FAILED) failed", "run_id", id, "err", err)
		return fmt.Errorf("%w: update run: %v", common.ErrDatabase, err)
	}
	if err := requireRow(res, id); err != nil {
		return err
	}
	r.log.Warn("analysis_run finished (FAILED)", "run_id", id, "error", message)
	return nil
}

func (r *sqliteAnalysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteRunColumns+` FROM analysis_runs WHERE id = ?`, id.String())
	return scanSQLiteRun(row)
}

func (r *sqliteAnalysisRepo) FindAnalyzedByHash(ctx context.Context, hash string) (*entity.AnalysisRun, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteRunColumns+` FROM analysis_runs WHERE document_hash = ? AND status = ? ORDER BY finished_at DESC LIMIT 1`,
		hash, string(constants.AnalysisStatusAnalyzed))
	return scanSQLiteRun(row)
}

func (r *sqliteAnalysisRepo) List(ctx context.Context, limit int) ([]*entity.AnalysisRun, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+sqliteRunColumns+` FROM analysis_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.AnalysisRun
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row rowScanner) (*entity.AnalysisRun, error) {
	var (
		run                          entity.AnalysisRun
		id, status, started          string
		contractType, report, errMsg sql.NullString
		finished                     sql.NullString
		score                        sql.NullInt64
	)
	err := row.Scan(&id, &run.DocumentName, &run.DocumentHash, &status, &contractType, &score, &report, &errMsg, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan run: %v", common.ErrDatabase, err)
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: bad run id %q", common.ErrDatabase, id)
	}
	run.Status = constants.AnalysisStatus(status)
	if run.StartedAt, err = time.Parse(sqliteTimeLayout, started); err != nil {
		return nil, fmt.Errorf("%w: bad started_at %q", common.ErrDatabase, started)
	}
	if contractType.Valid {
		run.ContractType = &contractType.String
	}
	if score.Valid {
		s := int(score.Int64)
		run.RiskScore = &s
	}
	if report.Valid {
		run.Report = []byte(report.String)
	}
	if errMsg.Valid {
		run.ErrorMessage = &errMsg.String
	}
	if finished.Valid {
		t, err := time.Parse(sqliteTimeLayout, finished.String)
		if err != nil {
			return nil, fmt.Errorf("%w: bad finished_at %q", common.ErrDatabase, finished.String)
		}
		run.FinishedAt = &t
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func requireRow(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", common.ErrDatabase, err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	return nil
}
