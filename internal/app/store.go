package app

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/repository"
)

// Store is an opened AnalysisRepository plus whatever must be closed with it.
type Store struct {
	Runs    repository.AnalysisRepository
	Backend string // "postgres" | "sqlite"
	Cleanup func()
}

// OpenStore prefers Postgres when a DSN is set, then SQLite at sqlitePath. It returns
// (nil, nil) when neither is configured, so callers may run without persistence.
func OpenStore(ctx context.Context, cfg common.DatabaseConfig, sqlitePath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sqlitePath == "" {
		sqlitePath = cfg.SQLitePath
	}

	var (
		runs    repository.AnalysisRepository
		backend string
		cleanup func()
	)
	switch {
	case cfg.DSN != "":
		pool, err := repository.Open(ctx, repository.Config{
			DSN:              cfg.DSN,
			MaxConns:         cfg.MaxConns,
			MinConns:         cfg.MinConns,
			MaxConnLifetime:  cfg.MaxConnLifetime,
			MaxConnIdleTime:  cfg.MaxConnIdleTime,
			DialTimeout:      cfg.DialTimeout,
			StatementTimeout: cfg.StatementTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := repository.HealthCheck(ctx, pool, cfg.DialTimeout, logger); err != nil {
			pool.Close()
			return nil, err
		}
		runs, backend = repository.NewPostgresAnalysisRepository(pool, logger), "postgres"
		cleanup = func() { repository.Close(pool, nil, logger) }
	case sqlitePath != "":
		db, err := repository.OpenSQLite(ctx, sqlitePath, logger)
		if err != nil {
			return nil, err
		}
		runs, backend = repository.NewSQLiteAnalysisRepository(db, logger), "sqlite"
		cleanup = func() { repository.Close(nil, db, logger) }
	default:
		return nil, nil
	}

	if err := runs.Migrate(ctx); err != nil {
		cleanup()
		return nil, err
	}
	return &Store{Runs: runs, Backend: backend, Cleanup: cleanup}, nil
}
