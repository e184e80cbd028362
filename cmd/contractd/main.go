package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/contracts-analyzer/internal/app"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contracts-analyzer/internal/repository"
	"github.com/joseph-ayodele/contracts-analyzer/internal/server"
)

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Log, os.Stdout)
	if err := cfg.ValidateServer(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	caps, err := app.NewCapabilities(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("capability backend", "error", err)
		os.Exit(1)
	}

	var (
		opts []pipeline.Option
		runs repository.AnalysisRepository
	)
	store, err := app.OpenStore(ctx, cfg.Database, "", logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	if store != nil {
		defer store.Cleanup()
		runs = store.Runs
		opts = append(opts, pipeline.WithRecorder(repository.NewRecorder(runs)))
	} else {
		logger.Warn("no database configured, analysis runs are not stored")
	}

	proc, err := app.NewProcessor(cfg, app.NewExtractor(cfg.OCR, logger), caps, logger, opts...)
	if err != nil {
		logger.Error("build processor", "error", err)
		os.Exit(2)
	}

	svc := server.NewAnalysisService(proc, runs, cfg.Server.MaxUploadBytes, logger)
	grpcServer, health := server.NewGRPCServer(svc, logger)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	logger.Info("gRPC serving", "addr", lis.Addr().String(), "backend", caps.Backend)

	errCh := make(chan error, 1)
	go func() { errCh <- grpcServer.Serve(lis) }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("grpc serve", "error", err)
	}
	health.Shutdown()
	grpcServer.GracefulStop()
	logger.Info("stopped")
}
