// Package server exposes the analysis pipeline over gRPC.
package server

import (
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// envelope leaves room for framing around the largest accepted document.
const envelope = 64 << 10

// NewGRPCServer registers svc, the health service and reflection on a new server.
// The health status starts as SERVING for the empty service name and for ServiceName.
func NewGRPCServer(svc *AnalysisService, logger *slog.Logger) (*grpc.Server, *health.Server) {
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(LoggingInterceptor(logger))}
	if svc.maxUpload > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(svc.maxUpload+envelope))
	}
	s := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(s)
	RegisterAnalysisServer(s, svc)
	return s, hs
}
