package grpc

import (
	"context"
	"log/slog"
	"time"

	"simple-shop/internal/logger"
	"simple-shop/internal/service"

	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthChecker reports the state of the service's dependencies.
type HealthChecker interface {
	Check(ctx context.Context) service.HealthStatus
}

// HealthReporter publishes dependency health through the standard
// grpc.health.v1.Health service.
type HealthReporter struct {
	checker  HealthChecker
	server   *health.Server
	services []string
}

var GrpcHealthReporterTracer = otel.Tracer("GrpcHealthReporter")

// NewHealthReporter reports the overall status under "" and under each name in
// services.
func NewHealthReporter(checker HealthChecker, services ...string) *HealthReporter {
	return &HealthReporter{
		checker:  checker,
		server:   health.NewServer(),
		services: append([]string{""}, services...),
	}
}

func (h *HealthReporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

func (h *HealthReporter) Server() healthpb.HealthServer {
	return h.server
}

// Update runs one check and publishes its result.
func (h *HealthReporter) Update(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, span := GrpcHealthReporterTracer.Start(ctx, "GrpcHealthReporter.Update")
	defer span.End()

	status := healthpb.HealthCheckResponse_SERVING
	if result := h.checker.Check(ctx); !result.Healthy() {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		logger.Warn(ctx, "Dependency unhealthy", slog.String("mongodb", result.Mongo))
	}

	for _, name := range h.services {
		h.server.SetServingStatus(name, status)
	}
	return status
}

// Run polls until ctx is done, then marks every service as not serving.
func (h *HealthReporter) Run(ctx context.Context, interval time.Duration) {
	h.Update(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Update(ctx)
		}
	}
}
