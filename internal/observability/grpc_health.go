package observability

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealth exposes the standard grpc.health.v1 service so orchestrators that
// probe over gRPC see the same readiness as /ready.
type GRPCHealth struct {
	Server *grpc.Server
	health *health.Server
	checks Checks
}

// NewGRPCHealth creates a gRPC server with the health service registered.
// The service starts NOT_SERVING until the first readiness evaluation.
func NewGRPCHealth(checks Checks) *GRPCHealth {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	return &GRPCHealth{Server: srv, health: hs, checks: checks}
}

// SetReady updates the overall serving status.
func (g *GRPCHealth) SetReady(ready bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ready {
		status = healthpb.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus("", status)
}

// Watch re-evaluates the readiness checks every interval until ctx is done.
func (g *GRPCHealth) Watch(ctx context.Context, interval time.Duration) {
	evaluate := func() {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_, ready := g.checks.Run(checkCtx)
		g.SetReady(ready)
	}

	evaluate()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evaluate()
		}
	}
}

// Shutdown marks the service as not serving and stops the server.
func (g *GRPCHealth) Shutdown() {
	g.health.Shutdown()
	g.Server.GracefulStop()
}
