package health

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	domain "github.com/oshokin/range-monitor/internal/domain/monitor"
	"github.com/oshokin/range-monitor/internal/logger"
)

// Reporter mirrors topic statuses into a gRPC health server.
type Reporter struct {
	server *grpchealth.Server
}

// NewReporter creates a Reporter. The overall status starts as SERVING.
func NewReporter() *Reporter {
	return &Reporter{
		server: grpchealth.NewServer(),
	}
}

// StatusChanged publishes the topic status.
func (r *Reporter) StatusChanged(topic string, status domain.Status) {
	r.server.SetServingStatus(topic, servingStatus(status))
}

// Check returns the current serving status of a topic, or of the process for "".
func (r *Reporter) Check(ctx context.Context, topic string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := r.server.Check(ctx, &healthpb.HealthCheckRequest{Service: topic})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err //nolint:wrapcheck // Keep the gRPC status intact.
	}

	return resp.GetStatus(), nil
}

// Serve registers the health service on a new gRPC server and blocks until
// ctx is canceled or the server stops.
func Serve(ctx context.Context, lis net.Listener, r *Reporter) error {
	ctx = logger.WithName(ctx, "grpc-health")

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, r.server)

	logger.InfoKV(ctx, "Health server listening", "listen_address", lis.Addr().String())

	// Closed after GracefulStop finishes so Serve returns only when the server is down.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC health server")
		// Watchers see NOT_SERVING before their streams are closed.
		r.server.Shutdown()
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC health server stopped")

	return nil
}

func servingStatus(status domain.Status) healthpb.HealthCheckResponse_ServingStatus {
	if status == domain.StatusOutOfRange {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}

	return healthpb.HealthCheckResponse_SERVING
}
