package grpc

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Raisondetr3/tasktango/internal/config"
	"github.com/Raisondetr3/tasktango/internal/service"
	"github.com/Raisondetr3/tasktango/internal/transport/grpc/middleware"
)

type GRPCServer struct {
	tasks  *service.TaskStore
	server *grpc.Server
	health *health.Server
	config *config.Config
}

// NewGRPCServer registers the task and health services. The health status
// is taken from tasks.Loaded and refreshed again when Serve starts.
func NewGRPCServer(cfg *config.Config, tasks *service.TaskStore) *GRPCServer {
	server := grpc.NewServer(
		grpc.UnaryInterceptor(
			middleware.ChainUnaryInterceptors(
				middleware.PanicRecoveryUnaryInterceptor,
				middleware.RequestIDUnaryInterceptor,
				middleware.LoggingUnaryInterceptor,
			),
		),
	)

	grpcServer := &GRPCServer{
		tasks:  tasks,
		server: server,
		health: health.NewServer(),
		config: cfg,
	}

	RegisterTaskServiceServer(server, grpcServer)
	healthpb.RegisterHealthServer(server, grpcServer.health)
	grpcServer.SyncHealth()

	return grpcServer
}

func (s *GRPCServer) StartServer() error {
	address := ":" + s.config.Server.GRPCPort

	listener, err := net.Listen("tcp", address)
	if err != nil {
		slog.Error("Failed to listen on gRPC port",
			slog.String("address", address),
			slog.String("error", err.Error()))
		return err
	}

	return s.Serve(listener)
}

func (s *GRPCServer) Serve(listener net.Listener) error {
	s.SyncHealth()
	slog.Info("gRPC server starting", slog.String("address", listener.Addr().String()))

	if err := s.server.Serve(listener); err != nil {
		slog.Error("gRPC server error", slog.String("error", err.Error()))
		return err
	}

	return nil
}

// SyncHealth publishes the store's current load state on the health service.
func (s *GRPCServer) SyncHealth() {
	s.health.SetServingStatus(ServiceName, servingStatus(s.tasks))
}

// servingStatus reports NOT_SERVING until the store has hydrated, since
// every mutation is rejected before then.
func servingStatus(tasks *service.TaskStore) healthpb.HealthCheckResponse_ServingStatus {
	if tasks != nil && tasks.Loaded() {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

func (s *GRPCServer) Stop(ctx context.Context) error {
	slog.Info("Stopping gRPC server")
	s.health.Shutdown()

	done := make(chan struct{})

	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.Warn("gRPC server shutdown timeout, forcing stop")
		s.server.Stop()
		return ctx.Err()
	}
}
