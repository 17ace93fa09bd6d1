package main

import (
	"context"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	grpcTransport "github.com/Raisondetr3/tasktango/internal/transport/grpc"
	httpTransport "github.com/Raisondetr3/tasktango/internal/transport/http"
	"github.com/Raisondetr3/tasktango/pkg/logger"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC task API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg := opts.cfg

	logger.LogServiceStart(serviceName, map[string]interface{}{
		"http_port":      cfg.Server.HTTPPort,
		"grpc_port":      cfg.Server.GRPCPort,
		"storage_driver": cfg.Storage.Driver,
		"storage_key":    cfg.Storage.Key,
		"log_level":      cfg.Logging.Level,
		"redis_enabled":  cfg.Redis.Enabled,
	})

	defer logger.LogServiceStop(serviceName, "shutdown")

	a, err := openApp(ctx, cfg, opts.storeOptions()...)
	if err != nil {
		return err
	}
	defer a.Close()

	handlers := httpTransport.NewHTTPHandlers(cfg, a.health, a.store, a.registry)
	httpServer := httpTransport.NewHTTPServer(cfg, handlers)
	grpcServer := grpcTransport.NewGRPCServer(cfg, a.store)

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("Starting HTTP server", slog.String("port", cfg.Server.HTTPPort))

		if err := httpServer.StartServer(); err != nil {
			slog.Error("HTTP server error", slog.String("error", err.Error()))
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("Starting gRPC server", slog.String("port", cfg.Server.GRPCPort))

		if err := grpcServer.StartServer(); err != nil {
			slog.Error("gRPC server error", slog.String("error", err.Error()))
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}
	slog.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		slog.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	slog.Info("Stopping gRPC server...")
	if err := grpcServer.Stop(shutdownCtx); err != nil {
		slog.Error("Error stopping gRPC server", slog.String("error", err.Error()))
	}

	slog.Info("Waiting for servers to stop...")
	wg.Wait()

	slog.Info("All servers stopped successfully")
	return serveErr
}
