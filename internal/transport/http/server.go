package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/Raisondetr3/tasktango/internal/config"
)

type HTTPServer struct {
	server   *http.Server
	handlers *HTTPHandlers
	config   *config.Config
}

func NewHTTPServer(cfg *config.Config, handlers *HTTPHandlers) *HTTPServer {
	return &HTTPServer{
		handlers: handlers,
		config:   cfg,
		server: &http.Server{
			Addr:         ":" + cfg.Server.HTTPPort,
			Handler:      NewRouter(handlers),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

func (s *HTTPServer) StartServer() error {
	lis, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		slog.Error("Failed to listen", slog.String("address", s.server.Addr), slog.String("error", err.Error()))
		return err
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis until Stop is called.
func (s *HTTPServer) Serve(lis net.Listener) error {
	slog.Info("Starting HTTP server",
		slog.String("address", lis.Addr().String()),
	)

	if err := s.server.Serve(lis); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("HTTP server stopped")
			return nil
		}
		slog.Error("HTTP server error", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	slog.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}
