package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/billbot/internal/common"
)

// Server runs the HTTP webhooks and, when configured, a gRPC health endpoint.
type Server struct {
	cfg    common.ServerConfig
	http   *http.Server
	grpc   *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func New(cfg common.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			// turns wait on the language model
			WriteTimeout: cfg.TurnTimeout + 15*time.Second,
		},
		logger: logger,
	}
	if cfg.GRPCAddr != "" {
		s.grpc = grpc.NewServer()
		s.health = health.NewServer()
		healthpb.RegisterHealthServer(s.grpc, s.health)
		reflection.Register(s.grpc)
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 2)

	if s.grpc != nil {
		lis, err := net.Listen("tcp", s.cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		go func() {
			s.logger.Info("grpc health serving", "addr", s.cfg.GRPCAddr)
			if err := s.grpc.Serve(lis); err != nil {
				errc <- fmt.Errorf("grpc serve: %w", err)
			}
		}()
	}

	go func() {
		s.logger.Info("http serving", "addr", s.cfg.HTTPAddr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http serve: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
	}

	s.logger.Info("shutting down...")
	if s.health != nil {
		s.health.Shutdown()
	}
	shutCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutCtx); err != nil {
		s.logger.Error("http shutdown failed", "error", err)
	}
	if s.grpc != nil {
		s.grpc.GracefulStop()
	}
	s.logger.Info("server stopped")
	return runErr
}
