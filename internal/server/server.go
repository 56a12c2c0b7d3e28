package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/bayleafwalker/quire/internal/container"
)

const shutdownTimeout = 5 * time.Second

// Server runs the admin HTTP listener and the gRPC health service.
type Server struct {
	admin     *http.Server
	adminLis  net.Listener
	grpc      *grpc.Server
	grpcLis   net.Listener
	health    *health.Server
	readiness *Readiness
}

// New listens on both addresses. Nothing is served until Serve.
func New(c *container.Container, ready *Readiness, adminAddr, grpcAddr string) (*Server, error) {
	adminLis, err := net.Listen("tcp", adminAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", adminAddr, err)
	}
	grpcLis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		_ = adminLis.Close()
		return nil, fmt.Errorf("listen on %s: %w", grpcAddr, err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return &Server{
		admin: &http.Server{
			Handler:           NewAdminRouter(c, ready),
			ReadHeaderTimeout: 5 * time.Second,
		},
		adminLis:  adminLis,
		grpc:      grpcServer,
		grpcLis:   grpcLis,
		health:    healthServer,
		readiness: ready,
	}, nil
}

func (s *Server) AdminAddr() string { return s.adminLis.Addr().String() }

func (s *Server) GRPCAddr() string { return s.grpcLis.Addr().String() }

// MarkReady flips the gRPC health status to SERVING once readiness passes.
func (s *Server) MarkReady() error {
	if err := s.readiness.Check(nil); err != nil {
		return err
	}
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	return nil
}

// Serve blocks until ctx is done or a listener fails.
func (s *Server) Serve(ctx context.Context) error {
	logger := logr.FromContextOrDiscard(ctx)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("admin server listening", "addr", s.AdminAddr())
		if err := s.admin.Serve(s.adminLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve admin: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("grpc server listening", "addr", s.GRPCAddr())
		if err := s.grpc.Serve(s.grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.health.Shutdown()
		s.grpc.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.admin.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
