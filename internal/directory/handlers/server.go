// Package handlers provides the HTTP and gRPC servers of the directory
// service: the browser-facing directory page, its JSON API, and a gRPC
// health endpoint that follows the load state of the collection.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gartstein/companydir/internal/directory/controller"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the service name reported next to the overall ("") status.
const HealthService = "companydir.Directory"

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer   *grpc.Server
	health       *health.Server
	httpServer   *http.Server
	logger       *zap.Logger
	grpcEndpoint string
	httpEndpoint string
}

// NewServer constructs a Server. A grpcPort of 0 disables the gRPC listener.
func NewServer(
	grpcPort int,
	httpPort int,
	logger *zap.Logger,
	grpcOpts ...grpc.ServerOption,
) *Server {
	s := &Server{
		health: health.NewServer(),
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", httpPort),
			Handler:           http.NotFoundHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:       logger.Named("server"),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
	}
	if grpcPort > 0 {
		s.grpcServer = grpc.NewServer(grpcOpts...)
		s.grpcEndpoint = fmt.Sprintf(":%d", grpcPort)
		healthpb.RegisterHealthServer(s.grpcServer, s.health)
	}
	s.ObserveStatus(controller.StatusLoading)
	return s
}

// RegisterHTTPHandler sets the handler served on the HTTP port.
func (s *Server) RegisterHTTPHandler(handler http.Handler) {
	s.httpServer.Handler = handler
}

// ObserveStatus maps the directory status onto the health service. It is
// meant to be registered with controller.WithStatusObserver.
func (s *Server) ObserveStatus(status controller.Status) {
	serving := healthpb.HealthCheckResponse_NOT_SERVING
	if status == controller.StatusReady {
		serving = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", serving)
	s.health.SetServingStatus(HealthService, serving)
	s.logger.Debug("health status updated",
		zap.String("directory_status", status.String()),
		zap.String("serving", serving.String()),
	)
}

// Start runs the gRPC and HTTP servers concurrently, returning on the first error.
func (s *Server) Start() error {
	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	if s.grpcServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
			lis, err := net.Listen("tcp", s.grpcEndpoint)
			if err != nil {
				errChan <- fmt.Errorf("gRPC listen error: %w", err)
				return
			}
			if err := s.grpcServer.Serve(lis); err != nil {
				errChan <- fmt.Errorf("gRPC serve error: %w", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP serve error: %w", err)
		}
	}()

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stop gracefully shuts down both gRPC and HTTP servers.
func (s *Server) Stop() {
	s.logger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.health.Shutdown()
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Servers stopped")
}
