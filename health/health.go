// Package health serves the standard gRPC health checking protocol so
// orchestrators can probe the service without going through the REST API.
package health

import (
	"net"

	"bnta-demo/microservices/tasks-service/tracing"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Server struct {
	grpc   *grpc.Server
	health *grpchealth.Server
	logger *log.Logger
}

// NewServer starts out NOT_SERVING; call Ready once the store is seeded.
func NewServer(logger *log.Logger) *Server {
	s := &Server{
		grpc:   grpc.NewServer(),
		health: grpchealth.NewServer(),
		logger: logger,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *Server) Ready() {
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

func (s *Server) NotReady() {
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(tracing.ServiceName, status)
}

// Checker exposes the health service for in-process checks.
func (s *Server) Checker() healthpb.HealthServer {
	return s.health
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("grpc health server listening", "address", lis.Addr().String())
	return s.grpc.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
