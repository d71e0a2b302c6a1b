// Package grpc exposes the authentication service over gRPC together with
// the standard grpc.health.v1 service.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/sentinel/internal/logging"
	"github.com/dmitrijs2005/sentinel/internal/server/metrics"
	"github.com/dmitrijs2005/sentinel/internal/server/models"
	"github.com/dmitrijs2005/sentinel/internal/server/services"
)

// Authenticator is the part of services.AuthService the transport needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	Authorize(ctx context.Context, token string) (*models.Identity, error)
}

type GRPCServer struct {
	address string
	auth    Authenticator
	logger  logging.Logger
	metrics *metrics.Metrics
	health  *health.Server
}

func NewGRPCServer(a string, l logging.Logger, auth Authenticator, m *metrics.Metrics) *GRPCServer {
	s := &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    auth,
		metrics: m,
		health:  health.NewServer(),
	}
	s.SetServing(false)
	return s
}

// SetServing flips the health status reported for both the overall server
// and sentinel.v1.AuthService.
func (s *GRPCServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv.RegisterService(&AuthServiceDesc, s)
	healthpb.RegisterHealthServer(srv, s.health)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			s.health.Shutdown()
			srv.GracefulStop()
		case <-done:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	err := srv.Serve(lis)
	close(done)
	<-stopped
	return err
}
