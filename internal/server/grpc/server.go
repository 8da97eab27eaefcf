// Package grpc runs the gRPC side of the server: the standard
// grpc.health.v1.Health service, kept in sync with a readiness probe.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported alongside the overall "".
const ServiceName = "talkscribe"

const defaultProbeInterval = 10 * time.Second

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

type GRPCServer struct {
	address       string
	logger        logging.Logger
	health        *health.Server
	probe         Probe
	probeInterval time.Duration
}

// NewGRPCServer builds a health server listening on a. A nil probe always
// reports SERVING.
func NewGRPCServer(a string, l logging.Logger, probe Probe) (*GRPCServer, error) {
	return &GRPCServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		health:        health.NewServer(),
		probe:         probe,
		probeInterval: defaultProbeInterval,
	}, nil
}

// check runs the probe once and publishes the result.
func (s *GRPCServer) check(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.probe != nil {
		pctx, cancel := context.WithTimeout(ctx, s.probeInterval/2)
		err := s.probe(pctx)
		cancel()
		if err != nil {
			s.logger.Warn(ctx, "readiness probe failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *GRPCServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.probeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	// registers service
	healthpb.RegisterHealthServer(srv, s.health)

	s.check(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
