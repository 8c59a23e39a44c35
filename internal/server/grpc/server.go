// Package grpcserver runs the operational gRPC listener: the standard health
// service, driven by store reachability, plus optional reflection.
package grpcserver

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health entry reported next to the overall "" entry.
const ServiceName = "taskhive"

// Options tune New.
type Options struct {
	// Ping checks the store; nil always reports SERVING.
	Ping func(ctx context.Context) error
	// Interval between probes in Run. Defaults to 10s.
	Interval   time.Duration
	Reflection bool
}

// Server wraps a grpc.Server carrying health and reflection.
type Server struct {
	g      *grpc.Server
	health *health.Server
	opt    Options
	log    *zap.Logger
}

// New builds the server. Health starts NOT_SERVING until the first Probe.
func New(log *zap.Logger, opt Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opt.Interval <= 0 {
		opt.Interval = 10 * time.Second
	}
	g := grpc.NewServer(
		grpc.ChainUnaryInterceptor(RecoverUnary(log), LoggingUnary(log)),
		grpc.ChainStreamInterceptor(LoggingStream(log)),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(g, hs)
	if opt.Reflection {
		reflection.Register(g)
	}
	s := &Server{g: g, health: hs, opt: opt, log: log}
	s.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *Server) set(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Probe pings the store once and publishes the result.
func (s *Server) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if s.opt.Ping != nil {
		pctx, cancel := context.WithTimeout(ctx, s.opt.Interval)
		err := s.opt.Ping(pctx)
		cancel()
		if err != nil {
			s.log.Warn("store ping failed", zap.Error(err))
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.set(st)
	return st
}

// Run probes every Interval until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.Probe(ctx)
	t := time.NewTicker(s.opt.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Probe(ctx)
		}
	}
}

// Serve blocks accepting connections on lis.
func (s *Server) Serve(lis net.Listener) error {
	return s.g.Serve(lis)
}

// Shutdown flips health to NOT_SERVING and stops gracefully, forcing after timeout.
func (s *Server) Shutdown(timeout time.Duration) {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() {
		s.g.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.g.Stop()
	}
}
