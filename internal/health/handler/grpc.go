// Package handler implements the standard grpc.health.v1 Health service used for readiness and
// liveness checks. Check pings the database and the policy engine when they are configured.
package handler

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker is satisfied by the OPA evaluator.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server implements healthpb.HealthServer. Watch and List are left to the embedded
// unimplemented server.
type Server struct {
	healthpb.UnimplementedHealthServer
	pinger   Pinger
	policy   PolicyChecker
	services map[string]bool
}

// NewServer returns a new Health gRPC server. pinger and policy may be nil; nil checks are skipped.
// services lists the fully qualified service names Check answers for in addition to "".
func NewServer(pinger Pinger, policy PolicyChecker, services ...string) *Server {
	known := map[string]bool{"": true}
	for _, name := range services {
		known[name] = true
	}
	return &Server{pinger: pinger, policy: policy, services: known}
}

// Check reports SERVING when every configured dependency answers. A failing dependency yields
// NOT_SERVING rather than a gRPC error; an unknown service name yields NotFound.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if !s.services[req.GetService()] {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if s.pinger != nil {
		if err := s.pinger.PingContext(ctx); err != nil {
			log.Printf("health: database ping: %v", err)
			return notServing(), nil
		}
	}
	if s.policy != nil {
		if err := s.policy.HealthCheck(ctx); err != nil {
			log.Printf("health: policy engine: %v", err)
			return notServing(), nil
		}
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

func notServing() *healthpb.HealthCheckResponse {
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}
}
