package server

import (
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	accesshandler "zeno-access/internal/access/handler"
	healthhandler "zeno-access/internal/health/handler"
	policyhandler "zeno-access/internal/policy/handler"
	policyrepo "zeno-access/internal/policy/repository"
	_ "zeno-access/internal/server/codec"
	"zeno-access/internal/server/interceptors"
)

// Deps holds optional service dependencies for gRPC handlers.
type Deps struct {
	// Access configures AccessService. Zero Options serve the role lookups only.
	Access accesshandler.Options
	// PolicyRepo is the policy repository for PolicyService. If nil, policy RPCs return Unimplemented.
	PolicyRepo policyrepo.Repository
	// HealthPinger is used by the health service for readiness (e.g. *sql.DB). If nil, Check skips the DB ping.
	HealthPinger healthhandler.Pinger
	// HealthPolicyChecker is used by the health service for readiness (e.g. OPA evaluator). If nil, Check skips the policy check.
	HealthPolicyChecker healthhandler.PolicyChecker
}

// RegisterServices registers every gRPC service with the given server.
//
// Service → handler mapping:
//   - zeno.access.v1.AccessService → internal/access/handler
//   - zeno.policy.v1.PolicyService → internal/policy/handler
//   - grpc.health.v1.Health        → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	accesshandler.RegisterAccessServiceServer(s, accesshandler.NewServer(deps.Access))
	policyhandler.RegisterPolicyServiceServer(s, policyhandler.NewServer(deps.PolicyRepo))
	healthpb.RegisterHealthServer(s, healthhandler.NewServer(
		deps.HealthPinger,
		deps.HealthPolicyChecker,
		accesshandler.ServiceName,
		policyhandler.ServiceName,
	))
}

// PublicMethods are reachable without a bearer token.
func PublicMethods() map[string]bool {
	return map[string]bool{
		healthpb.Health_Check_FullMethodName: true,
		healthpb.Health_Watch_FullMethodName: true,
	}
}

// AuditSkipMethods are not audited by the interceptor: health checks, plus business registration
// and team mutations, which the team workflow audits itself.
func AuditSkipMethods() map[string]bool {
	skip := PublicMethods()
	for _, m := range []string{"AssignMember", "SelfAssign", "ChangeMemberRole", "RemoveMember", "RegisterBusiness"} {
		skip[accesshandler.FullMethod(m)] = true
	}
	return skip
}

// UnaryInterceptors returns the server's interceptor chain in order: authentication, audit,
// telemetry. tokens may be nil, in which case every non-public RPC is rejected.
func UnaryInterceptors(tokens interceptors.TokenValidator, deps Deps) []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{
		interceptors.AuthUnary(tokens, PublicMethods()),
		interceptors.AuditUnary(deps.Access.AuditRepo, AuditSkipMethods()),
		interceptors.TelemetryUnary(deps.Access.Emitter, PublicMethods()),
	}
}
