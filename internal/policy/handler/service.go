package handler

import (
	"context"

	"google.golang.org/grpc"

	"zeno-access/internal/policy/domain"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "zeno.policy.v1.PolicyService"

// CreatePolicyRequest adds a Rego module to the caller's organization.
type CreatePolicyRequest struct {
	Rules   string `json:"rules"`
	Enabled bool   `json:"enabled"`
}

// UpdatePolicyRequest replaces the rules and enabled flag of a policy.
type UpdatePolicyRequest struct {
	PolicyID string `json:"policy_id"`
	Rules    string `json:"rules"`
	Enabled  bool   `json:"enabled"`
}

// DeletePolicyRequest deletes a policy.
type DeletePolicyRequest struct {
	PolicyID string `json:"policy_id"`
}

// DeletePolicyResponse is empty.
type DeletePolicyResponse struct{}

// ListPoliciesRequest lists the caller's organization policies.
type ListPoliciesRequest struct{}

// PolicyResponse returns one policy.
type PolicyResponse struct {
	Policy *domain.Policy `json:"policy"`
}

// ListPoliciesResponse lists policies.
type ListPoliciesResponse struct {
	Policies []*domain.Policy `json:"policies"`
}

// PolicyServiceServer is the server API for the policy service.
type PolicyServiceServer interface {
	CreatePolicy(context.Context, *CreatePolicyRequest) (*PolicyResponse, error)
	UpdatePolicy(context.Context, *UpdatePolicyRequest) (*PolicyResponse, error)
	DeletePolicy(context.Context, *DeletePolicyRequest) (*DeletePolicyResponse, error)
	ListPolicies(context.Context, *ListPoliciesRequest) (*ListPoliciesResponse, error)
}

// RegisterPolicyServiceServer registers srv on s.
func RegisterPolicyServiceServer(s grpc.ServiceRegistrar, srv PolicyServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req any, Resp any](name string, call func(PolicyServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PolicyServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(PolicyServiceServer), ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc is the grpc.ServiceDesc for the policy service. Messages use the JSON codec.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PolicyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreatePolicy", PolicyServiceServer.CreatePolicy),
		unary("UpdatePolicy", PolicyServiceServer.UpdatePolicy),
		unary("DeletePolicy", PolicyServiceServer.DeletePolicy),
		unary("ListPolicies", PolicyServiceServer.ListPolicies),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "zeno/policy/v1/policy.json",
}
