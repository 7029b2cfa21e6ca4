package handler

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "zeno.access.v1.AccessService"

// AccessServiceServer is the server API for the access service.
type AccessServiceServer interface {
	GetMenu(context.Context, *GetMenuRequest) (*GetMenuResponse, error)
	GetFeatures(context.Context, *GetFeaturesRequest) (*GetFeaturesResponse, error)
	GetBusinessPermissions(context.Context, *GetBusinessPermissionsRequest) (*GetBusinessPermissionsResponse, error)
	AuthorizeBusinessAction(context.Context, *AuthorizeBusinessActionRequest) (*AuthorizeBusinessActionResponse, error)
	ListVisibleBusinesses(context.Context, *ListVisibleBusinessesRequest) (*ListVisibleBusinessesResponse, error)
	RegisterBusiness(context.Context, *RegisterBusinessRequest) (*RegisterBusinessResponse, error)
	AssignMember(context.Context, *AssignMemberRequest) (*MemberResponse, error)
	SelfAssign(context.Context, *SelfAssignRequest) (*MemberResponse, error)
	ChangeMemberRole(context.Context, *ChangeMemberRoleRequest) (*MemberResponse, error)
	RemoveMember(context.Context, *RemoveMemberRequest) (*RemoveMemberResponse, error)
	ListMembers(context.Context, *ListMembersRequest) (*ListMembersResponse, error)
	ListAuditLogs(context.Context, *ListAuditLogsRequest) (*ListAuditLogsResponse, error)
}

// RegisterAccessServiceServer registers srv on s.
func RegisterAccessServiceServer(s grpc.ServiceRegistrar, srv AccessServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// FullMethod returns the full gRPC method name of method on the access service.
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// unary adapts a typed method to a grpc.MethodDesc handler.
func unary[Req any, Resp any](name string, call func(AccessServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AccessServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(AccessServiceServer), ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc is the grpc.ServiceDesc for the access service. Messages use the JSON codec.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AccessServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetMenu", AccessServiceServer.GetMenu),
		unary("GetFeatures", AccessServiceServer.GetFeatures),
		unary("GetBusinessPermissions", AccessServiceServer.GetBusinessPermissions),
		unary("AuthorizeBusinessAction", AccessServiceServer.AuthorizeBusinessAction),
		unary("ListVisibleBusinesses", AccessServiceServer.ListVisibleBusinesses),
		unary("RegisterBusiness", AccessServiceServer.RegisterBusiness),
		unary("AssignMember", AccessServiceServer.AssignMember),
		unary("SelfAssign", AccessServiceServer.SelfAssign),
		unary("ChangeMemberRole", AccessServiceServer.ChangeMemberRole),
		unary("RemoveMember", AccessServiceServer.RemoveMember),
		unary("ListMembers", AccessServiceServer.ListMembers),
		unary("ListAuditLogs", AccessServiceServer.ListAuditLogs),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "zeno/access/v1/access.json",
}
