package rbac

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	bizdomain "zeno-access/internal/businessuser/domain"
	"zeno-access/internal/role/domain"
	"zeno-access/internal/server/interceptors"
)

// AssignmentLister returns the business-user assignments of one business of an organization.
// Implementations answer bizdomain.ErrBusinessNotFound when the business does not belong to orgID.
// Implemented by the assignment repositories and by the REST client of the external assignment service.
type AssignmentLister interface {
	ListByBusiness(ctx context.Context, orgID, businessID int64) ([]*bizdomain.Assignment, error)
}

// BusinessCatalog lists the businesses owned by an organization.
type BusinessCatalog interface {
	ListBusinesses(ctx context.Context, orgID int64) ([]*bizdomain.Business, error)
}

// UserAssignmentLister lists a user's assignments across the businesses of an organization.
type UserAssignmentLister interface {
	ListByUser(ctx context.Context, orgID, userID int64) ([]*bizdomain.Assignment, error)
}

// Caller is the resolved identity of an authorized request.
type Caller struct {
	UserID       int64
	OrgID        int64
	OrgRole      domain.OrgRole
	BusinessRole domain.BusinessRole
}

// ResolveCaller reads the identity from ctx and resolves the caller's role in businessID.
// Returns Unauthenticated when ctx carries no user, PermissionDenied without an organization,
// NotFound when businessID is not a business of the caller's organization and Internal when
// assignments cannot be listed.
func ResolveCaller(ctx context.Context, lister AssignmentLister, businessID int64) (Caller, error) {
	userID, okUser := interceptors.GetUserID(ctx)
	if !okUser || userID == 0 {
		return Caller{}, status.Error(codes.Unauthenticated, "user context required")
	}
	orgID, _ := interceptors.GetOrgID(ctx)
	if orgID == 0 {
		return Caller{}, status.Error(codes.PermissionDenied, "organization context required")
	}
	orgRole, _ := interceptors.GetOrgRole(ctx)
	list, err := lister.ListByBusiness(ctx, orgID, businessID)
	if err != nil {
		if errors.Is(err, bizdomain.ErrBusinessNotFound) {
			return Caller{}, status.Error(codes.NotFound, "business not found")
		}
		return Caller{}, status.Error(codes.Internal, "failed to resolve business role")
	}
	return Caller{
		UserID:       userID,
		OrgID:        orgID,
		OrgRole:      orgRole,
		BusinessRole: ResolveBusinessRole(list, userID),
	}, nil
}

// RequireBusinessAction ensures the caller may perform action on businessID: organization owners
// always pass, everyone else needs the action's minimum business role.
// Organization ownership only applies to businesses of the caller's organization.
// Returns the resolved caller on success; a gRPC error (Unauthenticated, NotFound, Internal,
// InvalidArgument or PermissionDenied) on failure.
func RequireBusinessAction(ctx context.Context, lister AssignmentLister, businessID int64, action Action) (Caller, error) {
	if _, ok := RequiredRole(action); !ok {
		return Caller{}, status.Errorf(codes.InvalidArgument, "unknown business action %q", action)
	}
	c, err := ResolveCaller(ctx, lister, businessID)
	if err != nil {
		return Caller{}, err
	}
	if !Authorize(c.OrgRole, c.BusinessRole, action) {
		return Caller{}, status.Error(codes.PermissionDenied, DenialReason(action))
	}
	return c, nil
}

// RequireBusinessMember ensures the caller holds any role in businessID or is an organization owner.
func RequireBusinessMember(ctx context.Context, lister AssignmentLister, businessID int64) (Caller, error) {
	c, err := ResolveCaller(ctx, lister, businessID)
	if err != nil {
		return Caller{}, err
	}
	if c.BusinessRole == domain.BusinessRoleNone && !c.OrgRole.IsOwner() {
		return Caller{}, status.Error(codes.PermissionDenied, "not a member of this business")
	}
	return c, nil
}
