// Package handler serves the access service over gRPC: menu and feature lookups for the
// caller's organization role, business action decisions, business visibility and the team
// workflow.
package handler

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	auditrepo "zeno-access/internal/audit/repository"
	bizdomain "zeno-access/internal/businessuser/domain"
	"zeno-access/internal/businessuser/repository"
	"zeno-access/internal/businessuser/service"
	"zeno-access/internal/menu"
	"zeno-access/internal/platform/rbac"
	"zeno-access/internal/policy/engine"
	"zeno-access/internal/role/domain"
	"zeno-access/internal/server/interceptors"
	"zeno-access/internal/taxonomy"
	"zeno-access/internal/telemetry"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 500
	eventSource          = "access_service"
)

// Server implements AccessServiceServer.
type Server struct {
	lister    rbac.AssignmentLister
	team      *service.TeamService
	evaluator engine.Evaluator
	auditRepo auditrepo.Repository
	emitter   telemetry.EventEmitter
	metrics   *telemetry.DecisionMetrics
}

// Options configures NewServer. Every field may be nil:
//   - Lister nil: business RPCs return Unimplemented.
//   - Team nil: team RPCs return Unimplemented (assignments owned by an external service).
//   - Evaluator nil: the built-in rule.
//   - AuditRepo nil: ListAuditLogs returns Unimplemented.
type Options struct {
	Lister    rbac.AssignmentLister
	Team      *service.TeamService
	Evaluator engine.Evaluator
	AuditRepo auditrepo.Repository
	Emitter   telemetry.EventEmitter
	Metrics   *telemetry.DecisionMetrics
}

// NewServer returns an access gRPC server.
func NewServer(opts Options) *Server {
	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = engine.StaticEvaluator{}
	}
	return &Server{
		lister:    opts.Lister,
		team:      opts.Team,
		evaluator: evaluator,
		auditRepo: opts.AuditRepo,
		emitter:   opts.Emitter,
		metrics:   opts.Metrics,
	}
}

// GetMenu returns the default sidebar filtered for the caller's organization role.
func (s *Server) GetMenu(ctx context.Context, req *GetMenuRequest) (*GetMenuResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	items := menu.Filter(menu.DefaultTree(), actor.OrgRole)
	if items == nil {
		items = []menu.Item{}
	}
	return &GetMenuResponse{
		Role:  string(actor.OrgRole),
		Items: items,
		Keys:  menu.Keys(items),
	}, nil
}

// GetFeatures returns the feature, page visibility and branch access of the caller's organization role.
func (s *Server) GetFeatures(ctx context.Context, req *GetFeaturesRequest) (*GetFeaturesResponse, error) {
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return &GetFeaturesResponse{
		Role:         string(actor.OrgRole),
		Features:     taxonomy.FeaturePermissions(actor.OrgRole),
		Views:        taxonomy.Visibility(actor.OrgRole),
		BranchAccess: taxonomy.BranchAccess(actor.OrgRole),
	}, nil
}

// GetBusinessPermissions resolves the caller's role in the business and evaluates every action.
func (s *Server) GetBusinessPermissions(ctx context.Context, req *GetBusinessPermissionsRequest) (*GetBusinessPermissionsResponse, error) {
	if s.lister == nil {
		return nil, status.Error(codes.Unimplemented, "business assignments not configured")
	}
	if req.BusinessID == 0 {
		return nil, status.Error(codes.InvalidArgument, "business_id is required")
	}
	caller, err := rbac.ResolveCaller(ctx, s.lister, req.BusinessID)
	if err != nil {
		return nil, err
	}
	d := rbac.Decide(caller.OrgRole, caller.BusinessRole)
	for _, action := range rbac.Actions {
		allowed := s.evaluate(ctx, caller, req.BusinessID, action)
		switch action {
		case rbac.ActionEditBusiness:
			d.CanEdit = allowed
		case rbac.ActionDeleteBusiness:
			d.CanDelete = allowed
		case rbac.ActionManageTeam:
			d.CanManageTeam = allowed
		case rbac.ActionChangeTeamRoles:
			d.CanChangeTeamRoles = allowed
		}
	}
	return &GetBusinessPermissionsResponse{BusinessID: req.BusinessID, Permissions: d}, nil
}

// AuthorizeBusinessAction answers whether the caller may perform one action on a business.
// A denial is a successful response with Allowed false; an unknown action is InvalidArgument.
func (s *Server) AuthorizeBusinessAction(ctx context.Context, req *AuthorizeBusinessActionRequest) (*AuthorizeBusinessActionResponse, error) {
	if s.lister == nil {
		return nil, status.Error(codes.Unimplemented, "business assignments not configured")
	}
	if req.BusinessID == 0 {
		return nil, status.Error(codes.InvalidArgument, "business_id is required")
	}
	action, ok := rbac.ParseAction(req.Action)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown business action %q", req.Action)
	}
	caller, err := rbac.ResolveCaller(ctx, s.lister, req.BusinessID)
	if err != nil {
		return nil, err
	}
	resp := &AuthorizeBusinessActionResponse{
		Allowed:      s.evaluate(ctx, caller, req.BusinessID, action),
		BusinessRole: string(caller.BusinessRole),
	}
	if !resp.Allowed {
		resp.Reason = rbac.DenialReason(action)
	}
	return resp, nil
}

// ListVisibleBusinesses filters the given business ids to those the caller may see. Only
// businesses of the caller's organization are considered: organization owners see all of them,
// everyone else the businesses they are assigned to. An empty request lists every visible business
// when the lister can enumerate the organization's businesses.
func (s *Server) ListVisibleBusinesses(ctx context.Context, req *ListVisibleBusinessesRequest) (*ListVisibleBusinessesResponse, error) {
	if s.lister == nil {
		return nil, status.Error(codes.Unimplemented, "business assignments not configured")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if actor.OrgID == 0 {
		return nil, status.Error(codes.PermissionDenied, "organization context required")
	}

	ids := req.BusinessIDs
	var assignments []*bizdomain.Assignment
	catalog, hasCatalog := s.lister.(rbac.BusinessCatalog)
	byUser, hasByUser := s.lister.(rbac.UserAssignmentLister)
	if hasCatalog {
		businesses, err := catalog.ListBusinesses(ctx, actor.OrgID)
		if err != nil {
			log.Printf("access: list businesses for org %d: %v", actor.OrgID, err)
			return nil, status.Error(codes.Internal, "failed to resolve business visibility")
		}
		ids = rbac.InOrganization(actor.OrgID, req.BusinessIDs, businesses)
	}
	switch {
	case hasCatalog && actor.OrgRole.IsOwner():
		// every business of the organization is visible
	case hasByUser && !actor.OrgRole.IsOwner():
		assignments, err = byUser.ListByUser(ctx, actor.OrgID, actor.UserID)
		if err != nil {
			log.Printf("access: list assignments for user %d: %v", actor.UserID, err)
			return nil, status.Error(codes.Internal, "failed to resolve business visibility")
		}
	default:
		ids, assignments = s.scopedAssignments(ctx, actor, ids)
	}

	visible := rbac.VisibleBusinesses(actor.OrgRole, actor.UserID, ids, assignments)
	if visible == nil {
		visible = []int64{}
	}
	return &ListVisibleBusinessesResponse{BusinessIDs: visible}, nil
}

// scopedAssignments lists each business of ids within the actor's organization and returns the
// ids that resolved together with their assignments. Businesses of another organization and
// businesses whose lookup fails are left out.
func (s *Server) scopedAssignments(ctx context.Context, actor service.Actor, ids []int64) ([]int64, []*bizdomain.Assignment) {
	kept := make([]int64, 0, len(ids))
	var assignments []*bizdomain.Assignment
	for _, id := range ids {
		list, err := s.lister.ListByBusiness(ctx, actor.OrgID, id)
		if err != nil {
			if !errors.Is(err, bizdomain.ErrBusinessNotFound) {
				log.Printf("access: list assignments for business %d: %v", id, err)
			}
			continue
		}
		kept = append(kept, id)
		assignments = append(assignments, list...)
	}
	return kept, assignments
}

// RegisterBusiness creates a business in the caller's organization with the caller as owner.
func (s *Server) RegisterBusiness(ctx context.Context, req *RegisterBusinessRequest) (*RegisterBusinessResponse, error) {
	if s.team == nil {
		return nil, status.Error(codes.Unimplemented, "team management not configured")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	b, owner, err := s.team.RegisterBusiness(ctx, actor, req.Name)
	if err != nil {
		return nil, teamError(err)
	}
	return &RegisterBusinessResponse{Business: b, Owner: owner}, nil
}

// AssignMember adds a user to a business.
func (s *Server) AssignMember(ctx context.Context, req *AssignMemberRequest) (*MemberResponse, error) {
	if s.team == nil {
		return nil, status.Error(codes.Unimplemented, "team management not configured")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.team.Assign(ctx, actor, req.BusinessID, req.UserID, domain.ParseBusinessRole(req.Role))
	if err != nil {
		return nil, teamError(err)
	}
	return &MemberResponse{Member: a}, nil
}

// SelfAssign adds the caller to a business they hold no role in.
func (s *Server) SelfAssign(ctx context.Context, req *SelfAssignRequest) (*MemberResponse, error) {
	if s.team == nil {
		return nil, status.Error(codes.Unimplemented, "team management not configured")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.team.SelfAssign(ctx, actor, req.BusinessID, domain.ParseBusinessRole(req.Role))
	if err != nil {
		return nil, teamError(err)
	}
	return &MemberResponse{Member: a}, nil
}

// ChangeMemberRole sets the business role of an assignment.
func (s *Server) ChangeMemberRole(ctx context.Context, req *ChangeMemberRoleRequest) (*MemberResponse, error) {
	if s.team == nil {
		return nil, status.Error(codes.Unimplemented, "team management not configured")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.team.ChangeRole(ctx, actor, req.AssignmentID, domain.ParseBusinessRole(req.Role))
	if err != nil {
		return nil, teamError(err)
	}
	return &MemberResponse{Member: a}, nil
}

// RemoveMember deletes an assignment.
func (s *Server) RemoveMember(ctx context.Context, req *RemoveMemberRequest) (*RemoveMemberResponse, error) {
	if s.team == nil {
		return nil, status.Error(codes.Unimplemented, "team management not configured")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.team.Remove(ctx, actor, req.AssignmentID); err != nil {
		return nil, teamError(err)
	}
	return &RemoveMemberResponse{}, nil
}

// ListMembers lists the team of a business the caller belongs to.
func (s *Server) ListMembers(ctx context.Context, req *ListMembersRequest) (*ListMembersResponse, error) {
	if s.team == nil {
		return nil, status.Error(codes.Unimplemented, "team management not configured")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.team.Members(ctx, actor, req.BusinessID)
	if err != nil {
		return nil, teamError(err)
	}
	if list == nil {
		list = []*bizdomain.Assignment{}
	}
	return &ListMembersResponse{Members: list}, nil
}

// ListAuditLogs returns the caller's organization audit log. Organization owners only.
func (s *Server) ListAuditLogs(ctx context.Context, req *ListAuditLogsRequest) (*ListAuditLogsResponse, error) {
	if s.auditRepo == nil {
		return nil, status.Error(codes.Unimplemented, "audit log not configured")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.OrgRole.IsOwner() {
		return nil, status.Error(codes.PermissionDenied, "organization owner role required")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultAuditPageSize
	}
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	logs, err := s.auditRepo.ListByOrg(ctx, actor.OrgID, limit, offset)
	if err != nil {
		log.Printf("access: list audit logs for org %d: %v", actor.OrgID, err)
		return nil, status.Error(codes.Internal, "failed to list audit logs")
	}
	return &ListAuditLogsResponse{Logs: logs}, nil
}

// evaluate runs the configured evaluator and records the decision. Evaluator errors deny.
func (s *Server) evaluate(ctx context.Context, caller rbac.Caller, businessID int64, action rbac.Action) bool {
	allowed, err := s.evaluator.EvaluateBusinessAction(ctx, engine.Input{
		OrgID:        caller.OrgID,
		UserID:       caller.UserID,
		OrgRole:      caller.OrgRole,
		BusinessID:   businessID,
		BusinessRole: caller.BusinessRole,
		Action:       action,
	})
	if err != nil {
		log.Printf("access: evaluate %s on business %d: %v", action, businessID, err)
		allowed = false
	}
	reason := ""
	if !allowed {
		reason = rbac.DenialReason(action)
	}
	s.metrics.Record(ctx, string(action), allowed, reason)
	sessionID, _ := interceptors.GetSessionID(ctx)
	telemetry.EmitAsync(s.emitter, telemetry.DecisionEvent(telemetry.Decision{
		OrgID:        caller.OrgID,
		UserID:       caller.UserID,
		SessionID:    sessionID,
		BusinessID:   businessID,
		Action:       string(action),
		BusinessRole: string(caller.BusinessRole),
		Allowed:      allowed,
		Reason:       reason,
	}, eventSource))
	return allowed
}

func actorFromContext(ctx context.Context) (service.Actor, error) {
	userID, ok := interceptors.GetUserID(ctx)
	if !ok || userID == 0 {
		return service.Actor{}, status.Error(codes.Unauthenticated, "user context required")
	}
	orgID, _ := interceptors.GetOrgID(ctx)
	orgRole, _ := interceptors.GetOrgRole(ctx)
	return service.Actor{UserID: userID, OrgID: orgID, OrgRole: orgRole}, nil
}

// teamError maps team workflow errors to gRPC status codes.
func teamError(err error) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, bizdomain.ErrBusinessNotFound):
		return status.Error(codes.NotFound, "business not found")
	case errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, repository.ErrDuplicateAssignment):
		return status.Error(codes.AlreadyExists, "user is already assigned to this business")
	default:
		log.Printf("access: team operation failed: %v", err)
		return status.Error(codes.Internal, "team operation failed")
	}
}
