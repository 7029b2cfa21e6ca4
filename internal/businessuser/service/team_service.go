// Package service implements the business team workflow: registering a business, assigning users
// to it, changing their business role and removing them. Every mutation is authorized against the
// actor's role in the target business and written to the audit log. Businesses of another
// organization are reported as not found. The actor's organization role is read but never written.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zeno-access/internal/audit"
	"zeno-access/internal/businessuser/domain"
	"zeno-access/internal/businessuser/repository"
	"zeno-access/internal/platform/rbac"
	"zeno-access/internal/policy/engine"
	roledomain "zeno-access/internal/role/domain"
)

var (
	// ErrForbidden wraps every authorization failure; the message carries the denial reason.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when the assignment does not exist.
	ErrNotFound = errors.New("assignment not found")
	// ErrInvalidRole is returned when the requested role is not owner, manager or staff.
	ErrInvalidRole = errors.New("role must be owner, manager or staff")
	// ErrInvalidArgument is returned for missing ids or a missing organization.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Actor is the authenticated user performing a team operation.
type Actor struct {
	UserID  int64
	OrgID   int64
	OrgRole roledomain.OrgRole
}

// TeamService manages business-user assignments.
type TeamService struct {
	repo      repository.Repository
	evaluator engine.Evaluator
	audit     audit.AuditLogger
}

// NewTeamService returns a TeamService. evaluator may be nil (built-in rule); auditLogger may be
// nil (no audit trail).
func NewTeamService(repo repository.Repository, evaluator engine.Evaluator, auditLogger audit.AuditLogger) *TeamService {
	if evaluator == nil {
		evaluator = engine.StaticEvaluator{}
	}
	return &TeamService{repo: repo, evaluator: evaluator, audit: auditLogger}
}

// RegisterBusiness creates a business in the actor's organization and makes the actor its owner.
func (s *TeamService) RegisterBusiness(ctx context.Context, actor Actor, name string) (*domain.Business, *domain.Assignment, error) {
	if actor.UserID == 0 || actor.OrgID == 0 {
		return nil, nil, fmt.Errorf("%w: user and organization are required", ErrInvalidArgument)
	}
	b := &domain.Business{OrgID: actor.OrgID, Name: strings.TrimSpace(name)}
	owner, err := s.repo.CreateBusiness(ctx, b, actor.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("create business: %w", err)
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, actor.OrgID, actor.UserID, audit.ActionBusinessRegistered, audit.ResourceBusiness, audit.Metadata(map[string]any{
			"business_id": b.ID,
			"name":        b.Name,
		}))
	}
	return b, owner, nil
}

// Permissions resolves the actor's role in businessID and evaluates every business action.
func (s *TeamService) Permissions(ctx context.Context, actor Actor, businessID int64) (rbac.Decision, error) {
	br, err := s.resolve(ctx, actor, businessID)
	if err != nil {
		return rbac.Decision{}, err
	}
	d := rbac.Decide(actor.OrgRole, br)
	for _, a := range rbac.Actions {
		allowed, err := s.evaluator.EvaluateBusinessAction(ctx, s.input(actor, businessID, br, a))
		if err != nil {
			return rbac.Decision{}, fmt.Errorf("evaluate %s: %w", a, err)
		}
		setAllowed(&d, a, allowed)
	}
	return d, nil
}

// Assign adds userID to businessID with role. Requires manage-team; granting manager or owner
// additionally requires change-team-roles.
func (s *TeamService) Assign(ctx context.Context, actor Actor, businessID, userID int64, role roledomain.BusinessRole) (*domain.Assignment, error) {
	if businessID == 0 || userID == 0 {
		return nil, fmt.Errorf("%w: business_id and user_id are required", ErrInvalidArgument)
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	br, err := s.resolve(ctx, actor, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, actor, businessID, br, rbac.ActionManageTeam); err != nil {
		return nil, err
	}
	if role.Rank() > roledomain.BusinessRoleStaff.Rank() {
		if err := s.require(ctx, actor, businessID, br, rbac.ActionChangeTeamRoles); err != nil {
			return nil, err
		}
	}

	a := &domain.Assignment{BusinessID: businessID, AdminUserID: userID, Role: role}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log(ctx, actor, audit.ActionMemberAssigned, a)
	return a, nil
}

// SelfAssign adds the actor to businessID. Allowed only while the actor holds no role there;
// the role is capped at staff unless the actor is an organization owner.
func (s *TeamService) SelfAssign(ctx context.Context, actor Actor, businessID int64, role roledomain.BusinessRole) (*domain.Assignment, error) {
	if businessID == 0 || actor.UserID == 0 {
		return nil, fmt.Errorf("%w: business_id and user are required", ErrInvalidArgument)
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	br, err := s.resolve(ctx, actor, businessID)
	if err != nil {
		return nil, err
	}
	if br != roledomain.BusinessRoleNone {
		return nil, repository.ErrDuplicateAssignment
	}
	if !actor.OrgRole.IsOwner() && role.Rank() > roledomain.BusinessRoleStaff.Rank() {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, "Owner role required")
	}

	a := &domain.Assignment{BusinessID: businessID, AdminUserID: actor.UserID, Role: role}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log(ctx, actor, audit.ActionMemberSelfAssigned, a)
	return a, nil
}

// ChangeRole sets the business role of assignmentID. Requires change-team-roles in the
// assignment's business.
func (s *TeamService) ChangeRole(ctx context.Context, actor Actor, assignmentID int64, role roledomain.BusinessRole) (*domain.Assignment, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	target, err := s.get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	br, err := s.resolveTarget(ctx, actor, target)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, actor, target.BusinessID, br, rbac.ActionChangeTeamRoles); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateRole(ctx, assignmentID, role)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	s.log(ctx, actor, audit.ActionMemberRoleChanged, updated)
	return updated, nil
}

// Remove deletes assignmentID. Requires manage-team; removing a member who outranks the actor
// additionally requires change-team-roles.
func (s *TeamService) Remove(ctx context.Context, actor Actor, assignmentID int64) error {
	target, err := s.get(ctx, assignmentID)
	if err != nil {
		return err
	}
	br, err := s.resolveTarget(ctx, actor, target)
	if err != nil {
		return err
	}
	if err := s.require(ctx, actor, target.BusinessID, br, rbac.ActionManageTeam); err != nil {
		return err
	}
	if target.Role.Rank() > br.Rank() {
		if err := s.require(ctx, actor, target.BusinessID, br, rbac.ActionChangeTeamRoles); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, assignmentID); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	s.log(ctx, actor, audit.ActionMemberRemoved, target)
	return nil
}

// Members lists the assignments of businessID. The actor must hold a role there or be an
// organization owner of the business's organization.
func (s *TeamService) Members(ctx context.Context, actor Actor, businessID int64) ([]*domain.Assignment, error) {
	list, err := s.list(ctx, actor, businessID)
	if err != nil {
		return nil, err
	}
	if !actor.OrgRole.IsOwner() && rbac.ResolveBusinessRole(list, actor.UserID) == roledomain.BusinessRoleNone {
		return nil, fmt.Errorf("%w: not a member of this business", ErrForbidden)
	}
	return list, nil
}

// list returns the assignments of businessID scoped to the actor's organization. A business of
// another organization yields domain.ErrBusinessNotFound.
func (s *TeamService) list(ctx context.Context, actor Actor, businessID int64) ([]*domain.Assignment, error) {
	if actor.OrgID == 0 {
		return nil, fmt.Errorf("%w: organization is required", ErrInvalidArgument)
	}
	list, err := s.repo.ListByBusiness(ctx, actor.OrgID, businessID)
	if err != nil {
		if errors.Is(err, domain.ErrBusinessNotFound) {
			return nil, domain.ErrBusinessNotFound
		}
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return list, nil
}

func (s *TeamService) resolve(ctx context.Context, actor Actor, businessID int64) (roledomain.BusinessRole, error) {
	list, err := s.list(ctx, actor, businessID)
	if err != nil {
		return roledomain.BusinessRoleNone, err
	}
	return rbac.ResolveBusinessRole(list, actor.UserID), nil
}

// resolveTarget resolves the actor's role in the business of target. An assignment in another
// organization's business is reported as ErrNotFound.
func (s *TeamService) resolveTarget(ctx context.Context, actor Actor, target *domain.Assignment) (roledomain.BusinessRole, error) {
	br, err := s.resolve(ctx, actor, target.BusinessID)
	if errors.Is(err, domain.ErrBusinessNotFound) {
		return roledomain.BusinessRoleNone, ErrNotFound
	}
	return br, err
}

func (s *TeamService) get(ctx context.Context, assignmentID int64) (*domain.Assignment, error) {
	if assignmentID == 0 {
		return nil, fmt.Errorf("%w: assignment_id is required", ErrInvalidArgument)
	}
	a, err := s.repo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *TeamService) require(ctx context.Context, actor Actor, businessID int64, br roledomain.BusinessRole, action rbac.Action) error {
	allowed, err := s.evaluator.EvaluateBusinessAction(ctx, s.input(actor, businessID, br, action))
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", action, err)
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, rbac.DenialReason(action))
	}
	return nil
}

func (s *TeamService) input(actor Actor, businessID int64, br roledomain.BusinessRole, action rbac.Action) engine.Input {
	return engine.Input{
		OrgID:        actor.OrgID,
		UserID:       actor.UserID,
		OrgRole:      actor.OrgRole,
		BusinessID:   businessID,
		BusinessRole: br,
		Action:       action,
	}
}

func (s *TeamService) log(ctx context.Context, actor Actor, action string, a *domain.Assignment) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, actor.OrgID, actor.UserID, action, audit.ResourceBusinessUser, audit.Metadata(map[string]any{
		"assignment_id": a.ID,
		"business_id":   a.BusinessID,
		"user_id":       a.AdminUserID,
		"role":          a.Role,
	}))
}

func setAllowed(d *rbac.Decision, action rbac.Action, allowed bool) {
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
