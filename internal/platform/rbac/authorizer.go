package rbac

import "zeno-access/internal/role/domain"

// Action is a mutation on a business gated by the caller's business role.
type Action string

const (
	ActionEditBusiness    Action = "edit-business"
	ActionDeleteBusiness  Action = "delete-business"
	ActionManageTeam      Action = "manage-team"
	ActionChangeTeamRoles Action = "change-team-roles"
)

// Actions lists every business action.
var Actions = []Action{ActionEditBusiness, ActionDeleteBusiness, ActionManageTeam, ActionChangeTeamRoles}

var requiredRoles = map[Action]domain.BusinessRole{
	ActionEditBusiness:    domain.BusinessRoleManager,
	ActionDeleteBusiness:  domain.BusinessRoleOwner,
	ActionManageTeam:      domain.BusinessRoleManager,
	ActionChangeTeamRoles: domain.BusinessRoleOwner,
}

// ParseAction returns the Action named s, or false if s is not a known action.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := requiredRoles[a]
	return a, ok
}

// RequiredRole returns the minimum business role for action. Unknown actions return false.
func RequiredRole(action Action) (domain.BusinessRole, bool) {
	r, ok := requiredRoles[action]
	return r, ok
}

// CanPerform reports whether businessRole ranks at or above requiredRole
// (owner 3 > manager 2 > staff 1 > none 0).
func CanPerform(businessRole, requiredRole domain.BusinessRole) bool {
	return businessRole.Rank() >= requiredRole.Rank()
}

// CanEditBusiness requires manager or owner in the business.
func CanEditBusiness(r domain.BusinessRole) bool { return CanPerform(r, domain.BusinessRoleManager) }

// CanDeleteBusiness requires owner in the business.
func CanDeleteBusiness(r domain.BusinessRole) bool { return CanPerform(r, domain.BusinessRoleOwner) }

// CanManageTeam (assign or remove members) requires manager or owner in the business.
func CanManageTeam(r domain.BusinessRole) bool { return CanPerform(r, domain.BusinessRoleManager) }

// CanChangeTeamRoles (promote or demote members) requires owner in the business.
func CanChangeTeamRoles(r domain.BusinessRole) bool { return CanPerform(r, domain.BusinessRoleOwner) }

// Authorize decides action for a caller holding orgRole in the organization and businessRole in
// the target business. An organization owner is always permitted; otherwise the business role
// must meet the action's threshold. Unknown actions are denied for everyone.
func Authorize(orgRole domain.OrgRole, businessRole domain.BusinessRole, action Action) bool {
	required, ok := RequiredRole(action)
	if !ok {
		return false
	}
	if orgRole.IsOwner() {
		return true
	}
	return CanPerform(businessRole, required)
}

// DenialReason is the tooltip shown next to a disabled control, e.g. "Manager role required".
// Returns "" for unknown actions.
func DenialReason(action Action) string {
	required, ok := RequiredRole(action)
	if !ok {
		return ""
	}
	return required.Label() + " role required"
}

// Decision is the per-business permission set handed to the UI for one caller.
type Decision struct {
	BusinessRole       domain.BusinessRole `json:"business_role"`
	OrgOwnerOverride   bool                `json:"org_owner_override"`
	CanEdit            bool                `json:"can_edit"`
	CanDelete          bool                `json:"can_delete"`
	CanManageTeam      bool                `json:"can_manage_team"`
	CanChangeTeamRoles bool                `json:"can_change_team_roles"`
	// CanSelfAssign is true when the caller holds no role in the business; the team workflow
	// lets them join it.
	CanSelfAssign bool `json:"can_self_assign"`
}

// Decide evaluates every business action for the caller.
func Decide(orgRole domain.OrgRole, businessRole domain.BusinessRole) Decision {
	if !businessRole.Valid() {
		businessRole = domain.BusinessRoleNone
	}
	return Decision{
		BusinessRole:       businessRole,
		OrgOwnerOverride:   orgRole.IsOwner(),
		CanEdit:            Authorize(orgRole, businessRole, ActionEditBusiness),
		CanDelete:          Authorize(orgRole, businessRole, ActionDeleteBusiness),
		CanManageTeam:      Authorize(orgRole, businessRole, ActionManageTeam),
		CanChangeTeamRoles: Authorize(orgRole, businessRole, ActionChangeTeamRoles),
		CanSelfAssign:      businessRole == domain.BusinessRoleNone,
	}
}

// Allows returns the decision for a single action.
func (d Decision) Allows(action Action) bool {
	switch action {
	case ActionEditBusiness:
		return d.CanEdit
	case ActionDeleteBusiness:
		return d.CanDelete
	case ActionManageTeam:
		return d.CanManageTeam
	case ActionChangeTeamRoles:
		return d.CanChangeTeamRoles
	}
	return false
}
