// Package rbac resolves business-level roles and decides which business actions a caller may
// perform. Everything except the Require* guards is pure and safe for concurrent use.
package rbac

import (
	bizdomain "zeno-access/internal/businessuser/domain"
	"zeno-access/internal/role/domain"
)

// ResolveBusinessRole returns the role of the first assignment whose AdminUserID is userID.
// assignments are expected to belong to a single business. No match, a nil entry or a record
// without a recognizable role all yield BusinessRoleNone.
func ResolveBusinessRole(assignments []*bizdomain.Assignment, userID int64) domain.BusinessRole {
	for _, a := range assignments {
		if a == nil || a.AdminUserID != userID {
			continue
		}
		if !a.Role.Valid() {
			return domain.BusinessRoleNone
		}
		return a.Role
	}
	return domain.BusinessRoleNone
}

// VisibleBusinesses returns the subset of businessIDs the user may list, in input order.
// Callers pass only businessIDs of the user's own organization (see InOrganization).
// Organization owners see every such business; everyone else sees only businesses they hold an
// assignment in. assignments may span several businesses.
func VisibleBusinesses(orgRole domain.OrgRole, userID int64, businessIDs []int64, assignments []*bizdomain.Assignment) []int64 {
	out := make([]int64, 0, len(businessIDs))
	if orgRole.IsOwner() {
		return append(out, businessIDs...)
	}
	assigned := make(map[int64]struct{})
	for _, a := range assignments {
		if a != nil && a.AdminUserID == userID {
			assigned[a.BusinessID] = struct{}{}
		}
	}
	for _, id := range businessIDs {
		if _, ok := assigned[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// InOrganization returns the businessIDs that belong to orgID according to businesses, in input
// order. An empty businessIDs selects every business of orgID.
func InOrganization(orgID int64, businessIDs []int64, businesses []*bizdomain.Business) []int64 {
	owned := make(map[int64]struct{}, len(businesses))
	var all []int64
	for _, b := range businesses {
		if b == nil || orgID == 0 || b.OrgID != orgID {
			continue
		}
		if _, dup := owned[b.ID]; !dup {
			owned[b.ID] = struct{}{}
			all = append(all, b.ID)
		}
	}
	if len(businessIDs) == 0 {
		return append([]int64{}, all...)
	}
	out := make([]int64, 0, len(businessIDs))
	for _, id := range businessIDs {
		if _, ok := owned[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
