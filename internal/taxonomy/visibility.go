package taxonomy

import "zeno-access/internal/role/domain"

// View names a page-level visibility flag (which panels a role may see inside a page).
type View string

const (
	ViewFinancials      View = "viewFinancials"
	ViewAnalytics       View = "viewAnalytics"
	ViewRevenue         View = "viewRevenue"
	ViewAllTransactions View = "viewAllTransactions"
	ViewStaffData       View = "viewStaffData"
	ViewSettings        View = "viewSettings"
)

var visibilityTable = map[domain.OrgRole]map[View]bool{
	domain.OrgRoleOwner: {
		ViewFinancials:      true,
		ViewAnalytics:       true,
		ViewRevenue:         true,
		ViewAllTransactions: true,
		ViewStaffData:       true,
		ViewSettings:        true,
	},
	domain.OrgRoleManager: {
		ViewFinancials:      false,
		ViewAnalytics:       true,
		ViewRevenue:         false,
		ViewAllTransactions: false,
		ViewStaffData:       false,
		ViewSettings:        false,
	},
	domain.OrgRoleStaff: {
		ViewFinancials:      false,
		ViewAnalytics:       false,
		ViewRevenue:         false,
		ViewAllTransactions: false,
		ViewStaffData:       false,
		ViewSettings:        false,
	},
}

// Visibility returns a copy of role's page visibility flags; unknown roles get the staff flags.
func Visibility(role domain.OrgRole) map[View]bool {
	src := visibilityTable[effective(role)]
	out := make(map[View]bool, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// CanView reports whether role may see the view. False for unknown roles and unknown views.
func CanView(role domain.OrgRole, view View) bool {
	if !role.Valid() {
		return false
	}
	return visibilityTable[role][view]
}

// BranchAccessType describes which branches a role may switch between.
type BranchAccessType string

const (
	// BranchAccessAll grants every branch of the organization.
	BranchAccessAll BranchAccessType = "all"
	// BranchAccessAssigned limits the user to the branches on their whitelist.
	BranchAccessAssigned BranchAccessType = "assigned"
	// BranchAccessNone means no direct branch assignment.
	BranchAccessNone BranchAccessType = "none"
)

// BranchAccess returns the branch access type for role. Only owners see all branches.
func BranchAccess(role domain.OrgRole) BranchAccessType {
	if role == domain.OrgRoleOwner {
		return BranchAccessAll
	}
	return BranchAccessAssigned
}
