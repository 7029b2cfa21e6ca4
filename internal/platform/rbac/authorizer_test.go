package rbac

import (
	"testing"

	bizdomain "zeno-access/internal/businessuser/domain"
	"zeno-access/internal/role/domain"
)

func TestCanPerform_TruthTable(t *testing.T) {
	o, m, s, n := domain.BusinessRoleOwner, domain.BusinessRoleManager, domain.BusinessRoleStaff, domain.BusinessRoleNone
	testCases := []struct {
		have, need domain.BusinessRole
		want       bool
	}{
		{o, o, true}, {o, m, true}, {o, s, true},
		{m, o, false}, {m, m, true}, {m, s, true},
		{s, o, false}, {s, m, false}, {s, s, true},
		{n, o, false}, {n, m, false}, {n, s, false},
	}
	for _, tc := range testCases {
		if got := CanPerform(tc.have, tc.need); got != tc.want {
			t.Errorf("CanPerform(%q, %q) = %v, want %v", tc.have, tc.need, got, tc.want)
		}
	}
}

func TestCanPerform_UnrecognizedRoleRanksAsNone(t *testing.T) {
	for _, r := range []domain.BusinessRole{"Owner", "admin", "superuser"} {
		if CanPerform(r, domain.BusinessRoleStaff) {
			t.Errorf("CanPerform(%q, staff) = true, want false", r)
		}
	}
}

func TestDerivedActions(t *testing.T) {
	testCases := []struct {
		role                              domain.BusinessRole
		edit, del, manageTeam, changeRole bool
	}{
		{domain.BusinessRoleOwner, true, true, true, true},
		{domain.BusinessRoleManager, true, false, true, false},
		{domain.BusinessRoleStaff, false, false, false, false},
		{domain.BusinessRoleNone, false, false, false, false},
	}
	for _, tc := range testCases {
		if got := CanEditBusiness(tc.role); got != tc.edit {
			t.Errorf("CanEditBusiness(%q) = %v, want %v", tc.role, got, tc.edit)
		}
		if got := CanDeleteBusiness(tc.role); got != tc.del {
			t.Errorf("CanDeleteBusiness(%q) = %v, want %v", tc.role, got, tc.del)
		}
		if got := CanManageTeam(tc.role); got != tc.manageTeam {
			t.Errorf("CanManageTeam(%q) = %v, want %v", tc.role, got, tc.manageTeam)
		}
		if got := CanChangeTeamRoles(tc.role); got != tc.changeRole {
			t.Errorf("CanChangeTeamRoles(%q) = %v, want %v", tc.role, got, tc.changeRole)
		}
	}
}

func TestAuthorize_OrgOwnerOverride(t *testing.T) {
	roles := []domain.BusinessRole{
		domain.BusinessRoleOwner, domain.BusinessRoleManager, domain.BusinessRoleStaff, domain.BusinessRoleNone, "garbage",
	}
	for _, br := range roles {
		for _, a := range Actions {
			if !Authorize(domain.OrgRoleOwner, br, a) {
				t.Errorf("Authorize(owner, %q, %q) = false, want true", br, a)
			}
		}
	}
}

func TestAuthorize_NoRoleNonOwnerDeniedEverything(t *testing.T) {
	for _, org := range []domain.OrgRole{domain.OrgRoleManager, domain.OrgRoleStaff, "", "admin"} {
		for _, a := range Actions {
			if Authorize(org, domain.BusinessRoleNone, a) {
				t.Errorf("Authorize(%q, none, %q) = true, want false", org, a)
			}
		}
	}
}

func TestAuthorize_UnknownActionDenied(t *testing.T) {
	if Authorize(domain.OrgRoleOwner, domain.BusinessRoleOwner, Action("launch")) {
		t.Error("unknown action should be denied even for owners")
	}
}

func TestAuthorize_OrgRoleDoesNotLeakIntoBusinessRole(t *testing.T) {
	// An org manager who is only staff in the business must not edit it.
	if Authorize(domain.OrgRoleManager, domain.BusinessRoleStaff, ActionEditBusiness) {
		t.Error("org manager with business staff role should not edit")
	}
}

func TestScenario_ManagerOwningOneBusiness(t *testing.T) {
	const userID = int64(42)
	businessA := []*bizdomain.Assignment{
		{ID: 1, BusinessID: 100, AdminUserID: userID, Role: domain.BusinessRoleOwner},
		{ID: 2, BusinessID: 100, AdminUserID: 43, Role: domain.BusinessRoleStaff},
	}
	businessB := []*bizdomain.Assignment{
		{ID: 3, BusinessID: 200, AdminUserID: 43, Role: domain.BusinessRoleOwner},
	}

	roleA := ResolveBusinessRole(businessA, userID)
	roleB := ResolveBusinessRole(businessB, userID)
	if !Authorize(domain.OrgRoleManager, roleA, ActionDeleteBusiness) {
		t.Error("business owner should delete business A")
	}
	if Authorize(domain.OrgRoleManager, roleB, ActionDeleteBusiness) {
		t.Error("unassigned org manager should not delete business B")
	}
	if !Decide(domain.OrgRoleManager, roleB).CanSelfAssign {
		t.Error("unassigned user should be offered self-assignment")
	}
}

func TestDenialReason(t *testing.T) {
	testCases := []struct {
		action Action
		want   string
	}{
		{ActionEditBusiness, "Manager role required"},
		{ActionDeleteBusiness, "Owner role required"},
		{ActionManageTeam, "Manager role required"},
		{ActionChangeTeamRoles, "Owner role required"},
		{Action("nope"), ""},
	}
	for _, tc := range testCases {
		if got := DenialReason(tc.action); got != tc.want {
			t.Errorf("DenialReason(%q) = %q, want %q", tc.action, got, tc.want)
		}
	}
}

func TestDecide(t *testing.T) {
	d := Decide(domain.OrgRoleStaff, domain.BusinessRoleManager)
	if !d.CanEdit || d.CanDelete || !d.CanManageTeam || d.CanChangeTeamRoles {
		t.Errorf("Decide(staff, manager) = %+v", d)
	}
	if d.OrgOwnerOverride || d.CanSelfAssign {
		t.Errorf("Decide(staff, manager) override/self-assign = %v/%v", d.OrgOwnerOverride, d.CanSelfAssign)
	}
	for _, a := range Actions {
		if d.Allows(a) != Authorize(domain.OrgRoleStaff, domain.BusinessRoleManager, a) {
			t.Errorf("Allows(%q) disagrees with Authorize", a)
		}
	}

	owner := Decide(domain.OrgRoleOwner, "bogus")
	if owner.BusinessRole != domain.BusinessRoleNone {
		t.Errorf("business role = %q, want none", owner.BusinessRole)
	}
	if !owner.OrgOwnerOverride || !owner.CanDelete || !owner.CanChangeTeamRoles {
		t.Errorf("Decide(owner, none) = %+v", owner)
	}
}

func TestParseAction(t *testing.T) {
	if a, ok := ParseAction("manage-team"); !ok || a != ActionManageTeam {
		t.Errorf("ParseAction(manage-team) = (%q, %v)", a, ok)
	}
	if _, ok := ParseAction("fly"); ok {
		t.Error("ParseAction(fly) should fail")
	}
}
