package domain

import "testing"

func TestParseOrgRole(t *testing.T) {
	testCases := []struct {
		in     string
		want   OrgRole
		wantOK bool
	}{
		{"owner", OrgRoleOwner, true},
		{"Manager", OrgRoleManager, true},
		{"  STAFF ", OrgRoleStaff, true},
		{"", "", false},
		{"admin", "", false},
		{"Owner2", "", false},
	}
	for _, tc := range testCases {
		got, ok := ParseOrgRole(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParseOrgRole(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestParseBusinessRole_UnknownIsNone(t *testing.T) {
	for _, s := range []string{"", "admin", "superuser", "0"} {
		if got := ParseBusinessRole(s); got != BusinessRoleNone {
			t.Errorf("ParseBusinessRole(%q) = %q, want none", s, got)
		}
	}
	if got := ParseBusinessRole("Owner"); got != BusinessRoleOwner {
		t.Errorf("ParseBusinessRole(Owner) = %q, want owner", got)
	}
}

func TestBusinessRole_Rank(t *testing.T) {
	testCases := []struct {
		role BusinessRole
		want int
	}{
		{BusinessRoleOwner, 3},
		{BusinessRoleManager, 2},
		{BusinessRoleStaff, 1},
		{BusinessRoleNone, 0},
		{BusinessRole("Owner"), 0},
		{BusinessRole("admin"), 0},
	}
	for _, tc := range testCases {
		if got := tc.role.Rank(); got != tc.want {
			t.Errorf("Rank(%q) = %d, want %d", tc.role, got, tc.want)
		}
	}
}

func TestBusinessRole_Label(t *testing.T) {
	if got := BusinessRoleManager.Label(); got != "Manager" {
		t.Errorf("Label = %q, want Manager", got)
	}
	if got := BusinessRoleNone.Label(); got != "None" {
		t.Errorf("Label = %q, want None", got)
	}
}
