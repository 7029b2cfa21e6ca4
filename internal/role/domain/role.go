// Package domain defines the two role vocabularies of the access model.
//
// OrgRole and BusinessRole share their string values but are distinct types so that an
// organization role can never be compared against a business role by accident.
package domain

import "strings"

// OrgRole is a user's role across the whole organization (tenant).
type OrgRole string

const (
	OrgRoleOwner   OrgRole = "owner"
	OrgRoleManager OrgRole = "manager"
	OrgRoleStaff   OrgRole = "staff"
)

// OrgRoles lists the closed set of organization roles, most privileged first.
var OrgRoles = []OrgRole{OrgRoleOwner, OrgRoleManager, OrgRoleStaff}

// ParseOrgRole normalizes s (trim, lowercase) into an OrgRole. Returns false for anything
// outside the closed set, including the empty string.
func ParseOrgRole(s string) (OrgRole, bool) {
	r := OrgRole(strings.ToLower(strings.TrimSpace(s)))
	if r.Valid() {
		return r, true
	}
	return "", false
}

// Valid reports whether r is one of owner, manager or staff.
func (r OrgRole) Valid() bool {
	switch r {
	case OrgRoleOwner, OrgRoleManager, OrgRoleStaff:
		return true
	}
	return false
}

// IsOwner reports whether r grants the organization-owner override.
func (r OrgRole) IsOwner() bool { return r == OrgRoleOwner }

// BusinessRole is a user's role within one business. The zero value is BusinessRoleNone.
type BusinessRole string

const (
	BusinessRoleNone    BusinessRole = ""
	BusinessRoleOwner   BusinessRole = "owner"
	BusinessRoleManager BusinessRole = "manager"
	BusinessRoleStaff   BusinessRole = "staff"
)

// BusinessRoles lists the assignable business roles, most privileged first.
var BusinessRoles = []BusinessRole{BusinessRoleOwner, BusinessRoleManager, BusinessRoleStaff}

// ParseBusinessRole normalizes s into a BusinessRole. Unknown or empty values yield
// BusinessRoleNone; callers that need to reject them check Valid.
func ParseBusinessRole(s string) BusinessRole {
	r := BusinessRole(strings.ToLower(strings.TrimSpace(s)))
	if r.Valid() {
		return r
	}
	return BusinessRoleNone
}

// Valid reports whether r is an assignable role (owner, manager or staff).
func (r BusinessRole) Valid() bool {
	switch r {
	case BusinessRoleOwner, BusinessRoleManager, BusinessRoleStaff:
		return true
	}
	return false
}

// Rank orders business roles: owner 3, manager 2, staff 1, none (or unknown) 0.
func (r BusinessRole) Rank() int {
	switch r {
	case BusinessRoleOwner:
		return 3
	case BusinessRoleManager:
		return 2
	case BusinessRoleStaff:
		return 1
	}
	return 0
}

// Label returns the capitalized role name used in user-facing messages ("Manager").
// BusinessRoleNone returns "None".
func (r BusinessRole) Label() string {
	switch r {
	case BusinessRoleOwner:
		return "Owner"
	case BusinessRoleManager:
		return "Manager"
	case BusinessRoleStaff:
		return "Staff"
	}
	return "None"
}
