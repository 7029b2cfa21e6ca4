package domain

import (
	"errors"

	roledomain "zeno-access/internal/role/domain"
)

// User is the signed-in user as supplied by the session provider.
type User struct {
	ID    int64
	Email string
	// Role is the organization-level role. Any value outside owner/manager/staff (including
	// empty) is treated as staff by every permission lookup.
	Role               roledomain.OrgRole
	OrgID              int64
	AccessibleBranches []int64
}

// Validate validates the user for a login. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.ID == 0 {
		return errors.New("id is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

// Organization is the tenant loaded at login.
type Organization struct {
	ID       int64
	Name     string
	Branches []Branch
}

// Branch is a location owned by an organization.
type Branch struct {
	ID   int64
	Name string
}

// Snapshot is an immutable view of the session handed to subscribers.
// A zero Snapshot (User == nil) means signed out.
type Snapshot struct {
	User          *User
	Organization  *Organization
	CurrentBranch *Branch
	// Version increases by one on every mutation.
	Version uint64
}

// SignedIn reports whether the snapshot has a user.
func (s Snapshot) SignedIn() bool { return s.User != nil }
