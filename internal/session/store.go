// Package session holds the signed-in user, organization and current branch in an observable
// store. Mutations go through Login, Logout, SwitchBranch and SetAccessibleBranches; every
// mutation notifies subscribers synchronously with the new snapshot, in version order.
package session

import (
	"errors"
	"log"
	"sync"

	"zeno-access/internal/menu"
	"zeno-access/internal/role/domain"
	sessiondomain "zeno-access/internal/session/domain"
	"zeno-access/internal/taxonomy"
)

var (
	// ErrNotLoggedIn is returned by mutations that need a signed-in user.
	ErrNotLoggedIn = errors.New("session: not logged in")
	// ErrBranchNotAccessible is returned when switching to a branch outside the user's access.
	ErrBranchNotAccessible = errors.New("session: branch not accessible")
	// ErrBranchNotFound is returned when the branch does not belong to the organization.
	ErrBranchNotFound = errors.New("session: branch not found")
	// ErrOrgMismatch is returned by Login when the user belongs to another organization.
	ErrOrgMismatch = errors.New("session: user does not belong to organization")
)

// Listener receives the session snapshot after each mutation. Listeners may read the store but
// must not mutate it.
type Listener func(sessiondomain.Snapshot)

// Store is the single source of session state. The zero value is not usable; use NewStore.
type Store struct {
	// notifyMu serializes delivery so listeners observe snapshots in version order. It is taken
	// before mu is released.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	user      *sessiondomain.User
	org       *sessiondomain.Organization
	current   *sessiondomain.Branch
	version   uint64
	nextID    int
	listeners map[int]Listener
}

// NewStore returns a signed-out store.
func NewStore() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// Login replaces the session with user and org. The current branch becomes the first branch of
// org the user may access, or none.
func (s *Store) Login(user sessiondomain.User, org sessiondomain.Organization) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if user.OrgID != 0 && user.OrgID != org.ID {
		return ErrOrgMismatch
	}
	u := copyUser(&user)
	o := copyOrg(&org)

	s.mu.Lock()
	s.user = u
	s.org = o
	s.current = firstAccessible(u, o)
	s.publishLocked()
	return nil
}

// Logout clears the session. Logging out a signed-out store still notifies subscribers.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.org = nil
	s.current = nil
	s.publishLocked()
}

// SwitchBranch makes branchID the current branch.
func (s *Store) SwitchBranch(branchID int64) error {
	s.mu.Lock()
	if s.user == nil || s.org == nil {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	b := findBranch(s.org, branchID)
	if b == nil {
		s.mu.Unlock()
		return ErrBranchNotFound
	}
	if !canAccessBranch(s.user, s.org, branchID) {
		userID := s.user.ID
		s.mu.Unlock()
		log.Printf("session: user %d cannot access branch %d", userID, branchID)
		return ErrBranchNotAccessible
	}
	s.current = b
	s.publishLocked()
	return nil
}

// SetAccessibleBranches replaces the user's branch whitelist, the only user attribute that may
// change during a session. If the current branch is no longer accessible the first accessible
// branch (or none) becomes current.
func (s *Store) SetAccessibleBranches(branchIDs []int64) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	s.user.AccessibleBranches = append([]int64(nil), branchIDs...)
	if s.current == nil || !canAccessBranch(s.user, s.org, s.current.ID) {
		s.current = firstAccessible(s.user, s.org)
	}
	s.publishLocked()
	return nil
}

// Subscribe registers l and returns a function that removes it. Calling the returned function
// more than once is harmless.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() sessiondomain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Role returns the signed-in user's organization role, or "" when signed out. The empty role
// behaves as staff in every lookup.
func (s *Store) Role() domain.OrgRole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// CanAccessBranch reports whether the signed-in user may switch to branchID.
func (s *Store) CanAccessBranch(branchID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.org == nil {
		return false
	}
	return canAccessBranch(s.user, s.org, branchID)
}

// AccessibleBranches returns the organization's branches the user may access, in org order.
func (s *Store) AccessibleBranches() []sessiondomain.Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.org == nil {
		return nil
	}
	var out []sessiondomain.Branch
	for _, b := range s.org.Branches {
		if canAccessBranch(s.user, s.org, b.ID) {
			out = append(out, b)
		}
	}
	return out
}

// HasPermission reports whether the signed-in user's role has feature. False when signed out.
func (s *Store) HasPermission(feature taxonomy.Feature) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	return taxonomy.HasFeature(s.user.Role, feature)
}

// CanAccessMenuItem reports whether the signed-in user's role lists key. False when signed out.
func (s *Store) CanAccessMenuItem(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	return taxonomy.AllowsMenu(s.user.Role, key)
}

// Menu returns the default sidebar filtered for the signed-in user; nil when signed out.
func (s *Store) Menu() []menu.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	return menu.Filter(menu.DefaultTree(), s.user.Role)
}

// publishLocked bumps the version, releases s.mu and delivers the new snapshot. Caller holds
// s.mu; it is unlocked on return.
func (s *Store) publishLocked() {
	s.version++
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	snap := s.snapshotLocked()

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, l := range ls {
		l(snap)
	}
}

func (s *Store) snapshotLocked() sessiondomain.Snapshot {
	snap := sessiondomain.Snapshot{Version: s.version}
	if s.user != nil {
		snap.User = copyUser(s.user)
	}
	if s.org != nil {
		snap.Organization = copyOrg(s.org)
	}
	if s.current != nil {
		b := *s.current
		snap.CurrentBranch = &b
	}
	return snap
}

// canAccessBranch: the branch must belong to org; owners reach every branch, other roles only
// the branches on their whitelist.
func canAccessBranch(u *sessiondomain.User, org *sessiondomain.Organization, branchID int64) bool {
	if findBranch(org, branchID) == nil {
		return false
	}
	if taxonomy.BranchAccess(u.Role) == taxonomy.BranchAccessAll {
		return true
	}
	for _, id := range u.AccessibleBranches {
		if id == branchID {
			return true
		}
	}
	return false
}

func firstAccessible(u *sessiondomain.User, org *sessiondomain.Organization) *sessiondomain.Branch {
	if u == nil || org == nil {
		return nil
	}
	for i := range org.Branches {
		if canAccessBranch(u, org, org.Branches[i].ID) {
			b := org.Branches[i]
			return &b
		}
	}
	return nil
}

func findBranch(org *sessiondomain.Organization, branchID int64) *sessiondomain.Branch {
	if org == nil {
		return nil
	}
	for i := range org.Branches {
		if org.Branches[i].ID == branchID {
			b := org.Branches[i]
			return &b
		}
	}
	return nil
}

func copyUser(u *sessiondomain.User) *sessiondomain.User {
	c := *u
	c.AccessibleBranches = append([]int64(nil), u.AccessibleBranches...)
	return &c
}

func copyOrg(o *sessiondomain.Organization) *sessiondomain.Organization {
	c := *o
	c.Branches = append([]sessiondomain.Branch(nil), o.Branches...)
	return &c
}
