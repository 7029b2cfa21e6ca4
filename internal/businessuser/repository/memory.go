package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"zeno-access/internal/businessuser/domain"
	roledomain "zeno-access/internal/role/domain"
)

// MemoryRepository keeps businesses and assignments in process memory. It enforces the same
// (business, user) uniqueness and business reference as the Postgres schema and is used when no
// DATABASE_URL is set.
type MemoryRepository struct {
	mu         sync.RWMutex
	nextID     int64
	nextBizID  int64
	rows       map[int64]domain.Assignment
	businesses map[int64]domain.Business
	now        func() time.Time
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows:       make(map[int64]domain.Assignment),
		businesses: make(map[int64]domain.Business),
		now:        time.Now,
	}
}

func (r *MemoryRepository) CreateBusiness(ctx context.Context, b *domain.Business, ownerUserID int64) (*domain.Assignment, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if ownerUserID == 0 {
		return nil, errors.New("admin_user_id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextBizID++
	b.ID = r.nextBizID
	b.CreatedAt = r.now().UTC()
	r.businesses[b.ID] = *b

	owner := &domain.Assignment{BusinessID: b.ID, AdminUserID: ownerUserID, Role: roledomain.BusinessRoleOwner}
	r.insertLocked(owner)
	return owner, nil
}

func (r *MemoryRepository) GetBusiness(ctx context.Context, id int64) (*domain.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.businesses[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *MemoryRepository) ListBusinesses(ctx context.Context, orgID int64) ([]*domain.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Business
	for _, b := range r.businesses {
		if b.OrgID == orgID {
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*domain.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *MemoryRepository) ListByBusiness(ctx context.Context, orgID, businessID int64) ([]*domain.Assignment, error) {
	r.mu.RLock()
	b, ok := r.businesses[businessID]
	r.mu.RUnlock()
	if !ok || orgID == 0 || b.OrgID != orgID {
		return nil, domain.ErrBusinessNotFound
	}
	return r.filter(func(a domain.Assignment) bool { return a.BusinessID == businessID }), nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, orgID, userID int64) ([]*domain.Assignment, error) {
	r.mu.RLock()
	inOrg := make(map[int64]bool)
	for id, b := range r.businesses {
		inOrg[id] = b.OrgID == orgID
	}
	r.mu.RUnlock()
	return r.filter(func(a domain.Assignment) bool { return a.AdminUserID == userID && inOrg[a.BusinessID] }), nil
}

func (r *MemoryRepository) Create(ctx context.Context, a *domain.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.businesses[a.BusinessID]; !ok {
		return domain.ErrBusinessNotFound
	}
	for _, existing := range r.rows {
		if existing.BusinessID == a.BusinessID && existing.AdminUserID == a.AdminUserID {
			return ErrDuplicateAssignment
		}
	}
	r.insertLocked(a)
	return nil
}

func (r *MemoryRepository) UpdateRole(ctx context.Context, id int64, role roledomain.BusinessRole) (*domain.Assignment, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid business role %q", role)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	a.Role = role
	r.rows[id] = a
	return &a, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	delete(r.rows, id)
	r.mu.Unlock()
	return nil
}

// insertLocked assigns an id and stores a. Caller holds r.mu.
func (r *MemoryRepository) insertLocked(a *domain.Assignment) {
	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = r.now().UTC()
	r.rows[a.ID] = *a
}

// filter returns matching rows ordered by id, mirroring the Postgres ORDER BY.
func (r *MemoryRepository) filter(keep func(domain.Assignment) bool) []*domain.Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Assignment
	for _, a := range r.rows {
		if keep(a) {
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
